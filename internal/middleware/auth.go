package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookedbarber/bookedbarber-api/internal/authz"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

const (
	ContextUser       = "currentUser"
	ContextUserID     = "userID"
	ContextMembership = "membership"
)

// abortWithVerdict surfaces a gate failure. The body shape is
// {"detail": "<message>"} for every gate outcome.
func abortWithVerdict(c *gin.Context, v authz.Verdict) {
	c.AbortWithStatusJSON(v.Status(), gin.H{"detail": v.Message})
}

// Authenticate runs identity resolution plus the active-user gate and puts
// the resolved user into the request context.
func Authenticate(svc *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithVerdict(c, authz.Verdict{
				Decision: authz.DecisionUnauthenticated,
				Message:  "Not authenticated",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithVerdict(c, authz.Verdict{
				Decision: authz.DecisionUnauthenticated,
				Message:  "Not authenticated",
			})
			return
		}

		user, v := svc.ResolveUser(c.Request.Context(), parts[1])
		if !v.Allowed() {
			abortWithVerdict(c, v)
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)

		c.Next()
	}
}

// RequireRoles is the coarse role gate. Must run after Authenticate.
func RequireRoles(svc *authz.Service, allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)

		if v := svc.RequireRole(user, allowed...); !v.Allowed() {
			abortWithVerdict(c, v)
			return
		}

		c.Next()
	}
}

// RequireOrgMembership asserts the user belongs to the organization named by
// the :orgID path parameter and stores the membership row in the context.
func RequireOrgMembership(svc *authz.Service) gin.HandlerFunc {
	return orgGate(svc, "")
}

// RequireOrgPermission additionally requires one membership flag.
func RequireOrgPermission(svc *authz.Service, perm models.Permission) gin.HandlerFunc {
	return orgGate(svc, perm)
}

func orgGate(svc *authz.Service, perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)

		orgID, err := strconv.ParseUint(c.Param("orgID"), 10, 64)
		if err != nil {
			abortWithVerdict(c, authz.Verdict{
				Decision: authz.DecisionForbidden,
				Message:  "No organization access",
			})
			return
		}

		var (
			m *models.UserOrganization
			v authz.Verdict
		)
		if perm == "" {
			m, v = svc.RequireMembership(c.Request.Context(), user.ID, uint(orgID))
		} else {
			m, v = svc.RequirePermission(c.Request.Context(), user.ID, uint(orgID), perm)
		}
		if !v.Allowed() {
			abortWithVerdict(c, v)
			return
		}

		c.Set(ContextMembership, m)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(ContextUser).(*models.User)
}

func CurrentMembership(c *gin.Context) *models.UserOrganization {
	return c.MustGet(ContextMembership).(*models.UserOrganization)
}

func OrgID(c *gin.Context) uint {
	id, _ := strconv.ParseUint(c.Param("orgID"), 10, 64)
	return uint(id)
}
