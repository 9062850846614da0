package authz

import "net/http"

// Decision is the outcome tag of a single gate. Gates never panic or abort;
// callers branch on the tag.
type Decision string

const (
	DecisionAllowed         Decision = "allowed"
	DecisionUnauthenticated Decision = "unauthenticated"
	DecisionInactive        Decision = "inactive"
	DecisionForbidden       Decision = "forbidden"
	DecisionError           Decision = "error"
)

// Verdict is the result of evaluating a gate: a decision plus the message
// surfaced to the caller. A store failure is DecisionError and must never be
// reported as a forbidden outcome.
type Verdict struct {
	Decision Decision
	Message  string
}

func (v Verdict) Allowed() bool {
	return v.Decision == DecisionAllowed
}

// Status maps the verdict to its HTTP status. Unauthenticated outcomes are
// indistinguishable from one another on purpose: a malformed token, an
// expired token and an unknown subject all produce the same response.
func (v Verdict) Status() int {
	switch v.Decision {
	case DecisionAllowed:
		return http.StatusOK
	case DecisionUnauthenticated:
		return http.StatusUnauthorized
	case DecisionInactive, DecisionForbidden:
		return http.StatusForbidden
	default:
		return http.StatusServiceUnavailable
	}
}

func allow() Verdict {
	return Verdict{Decision: DecisionAllowed}
}

func unauthenticated() Verdict {
	return Verdict{Decision: DecisionUnauthenticated, Message: "Not authenticated"}
}

func inactive() Verdict {
	return Verdict{Decision: DecisionInactive, Message: "Inactive account"}
}

func forbidden(message string) Verdict {
	return Verdict{Decision: DecisionForbidden, Message: message}
}

func storeError() Verdict {
	return Verdict{Decision: DecisionError, Message: "Authorization check unavailable"}
}
