package httperr

import "errors"

// BusinessError marks an expected domain outcome (conflict, not found,
// validation) so handlers can map it to a 4xx without string matching
// on error text.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return "business: " + e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// IsBusiness reports whether err is (or wraps) a BusinessError with the
// given code.
func IsBusiness(err error, code string) bool {
	var be BusinessError
	return errors.As(err, &be) && be.Code == code
}
