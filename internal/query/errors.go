package query

import "errors"

var ErrForbidden = errors.New("forbidden")
