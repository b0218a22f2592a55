package aggregate

import "errors"

// ErrNotFound is returned when every configured provider resolved the
// query to nothing. Callers treat it as "no data", not a fault.
var ErrNotFound = errors.New("aggregate: restaurant not found")
