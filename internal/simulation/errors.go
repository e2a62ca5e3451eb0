package simulation

import "errors"

// ErrNotAvailable is returned by the historical calculator when the user has no
// holdings or no usable price history. Callers fall back to a stochastic projection.
var ErrNotAvailable = errors.New("historical data not available")
