package aggregator

import (
	"errors"
)

// ErrUnavailable covers transport and deployment failures: connection refused,
// timeouts, non-2xx statuses. ErrLogical covers 2xx responses that carry a
// populated error field or a malformed body. Both abort a first-load
// composition pass; callers distinguish them with errors.Is.
var (
	ErrUnavailable = errors.New("aggregator unavailable")
	ErrLogical     = errors.New("aggregator reported an error")
)
