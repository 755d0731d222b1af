package graph

import "errors"

// Boundary error codes, surfaced by the HTTP layer alongside a message.
const (
	CodeInternal       = "ERR_1000"
	CodeInvalidRequest = "ERR_1001"
	CodeTimeout        = "ERR_1003"
	CodeNoConcepts     = "ERR_2005"
	CodeStoreError     = "ERR_3001"
	CodeCacheError     = "ERR_3004"
)

// Errors that propagate to callers. Everything else inside the pipeline is
// absorbed into a degraded-but-valid result.
var (
	// ErrInvalidRequest covers malformed input: empty seed, empty discipline
	// list entries, fewer than two concepts in bridge mode.
	ErrInvalidRequest = errors.New("invalid discovery request")

	// ErrNoConcepts is returned only on total pipeline exhaustion: zero nodes
	// survived every documented fallback.
	ErrNoConcepts = errors.New("no related concepts found")
)
