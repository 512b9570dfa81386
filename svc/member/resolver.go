package member

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DefaultHeader carries the id of the authenticated member.
const DefaultHeader = "X-Member-ID"

// Resolver extracts the member id from a request. It returns uuid.Nil when
// the request carries none and an error when the value is malformed.
type Resolver func(r *http.Request) (uuid.UUID, error)

// NewHeaderResolver reads the member id from a header, DefaultHeader when
// header is empty.
func NewHeaderResolver(header string) Resolver {
	if header == "" {
		header = DefaultHeader
	}

	return func(r *http.Request) (uuid.UUID, error) {
		value := strings.TrimSpace(r.Header.Get(header))
		if value == "" {
			return uuid.Nil, nil
		}
		id, err := uuid.Parse(value)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: header value %q", ErrInvalidIdentifier, value)
		}
		return id, nil
	}
}
