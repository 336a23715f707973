package log

import (
	"github.com/google/uuid"

	"github.com/weiawesome/wes-idgen/pkg/idgen"
)

// newRequestID returns a time-sortable ULID, falling back to a UUID if the
// entropy source fails.
func newRequestID() string {
	id, err := idgen.NextULID()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
