package mqtt

import (
	"strings"

	"github.com/google/uuid"
)

// NewClientID returns prefix followed by 8 random hex characters, so several
// dashboards logged in with the same account never collide on the broker.
func NewClientID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + id[:8]
}
