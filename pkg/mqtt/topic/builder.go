package topic

import (
	"strings"
)

// Topic segments published by the parking sensor unit.
// Changing these values breaks compatibility with deployed sensor firmware.
const (
	// SuffixStatus carries full occupancy snapshots (Sensor -> Dashboard).
	// Structure: {root}/status
	SuffixStatus = "status"
)

// DefaultRoot is the namespace used by the stock sensor firmware.
const DefaultRoot = "smartparking"

// TopicBuilder constructs topic strings below a root namespace.
type TopicBuilder struct {
	root string
}

// NewTopicBuilder creates a TopicBuilder. Trailing slashes on root are ignored.
func NewTopicBuilder(root string) *TopicBuilder {
	return &TopicBuilder{root: strings.TrimRight(root, "/")}
}

// Status returns the topic occupancy snapshots are published on.
func (b *TopicBuilder) Status() string {
	return b.build(SuffixStatus)
}

func (b *TopicBuilder) build(suffix string) string {
	if b.root == "" {
		return suffix
	}
	return b.root + "/" + suffix
}
