package mqtt

import (
	"strings"

	"github.com/autopeer-io/smartpark/pkg/mqtt/topic"
)

// topicsMatch checks if a topic matches a filter (supports wildcards + and #).
func topicsMatch(filter, name string) bool {
	if filter == name {
		return true
	}

	if !strings.Contains(filter, topic.Wildcard) && !strings.Contains(filter, topic.MultiWildcard) {
		return false
	}

	filterParts := strings.Split(filter, "/")
	topicParts := strings.Split(name, "/")

	for i, part := range filterParts {
		if part == topic.MultiWildcard {
			return true
		}
		if i >= len(topicParts) {
			return false
		}
		if part != topic.Wildcard && part != topicParts[i] {
			return false
		}
	}

	return len(filterParts) == len(topicParts)
}

// topicFilter strips the $share/<group>/ prefix of shared subscriptions.
func topicFilter(filter string) string {
	if strings.HasPrefix(filter, "$share/") {
		parts := strings.SplitN(filter, "/", 3)
		if len(parts) == 3 {
			return parts[2]
		}
	}
	return filter
}
