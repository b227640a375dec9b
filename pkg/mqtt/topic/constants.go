package topic

// MQTT wildcards accepted in the subscribed status filter.
const (
	// Wildcard matches exactly one level: "+/status" matches "lot-a/status".
	Wildcard = "+"

	// MultiWildcard matches the remaining levels and must come last:
	// "smartparking/#" matches "smartparking/lot-a/status".
	MultiWildcard = "#"
)
