package mqtt

import (
	"fmt"
	"strings"
)

// Topics provides builders for the MQTT topics the bridge and observer use.
// The aircraft data topic itself comes from configuration; these helpers
// derive the related names from it consistently.
//
//	topics := mqtt.Topics{}
//	pattern := topics.AircraftPattern("adsb/aircraft")
//	// Returns: "adsb/aircraft/+"
type Topics struct{}

// =============================================================================
// Topic Builders
// =============================================================================

// AircraftPattern returns the observer's subscription pattern for a base
// aircraft topic. The single-level wildcard matches one level below the
// base, so messages published to the base topic itself are not matched.
//
// Example: adsb/aircraft/+
func (Topics) AircraftPattern(base string) string {
	return fmt.Sprintf("%s/+", base)
}

// Status returns the retained session status topic for a client.
// Carries online/offline payloads and the Last Will message.
//
// Example: adsb2mqtt/status
func (Topics) Status(clientID string) string {
	return fmt.Sprintf("%s/status", clientID)
}

// =============================================================================
// Wildcard Matching
// =============================================================================

// Matches reports whether an MQTT topic filter matches a concrete topic
// name, following MQTT 3.1.1 matching rules:
//
//   - "+" matches exactly one topic level
//   - "#" matches the remaining levels, including the parent
//     ("adsb/#" matches "adsb" as well as "adsb/aircraft/east")
//
// A filter ending in "/+" requires at least one level below its base, so
// AircraftPattern("adsb/aircraft") does not match "adsb/aircraft" itself.
func (Topics) Matches(filter, name string) bool {
	if filter == name {
		return true
	}

	filterLevels := strings.Split(filter, "/")
	nameLevels := strings.Split(name, "/")

	for i, level := range filterLevels {
		if level == "#" {
			// Valid only as the final level; consumes everything from
			// the parent down.
			return i == len(filterLevels)-1 && len(nameLevels) >= i
		}
		if i >= len(nameLevels) {
			return false
		}
		if level != "+" && level != nameLevels[i] {
			return false
		}
	}

	return len(filterLevels) == len(nameLevels)
}
