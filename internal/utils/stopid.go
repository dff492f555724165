package utils

import "strings"

// MTA subway stop IDs are platform-specific: the parent station ID plus a
// trailing N or S (e.g. "M11S" is the southbound Myrtle Av platform).

// PlatformDirection returns the direction suffix of a platform stop ID
// ("N" or "S"), or "" when the ID has no recognizable suffix.
func PlatformDirection(stopID string) string {
	if len(stopID) < 2 {
		return ""
	}
	suffix := stopID[len(stopID)-1:]
	if suffix == "N" || suffix == "S" {
		return suffix
	}
	return ""
}

// ParentStation strips the platform direction suffix from a stop ID.
func ParentStation(stopID string) string {
	if PlatformDirection(stopID) == "" {
		return stopID
	}
	return stopID[:len(stopID)-1]
}

// MatchesDirection reports whether a platform stop ID serves the requested
// direction. An empty direction matches every platform.
func MatchesDirection(stopID, direction string) bool {
	if direction == "" {
		return true
	}
	return strings.EqualFold(PlatformDirection(stopID), direction)
}
