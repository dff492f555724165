package utils

import (
	"errors"
	"regexp"
	"time"
)

// Allow alphanumeric, underscore, hyphen, dot - common in transit IDs
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateID validates that a trip or stop ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateDuration parses a positive duration query parameter such as "6m" or
// "90s". Bare integers are interpreted as minutes, matching the sidebar units
// of the dashboard.
func ValidateDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, errors.New("duration cannot be empty")
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		minutes, intErr := time.ParseDuration(raw + "m")
		if intErr != nil {
			return 0, errors.New("invalid duration, use forms like 6m or 90s")
		}
		d = minutes
	}

	if d < 0 {
		return 0, errors.New("duration must be non-negative")
	}
	if d > 6*time.Hour {
		return 0, errors.New("duration too large (max 6h)")
	}

	return d, nil
}
