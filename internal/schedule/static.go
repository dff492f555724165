package schedule

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/jamespfennell/gtfs"
)

// Routes tracked by the dashboard.
var TrackedRoutes = []string{"J", "Z", "M"}

// IsLocalSource reports whether a GTFS source is a filesystem path rather
// than a URL.
func IsLocalSource(source string) bool {
	return !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://")
}

func rawStaticData(source string) ([]byte, error) {
	if IsLocalSource(source) {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		return b, nil
	}

	resp, err := http.Get(source)
	if err != nil {
		return nil, fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer resp.Body.Close() // nolint

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading GTFS data: HTTP %d from %s", resp.StatusCode, source)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	return b, nil
}

// LoadIndex loads and parses the static GTFS bundle from either a URL or a
// local file and builds the schedule index for the tracked routes.
func LoadIndex(source string, routes []string) (*Index, error) {
	b, err := rawStaticData(source)
	if err != nil {
		return nil, err
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	return NewIndex(staticData, routes), nil
}
