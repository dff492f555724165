package realtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"jzmtracker.nyc/internal/logging"
)

// DefaultFeedURLs are the MTA trip-update feeds covering the J, Z, and M
// routes. The BDFM feed is shared with three untracked routes and gets
// filtered after decoding.
var DefaultFeedURLs = []string{
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct/gtfs-jz",
	"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct/gtfs-bdfm",
}

// EncodedFallbackURL returns the percent-encoded form of an MTA feed URL,
// or "" when the URL has no such form. Some HTTP gateways reject the
// slash-separated path but accept "nyct%2Fgtfs-...".
func EncodedFallbackURL(url string) string {
	if strings.Contains(url, "/nyct/") {
		return strings.Replace(url, "/nyct/", "/nyct%2F", 1)
	}
	return ""
}

// FeedClient fetches and decodes GTFS-realtime trip updates from one or
// more feed URLs, keeping only the tracked routes.
type FeedClient struct {
	client *http.Client
	urls   []string
	routes map[string]bool
	logger *slog.Logger
}

// NewFeedClient builds a client over the given feed URLs that keeps trip
// updates for the given routes. Updates whose trip descriptor carries no
// route ID are kept and left to the caller to resolve against the schedule.
func NewFeedClient(urls []string, routes []string, logger *slog.Logger) *FeedClient {
	wanted := make(map[string]bool, len(routes))
	for _, r := range routes {
		wanted[r] = true
	}
	return &FeedClient{
		client: &http.Client{Timeout: 15 * time.Second},
		urls:   urls,
		routes: wanted,
		logger: logger,
	}
}

// FetchSnapshot reads every configured feed and merges the results into a
// single snapshot. A feed failing is tolerated as long as at least one
// succeeds; only total failure is an error.
func (c *FeedClient) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	fetchedAt := time.Now()

	var arrivals []LiveArrival
	var fetched int
	var lastErr error
	for _, url := range c.urls {
		feed, err := c.fetchFeed(ctx, url)
		if err != nil {
			logging.LogError(c.logger, "realtime feed fetch failed", err,
				slog.String("url", url),
				slog.String("component", "realtime"))
			lastErr = err
			continue
		}
		fetched++
		arrivals = append(arrivals, c.extractArrivals(feed)...)
	}

	if fetched == 0 {
		return nil, fmt.Errorf("all realtime feeds failed: %w", lastErr)
	}

	snapshot := NewSnapshot(fetchedAt, arrivals)
	logging.LogOperation(c.logger, "realtime snapshot fetched",
		slog.Int("feeds", fetched),
		slog.Int("trips", snapshot.TripCount()),
		slog.String("component", "realtime"))
	return snapshot, nil
}

func (c *FeedClient) fetchFeed(ctx context.Context, url string) (*gtfsrt.FeedMessage, error) {
	b, err := c.download(ctx, url)
	if err != nil {
		alt := EncodedFallbackURL(url)
		if alt == "" {
			return nil, err
		}
		logging.LogOperation(c.logger, "retrying feed with encoded URL",
			slog.String("url", alt),
			slog.String("component", "realtime"))
		b, err = c.download(ctx, alt)
		if err != nil {
			return nil, err
		}
	}

	feed := &gtfsrt.FeedMessage{}
	if err := proto.Unmarshal(b, feed); err != nil {
		return nil, fmt.Errorf("error decoding realtime feed from %s: %w", url, err)
	}
	return feed, nil
}

func (c *FeedClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building feed request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading realtime feed: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "realtime feed body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading realtime feed: HTTP %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

func (c *FeedClient) extractArrivals(feed *gtfsrt.FeedMessage) []LiveArrival {
	headerTS := time.Unix(int64(feed.GetHeader().GetTimestamp()), 0)

	var out []LiveArrival
	for _, ent := range feed.GetEntity() {
		tu := ent.GetTripUpdate()
		if tu == nil {
			continue
		}
		tripID := tu.GetTrip().GetTripId()
		if tripID == "" {
			continue
		}
		routeID := tu.GetTrip().GetRouteId()
		if routeID != "" && !c.routes[routeID] {
			continue
		}

		ts := headerTS
		if tu.GetTimestamp() > 0 {
			ts = time.Unix(int64(tu.GetTimestamp()), 0)
		}

		for _, stu := range tu.GetStopTimeUpdate() {
			stopID := stu.GetStopId()
			if stopID == "" {
				continue
			}
			var arr, dep time.Time
			if t := stu.GetArrival().GetTime(); t > 0 {
				arr = time.Unix(t, 0)
			}
			if t := stu.GetDeparture().GetTime(); t > 0 {
				dep = time.Unix(t, 0)
			}
			if arr.IsZero() && dep.IsZero() {
				continue
			}
			out = append(out, LiveArrival{
				TripID:        tripID,
				RouteID:       routeID,
				StopID:        stopID,
				Arrival:       arr,
				Departure:     dep,
				FeedTimestamp: ts,
			})
		}
	}
	return out
}
