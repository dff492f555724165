package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:             4000,
		Env:              "development",
		StaticGTFSSource: "testdata/gtfs.zip",
		FeedURLs:         []string{"https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct/gtfs-jz"},
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	bad := validConfig()
	bad.Env = "prod"
	assert.Error(t, bad.Validate())

	bad = validConfig()
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = validConfig()
	bad.FeedURLs = []string{"not a url"}
	assert.Error(t, bad.Validate())

	bad = validConfig()
	bad.StaticGTFSSource = ""
	assert.Error(t, bad.Validate())
}

func TestTransitConfigMapping(t *testing.T) {
	cfg := validConfig()
	cfg.RefreshInterval = 45 * time.Second
	cfg.StalenessThreshold = 90 * time.Second

	tc := cfg.TransitConfig()
	assert.Equal(t, cfg.StaticGTFSSource, tc.StaticGTFSSource)
	assert.Equal(t, cfg.FeedURLs, tc.FeedURLs)
	assert.Equal(t, 45*time.Second, tc.RefreshInterval)
	assert.Equal(t, 90*time.Second, tc.Tracker.StalenessThreshold)
}
