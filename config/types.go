package config

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// GTFSConfig locates the static schedule.
type GTFSConfig struct {
	// Source is a URL or local path to a GTFS zip.
	Source string `yaml:"source" validate:"required"`
}

// UpstreamConfig describes the realtime feed API.
type UpstreamConfig struct {
	BaseURL         string `yaml:"baseURL" validate:"required,url"`
	APIKey          string `yaml:"apiKey"`
	PollIntervalSec int    `yaml:"pollIntervalSec" validate:"gte=0"`
	TimeoutSec      int    `yaml:"timeoutSec" validate:"gte=0"`
}

// MatchingConfig tunes the reconciliation engine.
type MatchingConfig struct {
	// Strategy selects the matcher implementation.
	Strategy string `yaml:"strategy" validate:"omitempty,oneof=scanning indexed"`

	LateTripLimitSec  int  `yaml:"lateTripLimitSec" validate:"gte=0"`
	DisableLooseMatch bool `yaml:"disableLooseMatch"`

	// LatencyLimitSec discards feeds staler than this. Zero disables.
	LatencyLimitSec int `yaml:"latencyLimitSec" validate:"gte=0"`

	// LookbackDays bounds the indexed strategy's service-day lookback.
	// Zero derives it from the schedule.
	LookbackDays int `yaml:"lookbackDays" validate:"gte=0"`

	RoutesNeedingFixup []string `yaml:"routesNeedingFixup"`
}

// FeedConfig is one upstream feed plus its cleanup rules.
type FeedConfig struct {
	ID             string            `yaml:"id" validate:"required"`
	RouteBlacklist []string          `yaml:"routeBlacklist"`
	RouteRemap     map[string]string `yaml:"routeRemap"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	GTFS     GTFSConfig     `yaml:"gtfs" validate:"required"`
	Upstream UpstreamConfig `yaml:"upstream" validate:"required"`
	Matching MatchingConfig `yaml:"matching"`
	Feeds    []FeedConfig   `yaml:"feeds" validate:"required,dive"`
}
