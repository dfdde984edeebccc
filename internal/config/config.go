// Package config loads coroshub settings from YAML with environment
// overrides, and holds the fixed COROS wire constants: regional base URLs,
// exercise templates, and sortNo spacing.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/claude/coroshub/internal/models"
	"gopkg.in/yaml.v3"
)

// Regional base URLs, selected by region code.
var regionURLs = map[models.Region]string{
	models.RegionUS: "https://teamapi.coros.com",
	models.RegionEU: "https://teameuapi.coros.com",
	models.RegionCN: "https://teamcnapi.coros.com",
}

// BaseURL returns the API base URL for a region. Unknown regions fall back
// to US; callers should coerce through ParseRegion first.
func BaseURL(r models.Region) string {
	if u, ok := regionURLs[r]; ok {
		return u
	}
	return regionURLs[models.RegionUS]
}

// ParseRegion coerces a region string to a known region. Invalid input is
// logged and coerced to US, never fatal.
func ParseRegion(s string, log *slog.Logger) models.Region {
	switch models.Region(s) {
	case models.RegionUS, models.RegionEU, models.RegionCN:
		return models.Region(s)
	}
	if s != "" && log != nil {
		log.Warn("invalid region, defaulting to us", "region", s)
	}
	return models.RegionUS
}

// ParseSportType maps the user-facing sport name to its wire value.
func ParseSportType(s string) (models.SportType, error) {
	switch s {
	case "run":
		return models.SportRun, nil
	case "bike":
		return models.SportBike, nil
	}
	return 0, fmt.Errorf("unknown sport type %q (want run or bike)", s)
}

// SportLabels maps sport type wire values to display names.
var SportLabels = map[models.SportType]string{
	models.SportRun:  "Run",
	models.SportBike: "Bike",
}

// sortNo spacing: top-level entries are BASE apart, children of a group are
// CHILD from the parent. Children sort between their parent and the next
// top-level entry as long as childCount*CHILD < BASE.
const (
	SortNoBase  = 16777216
	SortNoChild = 65536
)

// Fixed wire constants required by the COROS API.
const (
	AccountType          = 2 // email login
	PBVersion            = 8
	ScheduleStatusAdd    = 1
	ScheduleStatusDelete = 3
	ExerciseStatusActive = 1
	RestTypeDefault      = 1
	DistanceDisplayMiles = 1
	UnitStatute          = 1
)

// Template is the fixed identifying fields of a generated exercise record,
// keyed by (sport, step kind). originIds come from recorded API responses.
type Template struct {
	OriginID string
	Name     string
	Overview string
}

var exerciseTemplates = map[models.SportType]map[string]Template{
	models.SportRun: {
		"warmup":   {OriginID: "425895398452936705", Name: "T1120", Overview: "sid_run_warm_up_dist"},
		"training": {OriginID: "426109589008859136", Name: "T3001", Overview: "sid_run_training"},
		"cooldown": {OriginID: "425895456971866112", Name: "T1122", Overview: "sid_run_cool_down_dist"},
		"recovery": {OriginID: "425895398452936705", Name: "T1123", Overview: "sid_run_cool_down_dist"},
	},
	models.SportBike: {
		"warmup":   {OriginID: "425895398452936705", Name: "T1120", Overview: "sid_run_warm_up_dist"},
		"training": {OriginID: "426109589008859136", Name: "T4000", Overview: "sid_bike_training"},
		"cooldown": {OriginID: "425895456971866112", Name: "T1122", Overview: "sid_run_cool_down_dist"},
		"recovery": {OriginID: "425895398452936705", Name: "T1123", Overview: "sid_run_cool_down_dist"},
	},
}

// LookupTemplate returns the template for a (sport, kind) pair.
func LookupTemplate(sport models.SportType, kind string) (Template, bool) {
	t, ok := exerciseTemplates[sport][kind]
	return t, ok
}

type Config struct {
	Auth      AuthConfig      `yaml:"auth"`
	HTTP      HTTPConfig      `yaml:"http"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	TokenPath string          `yaml:"token_path"`
}

type AuthConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Region   string `yaml:"region"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DefaultTokenPath is where the auth token is persisted when token_path is
// not configured.
func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "coroshub", "auth.json")
	}
	return filepath.Join(dir, "coroshub", "auth.json")
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error; env-only setups are common
// for MCP servers. Env vars:
//
//	COROS_EMAIL, COROS_PASSWORD, COROS_REGION,
//	COROSHUB_TOKEN_PATH, COROSHUB_HTTP_HOST, COROSHUB_HTTP_PORT
func Load(path string) (*Config, error) {
	cfg := &Config{TokenPath: DefaultTokenPath()}
	cfg.HTTP.Host = "127.0.0.1"

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.TokenPath == "" {
		cfg.TokenPath = DefaultTokenPath()
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COROS_EMAIL"); v != "" {
		cfg.Auth.Email = v
	}
	if v := os.Getenv("COROS_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv("COROS_REGION"); v != "" {
		cfg.Auth.Region = v
	}
	if v := os.Getenv("COROSHUB_TOKEN_PATH"); v != "" {
		cfg.TokenPath = v
	}
	if v := os.Getenv("COROSHUB_HTTP_HOST"); v != "" {
		cfg.HTTP.Host = v
	}
	if v := os.Getenv("COROSHUB_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = port
		}
	}
}

// HasCredentials reports whether email and password are both configured.
func (c *Config) HasCredentials() bool {
	return c.Auth.Email != "" && c.Auth.Password != ""
}
