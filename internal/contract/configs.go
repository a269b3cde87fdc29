package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/repopulse/schema"
)

// Default values for configuration.
const (
	DefaultTimezone     = "America/Los_Angeles"
	DefaultBegin        = "2019-09-05T23:00:00"
	DefaultMonthlyBegin = "2019-10-01"
	DefaultResultLimit  = 30
	MaxResultLimit      = 10000
	DefaultPrecision    = 2
	DefaultCacheTTL     = "7 days"
)

// Default label names.
const (
	DefaultFeatureALabel   = "cxx20"
	DefaultFeatureBLabel   = "cxx23"
	DefaultFeatureCLabel   = "cxx26"
	DefaultResolutionLabel = "LWG"
	DefaultDefectLabel     = "bug"
	DefaultOutOfScopeLabel = "uncharted"
)

// DefaultResolutionExclusions are labels that keep a resolution issue out of
// the resolution bucket.
var DefaultResolutionExclusions = []string{"vNext", "blocked"}

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Labels maps label names on the upstream records to classification flags.
type Labels struct {
	FeatureA             string
	FeatureB             string
	FeatureC             string
	Resolution           string
	ResolutionExclusions []string
	Defect               string
	OutOfScope           string
}

// DefaultLabels returns the label names of the original tracker.
func DefaultLabels() Labels {
	return Labels{
		FeatureA:             DefaultFeatureALabel,
		FeatureB:             DefaultFeatureBLabel,
		FeatureC:             DefaultFeatureCLabel,
		Resolution:           DefaultResolutionLabel,
		ResolutionExclusions: slices.Clone(DefaultResolutionExclusions),
		Defect:               DefaultDefectLabel,
		OutOfScope:           DefaultOutOfScopeLabel,
	}
}

// String renders the labels for cache keys and run parameters.
func (l Labels) String() string {
	return fmt.Sprintf("a=%s;b=%s;c=%s;res=%s;excl=%s;defect=%s;oos=%s",
		l.FeatureA, l.FeatureB, l.FeatureC, l.Resolution,
		strings.Join(l.ResolutionExclusions, ","), l.Defect, l.OutOfScope)
}

// Config holds the runtime configuration for a run.
// This struct is the "final, validated" config.
type Config struct {
	InputPath        string
	VideosPath       string
	MaintainersPath  string
	ContributorsPath string

	Location     *time.Location
	Begin        time.Time
	MonthlyBegin time.Time
	Now          time.Time

	Labels Labels

	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	OutDir      string
	Width       int // Terminal width override (0 = auto-detect)

	CacheTTL       time.Duration
	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// LabelsRawInput holds label overrides from the YAML config file.
type LabelsRawInput struct {
	FeatureA             *string  `mapstructure:"feature_a"`
	FeatureB             *string  `mapstructure:"feature_b"`
	FeatureC             *string  `mapstructure:"feature_c"`
	Resolution           *string  `mapstructure:"resolution"`
	ResolutionExclusions []string `mapstructure:"resolution_exclusions"`
	Defect               *string  `mapstructure:"defect"`
	OutOfScope           *string  `mapstructure:"out_of_scope"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Input          string `mapstructure:"input"`
	Videos         string `mapstructure:"videos"`
	Maintainers    string `mapstructure:"maintainers"`
	Contributors   string `mapstructure:"contributors"`
	Timezone       string `mapstructure:"timezone"`
	Begin          string `mapstructure:"begin"`
	MonthlyBegin   string `mapstructure:"monthly-begin"`
	Now            string `mapstructure:"now"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	OutDir         string `mapstructure:"out-dir"`
	Precision      int    `mapstructure:"precision"`
	Limit          int    `mapstructure:"limit"`
	Width          int    `mapstructure:"width"`
	CacheTTL       string `mapstructure:"cache-ttl"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`

	// --- Label names from config file ---
	Labels LabelsRawInput `mapstructure:"labels"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Labels.ResolutionExclusions = slices.Clone(c.Labels.ResolutionExclusions)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processLabels(cfg, input); err != nil {
		return err
	}
	return resolveInputPaths(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateBackendConfigs validates cache and run history backend configurations.
func ValidateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("runs-db-connect: %w", err)
	}

	// The two stores own different tables but must not share a SQLite file,
	// since clearing the cache deletes its file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and run history must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path and non-time fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.OutDir = input.OutDir
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be between 0 and %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, ts, html", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	ttlStr := input.CacheTTL
	if ttlStr == "" {
		ttlStr = DefaultCacheTTL
	}
	ttl, err := ParseLookbackDuration(ttlStr)
	if err != nil {
		return fmt.Errorf("invalid cache-ttl: %w", err)
	}
	cfg.CacheTTL = ttl

	return ValidateBackendConfigs(cfg, input)
}

// processTimeRange resolves the location and the begin, monthly begin and now timestamps.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	tz := input.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", tz, err)
	}
	cfg.Location = loc

	wall := time.Now().In(loc)
	cfg.Now = wall
	if input.Now != "" {
		if cfg.Now, err = ParseTimestamp(input.Now, loc, wall); err != nil {
			return fmt.Errorf("invalid now: %w", err)
		}
	}

	begin := input.Begin
	if begin == "" {
		begin = DefaultBegin
	}
	if cfg.Begin, err = ParseTimestamp(begin, loc, cfg.Now); err != nil {
		return fmt.Errorf("invalid begin: %w", err)
	}

	monthlyBegin := input.MonthlyBegin
	if monthlyBegin == "" {
		monthlyBegin = DefaultMonthlyBegin
	}
	if cfg.MonthlyBegin, err = ParseTimestamp(monthlyBegin, loc, cfg.Now); err != nil {
		return fmt.Errorf("invalid monthly-begin: %w", err)
	}

	if !cfg.Begin.Before(cfg.Now) {
		return fmt.Errorf("begin (%s) must be before now (%s)", cfg.Begin.Format(DateTimeFormat), cfg.Now.Format(DateTimeFormat))
	}
	return nil
}

// processLabels merges label overrides from the config file into the defaults.
func processLabels(cfg *Config, input *ConfigRawInput) error {
	labels := DefaultLabels()
	raw := input.Labels

	overrides := []struct {
		name  string
		value *string
		dest  *string
	}{
		{"feature_a", raw.FeatureA, &labels.FeatureA},
		{"feature_b", raw.FeatureB, &labels.FeatureB},
		{"feature_c", raw.FeatureC, &labels.FeatureC},
		{"resolution", raw.Resolution, &labels.Resolution},
		{"defect", raw.Defect, &labels.Defect},
		{"out_of_scope", raw.OutOfScope, &labels.OutOfScope},
	}
	for _, o := range overrides {
		if o.value == nil {
			continue
		}
		v := strings.TrimSpace(*o.value)
		if v == "" {
			return fmt.Errorf("label %s cannot be empty", o.name)
		}
		*o.dest = v
	}
	if raw.ResolutionExclusions != nil {
		labels.ResolutionExclusions = slices.Clone(raw.ResolutionExclusions)
	}

	cfg.Labels = labels
	return nil
}

// RevalidateRange re-parses begin and now on a cloned config, e.g. for MCP
// tool calls. Empty strings keep the current values.
func RevalidateRange(cfg *Config, beginStr, nowStr string) error {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	loc := cfg.Location

	var err error
	if nowStr != "" {
		if cfg.Now, err = ParseTimestamp(nowStr, loc, time.Now().In(loc)); err != nil {
			return fmt.Errorf("invalid now: %w", err)
		}
	}
	if beginStr != "" {
		if cfg.Begin, err = ParseTimestamp(beginStr, loc, cfg.Now); err != nil {
			return fmt.Errorf("invalid begin: %w", err)
		}
	}
	if !cfg.Begin.Before(cfg.Now) {
		return fmt.Errorf("begin (%s) must be before now (%s)", cfg.Begin.Format(DateTimeFormat), cfg.Now.Format(DateTimeFormat))
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveInputPaths picks the input file, preferring the positional argument.
func resolveInputPaths(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	if cfg.InputPath == "" {
		cfg.InputPath = strings.TrimSpace(input.Input)
	}
	if cfg.InputPath == "" {
		return fmt.Errorf("an input file is required (positional argument or --input)")
	}
	cfg.VideosPath = strings.TrimSpace(input.Videos)
	cfg.MaintainersPath = strings.TrimSpace(input.Maintainers)
	cfg.ContributorsPath = strings.TrimSpace(input.Contributors)
	return nil
}
