package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridline-data/locator-cli/internal/scorer"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Sweep      SweepConfig      `yaml:"sweep" mapstructure:"sweep"`
	Dedup      DedupConfig      `yaml:"dedup" mapstructure:"dedup"`
	Zips       ZipsConfig       `yaml:"zips" mapstructure:"zips"`
	License    LicenseConfig    `yaml:"license" mapstructure:"license"`
	Scoring    scorer.Config    `yaml:"scoring" mapstructure:"scoring"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the local sweep/lead database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SweepConfig configures locator sweeps.
type SweepConfig struct {
	CheckpointDir     string `yaml:"checkpoint_dir" mapstructure:"checkpoint_dir"`
	CheckpointEvery   int    `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
	VendorParallelism int    `yaml:"vendor_parallelism" mapstructure:"vendor_parallelism"`
	UserAgent         string `yaml:"user_agent" mapstructure:"user_agent"`
}

// DedupConfig configures duplicate detection.
type DedupConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
}

// ZipsConfig configures the ZIP search grid.
type ZipsConfig struct {
	ShapefilePath string   `yaml:"shapefile_path" mapstructure:"shapefile_path"`
	SpacingMiles  float64  `yaml:"spacing_miles" mapstructure:"spacing_miles"`
	States        []string `yaml:"states" mapstructure:"states"`
}

// LicenseConfig configures state registry ingestion.
type LicenseConfig struct {
	DatabaseURL string   `yaml:"database_url" mapstructure:"database_url"`
	TempDir     string   `yaml:"temp_dir" mapstructure:"temp_dir"`
	States      []string `yaml:"states" mapstructure:"states"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// ServerConfig configures the query API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LOCATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "locator.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("sweep.checkpoint_dir", "checkpoints")
	v.SetDefault("sweep.checkpoint_every", 25)
	v.SetDefault("sweep.vendor_parallelism", 3)
	v.SetDefault("sweep.user_agent", "locator-cli/1.0")
	v.SetDefault("dedup.fuzzy_threshold", 0.85)
	v.SetDefault("zips.spacing_miles", 50)
	v.SetDefault("license.temp_dir", "/tmp/locator")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")

	// Scoring defaults mirror scorer.DefaultConfig.
	def := scorer.DefaultConfig()
	v.SetDefault("scoring.multi_oem_weight", def.MultiOEMWeight)
	v.SetDefault("scoring.license_weight", def.LicenseWeight)
	v.SetDefault("scoring.tenure_weight", def.TenureWeight)
	v.SetDefault("scoring.capability_weight", def.CapabilityWeight)
	v.SetDefault("scoring.reputation_weight", def.ReputationWeight)
	v.SetDefault("scoring.tenure_full_years", def.TenureFullYears)
	v.SetDefault("scoring.tier_a_cutoff", def.TierACutoff)
	v.SetDefault("scoring.tier_b_cutoff", def.TierBCutoff)
	v.SetDefault("scoring.tier_c_cutoff", def.TierCCutoff)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the fields required by the given mode are present.
// Modes correspond to command groups: "sweep", "license", "export", "serve".
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "sweep":
		if c.Store.Path == "" {
			missing = append(missing, "store.path is required")
		}
		if c.Sweep.VendorParallelism < 1 || c.Sweep.VendorParallelism > 20 {
			missing = append(missing, "sweep.vendor_parallelism must be between 1 and 20")
		}
	case "license":
		if c.License.DatabaseURL == "" {
			missing = append(missing, "license.database_url is required")
		}
	case "export":
		if c.Store.Path == "" {
			missing = append(missing, "store.path is required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
		if c.Store.Path == "" {
			missing = append(missing, "store.path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Dedup.FuzzyThreshold < 0 || c.Dedup.FuzzyThreshold > 1 {
		missing = append(missing, "dedup.fuzzy_threshold must be between 0 and 1")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
