// Package config loads ecotrack's configuration from a YAML file, an
// optional .env file and ECOTRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/rshade/ecotrack/internal/carbon"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.yml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// DefaultCORSMaxAge is the preflight cache lifetime in seconds.
const DefaultCORSMaxAge = 86400

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Store     StoreConfig     `yaml:"store"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Estimator EstimatorConfig `yaml:"estimator"`
	Rules     RulesConfig     `yaml:"rules"`
}

// ServerConfig configures the HTTP and gRPC listeners.
type ServerConfig struct {
	Listen string `yaml:"listen" env:"ECOTRACK_LISTEN" env-default:":8080"`

	// GRPCListen enables the gRPC health service when non-empty.
	GRPCListen string `yaml:"grpc_listen" env:"ECOTRACK_GRPC_LISTEN"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env:"ECOTRACK_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"ECOTRACK_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ECOTRACK_SHUTDOWN_TIMEOUT" env-default:"10s"`

	// MaxBatchSize caps the inputs accepted by one batch request.
	MaxBatchSize int `yaml:"max_batch_size" env:"ECOTRACK_MAX_BATCH_SIZE" env-default:"100"`

	// BatchConcurrency bounds the goroutines estimating one batch.
	BatchConcurrency int `yaml:"batch_concurrency" env:"ECOTRACK_BATCH_CONCURRENCY" env-default:"8"`

	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig configures cross-origin access for browser clients.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ECOTRACK_CORS_ALLOWED_ORIGINS" env-separator:","`
	AllowCredentials bool     `yaml:"allow_credentials" env:"ECOTRACK_CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `yaml:"max_age" env:"ECOTRACK_CORS_MAX_AGE" env-default:"86400"`

	// AllowAll is set by Normalize when the origins contain "*".
	AllowAll bool `yaml:"-"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"ECOTRACK_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"ECOTRACK_LOG_FORMAT" env-default:"json"`
}

// StoreConfig selects the estimate history backend.
type StoreConfig struct {
	Driver        string `yaml:"driver" env:"ECOTRACK_STORE_DRIVER" env-default:"memory"`
	SQLitePath    string `yaml:"sqlite_path" env:"ECOTRACK_SQLITE_PATH" env-default:"ecotrack.db"`
	MongoURI      string `yaml:"mongo_uri" env:"ECOTRACK_MONGO_URI" env-default:"mongodb://localhost:27017"`
	MongoDatabase string `yaml:"mongo_database" env:"ECOTRACK_MONGO_DATABASE" env-default:"ecotrack"`

	// HistoryLimit is the default and maximum page size for history queries.
	HistoryLimit int `yaml:"history_limit" env:"ECOTRACK_HISTORY_LIMIT" env-default:"50"`
}

// MQTTConfig configures estimate event publication.
type MQTTConfig struct {
	Enabled        bool          `yaml:"enabled" env:"ECOTRACK_MQTT_ENABLED"`
	Broker         string        `yaml:"broker" env:"ECOTRACK_MQTT_BROKER" env-default:"tcp://localhost:1883"`
	ClientID       string        `yaml:"client_id" env:"ECOTRACK_MQTT_CLIENT_ID" env-default:"ecotrack"`
	Username       string        `yaml:"username" env:"ECOTRACK_MQTT_USERNAME"`
	Password       string        `yaml:"password" env:"ECOTRACK_MQTT_PASSWORD"`
	TopicPrefix    string        `yaml:"topic_prefix" env:"ECOTRACK_MQTT_TOPIC_PREFIX" env-default:"ecotrack/estimates"`
	QoS            byte          `yaml:"qos" env:"ECOTRACK_MQTT_QOS" env-default:"1"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"ECOTRACK_MQTT_CONNECT_TIMEOUT" env-default:"10s"`
}

// EstimatorConfig selects the factor tables and period convention.
type EstimatorConfig struct {
	// Convention is "monthly" or "reference".
	Convention string `yaml:"convention" env:"ECOTRACK_CONVENTION" env-default:"monthly"`

	// FactorsFiles are extra YAML factor tables registered next to the
	// embedded default.
	FactorsFiles []string `yaml:"factors_files" env:"ECOTRACK_FACTORS_FILES" env-separator:","`

	// FactorVersion pins the table used when a request names none. Empty
	// selects the highest registered version.
	FactorVersion string `yaml:"factor_version" env:"ECOTRACK_FACTOR_VERSION"`
}

// RulesConfig overrides the recommendation thresholds and impacts.
type RulesConfig struct {
	TransportThresholdKg   float64 `yaml:"transport_threshold_kg" env:"ECOTRACK_RULE_TRANSPORT_KG" env-default:"100"`
	EnergyThresholdKg      float64 `yaml:"energy_threshold_kg" env:"ECOTRACK_RULE_ENERGY_KG" env-default:"150"`
	FoodThresholdKg        float64 `yaml:"food_threshold_kg" env:"ECOTRACK_RULE_FOOD_KG" env-default:"80"`
	WasteThresholdKg       float64 `yaml:"waste_threshold_kg" env:"ECOTRACK_RULE_WASTE_KG" env-default:"10"`
	TransportImpactPercent float64 `yaml:"transport_impact_percent" env:"ECOTRACK_RULE_TRANSPORT_IMPACT" env-default:"25"`
	EnergyImpactPercent    float64 `yaml:"energy_impact_percent" env:"ECOTRACK_RULE_ENERGY_IMPACT" env-default:"40"`
	FoodImpactPercent      float64 `yaml:"food_impact_percent" env:"ECOTRACK_RULE_FOOD_IMPACT" env-default:"30"`
	WasteImpactPercent     float64 `yaml:"waste_impact_percent" env:"ECOTRACK_RULE_WASTE_IMPACT" env-default:"50"`
}

// Load reads configuration. A .env file in the working directory is applied
// first if present. When path does not exist only defaults and environment
// variables are used. The result is normalized and validated.
func Load(path string, logger zerolog.Logger) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if path == "" {
		path = DefaultPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		logger.Debug().Str("path", path).Msg("configuration file loaded")
	case errors.Is(statErr, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read config from environment: %w", err)
		}
		logger.Debug().Str("path", path).Msg("configuration file not found, using defaults and environment")
	default:
		return nil, fmt.Errorf("stat config %s: %w", path, statErr)
	}

	if err := cfg.Normalize(logger); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration built from defaults and environment
// variables alone.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read config from environment: %w", err)
	}
	if err := cfg.Normalize(zerolog.Nop()); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Usage describes every environment variable the configuration reads.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}

// Normalize trims CORS origins and applies CORS defaults. A wildcard origin
// combined with credentials is rejected.
func (c *Config) Normalize(logger zerolog.Logger) error {
	cors := &c.Server.CORS

	origins := make([]string, 0, len(cors.AllowedOrigins))
	cors.AllowAll = false
	for _, o := range cors.AllowedOrigins {
		trimmed := strings.TrimSpace(o)
		if trimmed == "*" {
			cors.AllowAll = true
			continue
		}
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cors.AllowedOrigins = origins

	if cors.AllowAll {
		logger.Warn().Msg("CORS wildcard origin (*) is insecure; use specific origins in production")
		if cors.AllowCredentials {
			return errors.New("cannot enable CORS credentials with wildcard origin (*)")
		}
	}

	if cors.MaxAge < 0 {
		logger.Warn().Int("value", cors.MaxAge).Msg("invalid CORS max_age, using default")
		cors.MaxAge = DefaultCORSMaxAge
	}

	logger.Debug().
		Strs("allowed_origins", cors.AllowedOrigins).
		Bool("allow_all", cors.AllowAll).
		Int("max_age", cors.MaxAge).
		Msg("CORS configuration applied")
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if c.Store.HistoryLimit <= 0 {
		return fmt.Errorf("store.history_limit: must be > 0, got %d", c.Store.HistoryLimit)
	}

	switch c.Logging.Format {
	case FormatJSON, FormatConsole:
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}

	if c.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("server.max_batch_size: must be > 0, got %d", c.Server.MaxBatchSize)
	}
	if c.Server.BatchConcurrency <= 0 {
		return fmt.Errorf("server.batch_concurrency: must be > 0, got %d", c.Server.BatchConcurrency)
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return errors.New("mqtt.broker: required when mqtt is enabled")
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos: must be 0, 1 or 2, got %d", c.MQTT.QoS)
		}
	}

	if _, ok := carbon.ParsePeriodConvention(c.Estimator.Convention); !ok {
		return fmt.Errorf("estimator.convention: unknown convention %q", c.Estimator.Convention)
	}
	if _, err := c.Rules.RuleSet(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

// Periods returns the configured period convention.
func (e EstimatorConfig) Periods() carbon.PeriodConvention {
	p, ok := carbon.ParsePeriodConvention(e.Convention)
	if !ok {
		return carbon.MonthlyPeriods()
	}
	return p
}

// Registry builds a factor table registry from the embedded default table
// and every configured factors file.
func (e EstimatorConfig) Registry() (*carbon.Registry, error) {
	tables := []*carbon.FactorTable{carbon.DefaultFactorTable()}
	for _, path := range e.FactorsFiles {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		t, err := carbon.LoadFactorTableFile(path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	reg, err := carbon.NewRegistry(tables...)
	if err != nil {
		return nil, err
	}
	if e.FactorVersion != "" {
		if _, err := reg.Get(e.FactorVersion); err != nil {
			return nil, fmt.Errorf("estimator.factor_version: %w", err)
		}
	}
	return reg, nil
}

// RuleSet applies the configured thresholds and impacts to the default
// recommendation actions.
func (r RulesConfig) RuleSet() (carbon.RuleSet, error) {
	overrides := map[carbon.Category][2]float64{
		carbon.CategoryTransport: {r.TransportThresholdKg, r.TransportImpactPercent},
		carbon.CategoryEnergy:    {r.EnergyThresholdKg, r.EnergyImpactPercent},
		carbon.CategoryFood:      {r.FoodThresholdKg, r.FoodImpactPercent},
		carbon.CategoryWaste:     {r.WasteThresholdKg, r.WasteImpactPercent},
	}

	rules := carbon.DefaultRules().Rules()
	for i := range rules {
		o := overrides[rules[i].Category]
		rules[i].ThresholdKg = o[0]
		rules[i].ImpactPercent = o[1]
	}
	return carbon.NewRuleSet(rules...)
}
