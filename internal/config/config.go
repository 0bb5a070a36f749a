package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	EDGAR        EDGARConfig        `yaml:"edgar" mapstructure:"edgar"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator" mapstructure:"orchestrator"`
	Anomaly      AnomalyConfig      `yaml:"anomaly" mapstructure:"anomaly"`
	Batch        BatchConfig        `yaml:"batch" mapstructure:"batch"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// EDGARConfig configures the SEC EDGAR statement source.
type EDGARConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// OrchestratorConfig configures the job orchestrator.
type OrchestratorConfig struct {
	Workers          int `yaml:"workers" mapstructure:"workers"`
	StageTimeoutSecs int `yaml:"stage_timeout_secs" mapstructure:"stage_timeout_secs"`
	CacheTTLHours    int `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// AnomalyConfig holds thresholds for the rule-based anomaly pass.
type AnomalyConfig struct {
	RevenueDeclinePct    float64 `yaml:"revenue_decline_pct" mapstructure:"revenue_decline_pct"`
	ProfitCashGapPct     float64 `yaml:"profit_cash_gap_pct" mapstructure:"profit_cash_gap_pct"`
	ReceivablesGapPct    float64 `yaml:"receivables_gap_pct" mapstructure:"receivables_gap_pct"`
	BenfordDeviationPct  float64 `yaml:"benford_deviation_pct" mapstructure:"benford_deviation_pct"`
	BenfordComplianceMin float64 `yaml:"benford_compliance_min" mapstructure:"benford_compliance_min"`
}

// BatchConfig configures batch submission.
type BatchConfig struct {
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
}

// ServerConfig configures the HTTP server.
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
	v.SetEnvPrefix("FORENSICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "forensics.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("edgar.base_url", "https://data.sec.gov")
	v.SetDefault("edgar.user_agent", "Sells Advisors blake@sellsadvisors.com")
	v.SetDefault("edgar.rate_per_sec", 8)
	v.SetDefault("edgar.timeout_secs", 30)
	v.SetDefault("orchestrator.workers", 3)
	v.SetDefault("orchestrator.stage_timeout_secs", 120)
	v.SetDefault("orchestrator.cache_ttl_hours", 24)
	v.SetDefault("anomaly.revenue_decline_pct", 20)
	v.SetDefault("anomaly.profit_cash_gap_pct", 30)
	v.SetDefault("anomaly.receivables_gap_pct", 15)
	v.SetDefault("anomaly.benford_deviation_pct", 3)
	v.SetDefault("anomaly.benford_compliance_min", 90)
	v.SetDefault("batch.max_concurrent_companies", 5)

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
