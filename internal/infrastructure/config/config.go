package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "skillscope/internal/shared/config"
)

type Config struct {
	Server        sharedConfig.ServerConfig        `mapstructure:"server"`
	AnalyticsDB   sharedConfig.DatabaseConfig      `mapstructure:"analytics_db"`
	SourceDB      sharedConfig.DatabaseConfig      `mapstructure:"source_db"`
	Logger        sharedConfig.LoggerConfig        `mapstructure:"logger"`
	Redis         sharedConfig.RedisConfig         `mapstructure:"redis"`
	LLM           sharedConfig.LLMConfig           `mapstructure:"llm"`
	Extraction    sharedConfig.ExtractionConfig    `mapstructure:"extraction"`
	MetaAnalysis  sharedConfig.ConsolidationConfig `mapstructure:"meta_analysis"`
	Distillation  sharedConfig.ConsolidationConfig `mapstructure:"distillation"`
	Ingestion     sharedConfig.IngestionConfig     `mapstructure:"ingestion"`
	Controller    sharedConfig.ControllerConfig    `mapstructure:"controller"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("SKILLSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Extraction.Model == "" {
		return nil, fmt.Errorf("extraction.model is required")
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("analytics_db.driver", "mysql")
	v.SetDefault("analytics_db.host", "localhost")
	v.SetDefault("analytics_db.port", 3306)
	v.SetDefault("analytics_db.username", "root")
	v.SetDefault("analytics_db.password", "password")
	v.SetDefault("analytics_db.database", "ticket_analytics")
	v.SetDefault("analytics_db.max_idle_conns", 10)
	v.SetDefault("analytics_db.max_open_conns", 50)
	v.SetDefault("analytics_db.conn_max_lifetime", 60)

	v.SetDefault("source_db.driver", "mysql")
	v.SetDefault("source_db.host", "localhost")
	v.SetDefault("source_db.port", 3306)
	v.SetDefault("source_db.database", "servicedesk")
	v.SetDefault("source_db.max_idle_conns", 2)
	v.SetDefault("source_db.max_open_conns", 10)
	v.SetDefault("source_db.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("llm.host", "http://localhost:11434")
	v.SetDefault("llm.timeout_seconds", 90)
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.json_mode", true)

	v.SetDefault("extraction.model", "llama3:instruct")
	v.SetDefault("extraction.prompt_path", "prompts/skill_extraction.txt")
	v.SetDefault("extraction.batch_size", 10)
	v.SetDefault("extraction.worker_count", 4)
	v.SetDefault("extraction.batch_delay_seconds", 2)
	v.SetDefault("extraction.start_jitter_seconds", 5)

	v.SetDefault("meta_analysis.model", "llama3:instruct")
	v.SetDefault("meta_analysis.prompt_path", "prompts/skills_meta_analysis.txt")
	v.SetDefault("meta_analysis.batch_size", 200)
	v.SetDefault("meta_analysis.batch_delay_seconds", 2)
	v.SetDefault("meta_analysis.failure_log_dir", "logs")

	v.SetDefault("distillation.model", "llama3:instruct")
	v.SetDefault("distillation.prompt_path", "prompts/skill_distillation.txt")
	v.SetDefault("distillation.batch_size", 1000)
	v.SetDefault("distillation.batch_delay_seconds", 1)
	v.SetDefault("distillation.failure_log_dir", "logs")

	v.SetDefault("ingestion.fetch_limit", 1000)

	v.SetDefault("controller.idle_sleep_minutes", 60)
}
