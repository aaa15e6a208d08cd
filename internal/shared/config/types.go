package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig describes one MySQL connection. The analytics store and the
// source ticketing database are configured independently.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LLMConfig covers the local generation endpoint shared by the extraction
// workers and both consolidation passes.
type LLMConfig struct {
	Host           string  `mapstructure:"host"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Temperature    float64 `mapstructure:"temperature"`
	JSONMode       bool    `mapstructure:"json_mode"`
}

type ExtractionConfig struct {
	Model           string `mapstructure:"model"`
	PromptPath      string `mapstructure:"prompt_path"`
	BatchSize       int    `mapstructure:"batch_size"`
	WorkerCount     int    `mapstructure:"worker_count"`
	BatchDelaySecs  int    `mapstructure:"batch_delay_seconds"`
	StartJitterSecs int    `mapstructure:"start_jitter_seconds"`
}

type ConsolidationConfig struct {
	Model          string `mapstructure:"model"`
	PromptPath     string `mapstructure:"prompt_path"`
	BatchSize      int    `mapstructure:"batch_size"`
	BatchDelaySecs int    `mapstructure:"batch_delay_seconds"`
	FailureLogDir  string `mapstructure:"failure_log_dir"`
}

type IngestionConfig struct {
	FetchLimit int `mapstructure:"fetch_limit"`
}

type ControllerConfig struct {
	IdleSleepMinutes int `mapstructure:"idle_sleep_minutes"`
}
