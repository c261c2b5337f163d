package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/common"
)

// Config holds all configuration for the application
type Config struct {
	Gridworld      GridworldConfig      `mapstructure:"gridworld"`
	ValueIteration ValueIterationConfig `mapstructure:"value_iteration"`
	QLearning      QLearningConfig      `mapstructure:"qlearning"`
	Pacman         PacmanConfig         `mapstructure:"pacman"`
	Server         ServerConfig         `mapstructure:"server"`
	Reports        ReportsConfig        `mapstructure:"reports"`
	Render         RenderConfig         `mapstructure:"render"`
}

// GridworldConfig holds the default gridworld dynamics
type GridworldConfig struct {
	Grid         string  `mapstructure:"grid"`
	Noise        float64 `mapstructure:"noise"`
	LivingReward float64 `mapstructure:"living_reward"`
	Seed         int64   `mapstructure:"seed"`
}

// ValueIterationConfig holds solver defaults
type ValueIterationConfig struct {
	Discount     float64 `mapstructure:"discount"`
	Iterations   int     `mapstructure:"iterations"`
	MaxMagnitude float64 `mapstructure:"max_magnitude"`
}

// QLearningConfig holds gridworld Q-learning defaults
type QLearningConfig struct {
	Episodes           int     `mapstructure:"episodes"`
	Epsilon            float64 `mapstructure:"epsilon"`
	Alpha              float64 `mapstructure:"alpha"`
	Discount           float64 `mapstructure:"discount"`
	MaxSteps           int     `mapstructure:"max_steps"`
	ReportEveryPercent float64 `mapstructure:"report_every_percent"`
}

// PacmanConfig holds Pacman experiment defaults
type PacmanConfig struct {
	Layout          string  `mapstructure:"layout"`
	Agent           string  `mapstructure:"agent"`
	Ghost           string  `mapstructure:"ghost"`
	NumTraining     int     `mapstructure:"num_training"`
	NumGames        int     `mapstructure:"num_games"`
	Epsilon         float64 `mapstructure:"epsilon"`
	Alpha           float64 `mapstructure:"alpha"`
	Discount        float64 `mapstructure:"discount"`
	MaxSteps        int     `mapstructure:"max_steps"`
	ContinueOnError bool    `mapstructure:"continue_on_error"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	RLServer RLServerConfig `mapstructure:"rl_server"`
}

// RLServerConfig holds gRPC experiment server configuration
type RLServerConfig struct {
	Host                     string `mapstructure:"host"`
	Port                     int    `mapstructure:"port"`
	LogLevel                 string `mapstructure:"log_level"`
	LogFormat                string `mapstructure:"log_format"`
	MaxConcurrentExperiments int    `mapstructure:"max_concurrent_experiments"`
	EnableReflection         bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay    int    `mapstructure:"graceful_shutdown_delay"`
	MonitorInterval          int    `mapstructure:"monitor_interval"`
}

// ReportsConfig controls where run summaries are written
type ReportsConfig struct {
	Type        string `mapstructure:"type"`
	BaseDir     string `mapstructure:"base_dir"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
}

// RenderConfig holds terminal and chart output settings
type RenderConfig struct {
	Color      bool   `mapstructure:"color"`
	Precision  int    `mapstructure:"precision"`
	ChartTitle string `mapstructure:"chart_title"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Gridworld defaults
	v.SetDefault("gridworld.grid", "BookGrid")
	v.SetDefault("gridworld.noise", 0.2)
	v.SetDefault("gridworld.living_reward", 0.0)
	v.SetDefault("gridworld.seed", 0)

	// Value iteration defaults
	v.SetDefault("value_iteration.discount", 0.9)
	v.SetDefault("value_iteration.iterations", 100)
	v.SetDefault("value_iteration.max_magnitude", 0.0)

	// Q-learning defaults
	v.SetDefault("qlearning.episodes", 100)
	v.SetDefault("qlearning.epsilon", 0.3)
	v.SetDefault("qlearning.alpha", 0.5)
	v.SetDefault("qlearning.discount", 0.9)
	v.SetDefault("qlearning.max_steps", 100)
	v.SetDefault("qlearning.report_every_percent", 5.0)

	// Pacman defaults
	v.SetDefault("pacman.layout", "smallGrid")
	v.SetDefault("pacman.agent", "PacmanQAgent")
	v.SetDefault("pacman.ghost", "random")
	v.SetDefault("pacman.num_training", 10)
	v.SetDefault("pacman.num_games", 1)
	v.SetDefault("pacman.epsilon", 0.05)
	v.SetDefault("pacman.alpha", 0.2)
	v.SetDefault("pacman.discount", 0.8)
	v.SetDefault("pacman.max_steps", 1000)
	v.SetDefault("pacman.continue_on_error", true)

	// gRPC server defaults
	v.SetDefault("server.rl_server.host", "0.0.0.0")
	v.SetDefault("server.rl_server.port", 50051)
	v.SetDefault("server.rl_server.log_level", "info")
	v.SetDefault("server.rl_server.log_format", "console")
	v.SetDefault("server.rl_server.max_concurrent_experiments", 4)
	v.SetDefault("server.rl_server.enable_reflection", true)
	v.SetDefault("server.rl_server.graceful_shutdown_delay", 5)
	v.SetDefault("server.rl_server.monitor_interval", 30)

	// Report defaults
	v.SetDefault("reports.type", "none")
	v.SetDefault("reports.base_dir", "./reports")
	v.SetDefault("reports.max_file_size", 10*1024*1024)

	// Render defaults
	v.SetDefault("render.color", true)
	v.SetDefault("render.precision", 2)
	v.SetDefault("render.chart_title", "Learning curve")
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/pacman-rl")
	}

	// Set environment variable prefix
	v.SetEnvPrefix("PRL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if configPath != "" {
			// Specific file requested but not found - that's ok, use defaults
		} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into config struct
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Validate checks the configuration for invalid values
func Validate(c *Config) error {
	// Gridworld
	if !common.IsProbability(c.Gridworld.Noise) {
		return fmt.Errorf("gridworld.noise must be between 0 and 1")
	}

	// Value iteration
	if !common.IsRate(c.ValueIteration.Discount) {
		return fmt.Errorf("value_iteration.discount must be in (0, 1]")
	}
	if c.ValueIteration.Iterations < 0 {
		return fmt.Errorf("value_iteration.iterations must be non-negative")
	}
	if c.ValueIteration.MaxMagnitude < 0 {
		return fmt.Errorf("value_iteration.max_magnitude must be non-negative")
	}

	// Q-learning
	if c.QLearning.Episodes < 0 {
		return fmt.Errorf("qlearning.episodes must be non-negative")
	}
	if !common.IsProbability(c.QLearning.Epsilon) {
		return fmt.Errorf("qlearning.epsilon must be between 0 and 1")
	}
	if !common.IsRate(c.QLearning.Alpha) {
		return fmt.Errorf("qlearning.alpha must be in (0, 1]")
	}
	if !common.IsRate(c.QLearning.Discount) {
		return fmt.Errorf("qlearning.discount must be in (0, 1]")
	}
	if c.QLearning.MaxSteps <= 0 {
		return fmt.Errorf("qlearning.max_steps must be positive")
	}
	if c.QLearning.ReportEveryPercent <= 0 || c.QLearning.ReportEveryPercent > 100 {
		return fmt.Errorf("qlearning.report_every_percent must be in (0, 100]")
	}

	// Pacman
	if c.Pacman.NumTraining < 0 {
		return fmt.Errorf("pacman.num_training must be non-negative")
	}
	if c.Pacman.NumGames < 0 {
		return fmt.Errorf("pacman.num_games must be non-negative")
	}
	if !common.IsProbability(c.Pacman.Epsilon) {
		return fmt.Errorf("pacman.epsilon must be between 0 and 1")
	}
	if !common.IsRate(c.Pacman.Alpha) {
		return fmt.Errorf("pacman.alpha must be in (0, 1]")
	}
	if !common.IsRate(c.Pacman.Discount) {
		return fmt.Errorf("pacman.discount must be in (0, 1]")
	}
	if c.Pacman.MaxSteps <= 0 {
		return fmt.Errorf("pacman.max_steps must be positive")
	}

	// Server
	if !common.IsValidPort(c.Server.RLServer.Port) {
		return fmt.Errorf("server.rl_server.port must be between 1 and 65535")
	}
	if c.Server.RLServer.MaxConcurrentExperiments <= 0 {
		return fmt.Errorf("server.rl_server.max_concurrent_experiments must be positive")
	}
	if c.Server.RLServer.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.rl_server.graceful_shutdown_delay must be non-negative")
	}
	if c.Server.RLServer.MonitorInterval < 0 {
		return fmt.Errorf("server.rl_server.monitor_interval must be non-negative")
	}

	// Reports
	switch c.Reports.Type {
	case "none", "file":
	default:
		return fmt.Errorf("reports.type must be none or file, got %q", c.Reports.Type)
	}
	if c.Reports.MaxFileSize < 0 {
		return fmt.Errorf("reports.max_file_size must be non-negative")
	}

	if c.Render.Precision < 0 || c.Render.Precision > 6 {
		return fmt.Errorf("render.precision must be between 0 and 6")
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	// Re-unmarshal with merged config
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return nil
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	// Re-unmarshal to update struct
	v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return v.GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. A reload that fails
// validation keeps the previous values and is reported through onChange.
func WatchConfig(onChange func(name string, err error)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		err := v.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err == nil {
			*cfg = *next
		}
		if onChange != nil {
			onChange(e.Name, err)
		}
	})
}
