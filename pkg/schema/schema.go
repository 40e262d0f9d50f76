package schema

import "time"

// Configuration is the schema of `pomgraph.yaml`.
type Configuration struct {
	BasePath    string                 `yaml:"base_path" json:"base_path" mapstructure:"base_path"`
	Descriptors Descriptors            `yaml:"descriptors" json:"descriptors" mapstructure:"descriptors"`
	Stores      map[string]StoreConfig `yaml:"stores,omitempty" json:"stores,omitempty" mapstructure:"stores"`
	Propagation Propagation            `yaml:"propagation" json:"propagation" mapstructure:"propagation"`
	Publish     Publish                `yaml:"publish,omitempty" json:"publish,omitempty" mapstructure:"publish"`
	Logs        Logs                   `yaml:"logs,omitempty" json:"logs,omitempty" mapstructure:"logs"`
	Profiler    Profiler               `yaml:"profiler,omitempty" json:"profiler,omitempty" mapstructure:"profiler"`

	// Computed at load time.
	BasePathAbsolute string `yaml:"-" json:"base_path_absolute,omitempty" mapstructure:"-"`
	CliConfigPath    string `yaml:"-" json:"cli_config_path,omitempty" mapstructure:"-"`
}

// Descriptors selects the descriptor files that make up the forest.
type Descriptors struct {
	IncludedPaths []string `yaml:"included_paths" json:"included_paths" mapstructure:"included_paths"`
	ExcludedPaths []string `yaml:"excluded_paths" json:"excluded_paths" mapstructure:"excluded_paths"`
	// LockFile guards rewrites; relative to the base path.
	LockFile string `yaml:"lock_file,omitempty" json:"lock_file,omitempty" mapstructure:"lock_file"`
}

// StoreConfig declares one descriptor store.
type StoreConfig struct {
	Type    string         `yaml:"type" json:"type" mapstructure:"type"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty" mapstructure:"options"`
}

// Propagation holds the version propagation defaults.
type Propagation struct {
	SuperpomBump            string `yaml:"superpom_bump" json:"superpom_bump" mapstructure:"superpom_bump"`
	Mismatch                string `yaml:"mismatch" json:"mismatch" mapstructure:"mismatch"`
	MaxRounds               int    `yaml:"max_rounds,omitempty" json:"max_rounds,omitempty" mapstructure:"max_rounds"`
	RemoveRedundantVersions bool   `yaml:"remove_redundant_versions" json:"remove_redundant_versions" mapstructure:"remove_redundant_versions"`
}

// Publish configures the remote repository used for publish checks.
type Publish struct {
	URL     string        `yaml:"url,omitempty" json:"url,omitempty" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" mapstructure:"timeout"`
	Token   string        `yaml:"token,omitempty" json:"-" mapstructure:"token"`
	Retry   *RetryConfig  `yaml:"retry,omitempty" json:"retry,omitempty" mapstructure:"retry"`
}

type Logs struct {
	File  string `yaml:"file" json:"file" mapstructure:"file"`
	Level string `yaml:"level" json:"level" mapstructure:"level"`
}

type Profiler struct {
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
}

// BackoffStrategy names a retry delay curve.
type BackoffStrategy string

const (
	BackoffConstant    BackoffStrategy = "constant"
	BackoffLinear      BackoffStrategy = "linear"
	BackoffExponential BackoffStrategy = "exponential"
)

// RetryConfig configures pkg/retry.
type RetryConfig struct {
	MaxAttempts     int             `yaml:"max_attempts" json:"max_attempts" mapstructure:"max_attempts"`
	BackoffStrategy BackoffStrategy `yaml:"backoff_strategy" json:"backoff_strategy" mapstructure:"backoff_strategy"`
	InitialDelay    time.Duration   `yaml:"initial_delay" json:"initial_delay" mapstructure:"initial_delay"`
	MaxDelay        time.Duration   `yaml:"max_delay" json:"max_delay" mapstructure:"max_delay"`
	RandomJitter    bool            `yaml:"random_jitter" json:"random_jitter" mapstructure:"random_jitter"`
	Multiplier      float64         `yaml:"multiplier" json:"multiplier" mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration   `yaml:"max_elapsed_time" json:"max_elapsed_time" mapstructure:"max_elapsed_time"`
}

// ConfigAndFlags carries CLI overrides into config loading.
type ConfigAndFlags struct {
	BasePath     string
	ConfigPath   string
	LogsLevel    string
	LogsFile     string
	SuperpomBump string
	Mismatch     string
	Profile      bool
}
