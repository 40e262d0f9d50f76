package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"dario.cat/mergo"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	errUtils "github.com/cloudposse/pomgraph/errors"
	"github.com/cloudposse/pomgraph/pkg/descriptor"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
	"github.com/cloudposse/pomgraph/pkg/schema"
)

// loader tracks the files merged into one viper instance.
type loader struct {
	v     *viper.Viper
	files []string
}

// LoadConfig loads `pomgraph.yaml` from the following locations, from lower
// to higher priority:
// system dir (`/usr/local/etc/pomgraph` on Linux, `%LOCALAPPDATA%/pomgraph` on Windows),
// home dir (~/.pomgraph),
// current directory,
// POMGRAPH_CLI_CONFIG_PATH,
// the --config flag.
// POMGRAPH_* environment variables override the files and flags override everything.
func LoadConfig(flags schema.ConfigAndFlags) (schema.Configuration, error) {
	defer perf.Track(nil, "config.LoadConfig")()

	var cfg schema.Configuration
	l := &loader{v: viper.New()}
	l.v.SetConfigType("yaml")
	l.v.SetTypeByDefaultValue(true)
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
	setDefaultConfiguration(l.v)

	steps := []func() error{l.readSystemConfig, l.readHomeConfig, l.readWorkDirConfig, l.readEnvConfigPath}
	for _, step := range steps {
		if err := step(); err != nil {
			return cfg, wrapLoadError(err)
		}
	}
	if flags.ConfigPath != "" {
		if err := l.readExplicitConfig(flags.ConfigPath); err != nil {
			return cfg, wrapLoadError(err)
		}
	}

	if err := l.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", errUtils.ErrLoadConfig, err)
	}

	stores, err := readStores(l.files)
	if err != nil {
		return cfg, err
	}
	cfg.Stores = stores

	if len(l.files) > 0 {
		cfg.CliConfigPath = l.files[len(l.files)-1]
	} else {
		log.Debug("'pomgraph.yaml' CLI config was not found", "paths", "system dir, home dir, current dir, ENV vars")
		log.Debug("Using the default CLI config")
	}
	// A relative base path from a config file is relative to that file.
	if l.v.InConfig("base_path") && !isFromEnv("base_path") && cfg.CliConfigPath != "" {
		if expanded, err := homedir.Expand(cfg.BasePath); err == nil && !filepath.IsAbs(expanded) {
			cfg.BasePath = filepath.Join(filepath.Dir(cfg.CliConfigPath), expanded)
		}
	}

	if err := applyFlags(&cfg, flags); err != nil {
		return cfg, err
	}
	if err := finalize(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func wrapLoadError(err error) error {
	return errUtils.Build(fmt.Errorf("%w: %w", errUtils.ErrLoadConfig, err)).
		WithHint("check the YAML syntax of pomgraph.yaml").
		Err()
}

// setDefaultConfiguration sets the defaults. Every key named here can also be
// set from the environment.
func setDefaultConfiguration(v *viper.Viper) {
	v.SetDefault("base_path", ".")
	v.SetDefault("descriptors.included_paths", descriptor.DefaultIncludedPaths)
	v.SetDefault("descriptors.excluded_paths", descriptor.DefaultExcludedPaths)
	v.SetDefault("descriptors.lock_file", ".pomgraph.lock")
	v.SetDefault("propagation.superpom_bump", "acquire-flavor")
	v.SetDefault("propagation.mismatch", "abort")
	v.SetDefault("propagation.max_rounds", 0)
	v.SetDefault("propagation.remove_redundant_versions", true)
	v.SetDefault("publish.url", "")
	v.SetDefault("publish.timeout", "30s")
	v.SetDefault("publish.token", "")
	v.SetDefault("logs.file", "/dev/stderr")
	v.SetDefault("logs.level", "Info")
	v.SetDefault("profiler.enabled", false)
}

// readSystemConfig loads config from the system dir.
func (l *loader) readSystemConfig() error {
	configFilePath := ""
	if runtime.GOOS == "windows" {
		if appDataDir := os.Getenv(WindowsAppDataEnvVar); appDataDir != "" {
			configFilePath = filepath.Join(appDataDir, CliConfigFileName)
		}
	} else {
		configFilePath = SystemDirConfigFilePath
	}
	if configFilePath == "" {
		return nil
	}
	return ignoreNotFound(l.mergeConfig(configFilePath))
}

// readHomeConfig loads config from ~/.pomgraph.
func (l *loader) readHomeConfig() error {
	home, err := homedir.Dir()
	if err != nil {
		return err
	}
	return ignoreNotFound(l.mergeConfig(filepath.Join(home, DotCliConfigDir)))
}

// readWorkDirConfig loads config from the current working directory.
func (l *loader) readWorkDirConfig() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	return ignoreNotFound(l.mergeConfig(wd))
}

func (l *loader) readEnvConfigPath() error {
	dir := os.Getenv(CliConfigPathEnvVar)
	if dir == "" {
		return nil
	}
	err := l.mergeConfig(dir)
	if isNotFound(err) {
		log.Debug("config not found in ENV var "+CliConfigPathEnvVar, "path", dir)
		return nil
	}
	if err == nil {
		log.Debug("Found config ENV", CliConfigPathEnvVar, dir)
	}
	return err
}

// readExplicitConfig loads --config, which may name a file or a directory.
// Unlike the other locations it must exist.
func (l *loader) readExplicitConfig(path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return fmt.Errorf("config file '%s' does not exist", path)
	}
	if info.IsDir() {
		return l.mergeConfig(expanded)
	}
	return l.mergeFile(expanded)
}

var errConfigNotFound = errors.New("config file not found")

// mergeConfig merges pomgraph.yaml or pomgraph.yml from dir.
func (l *loader) mergeConfig(dir string) error {
	for _, ext := range []string{"yaml", "yml"} {
		path := filepath.Join(dir, CliConfigFileName+"."+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return l.mergeFile(path)
		}
	}
	return fmt.Errorf("%w in %s", errConfigNotFound, dir)
}

func (l *loader) mergeFile(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if slices.Contains(l.files, path) {
		return nil
	}
	l.v.SetConfigFile(path)
	if err := l.v.MergeInConfig(); err != nil {
		return err
	}
	l.files = append(l.files, path)
	log.Trace("Merged config file", "path", path)
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, errConfigNotFound)
}

func ignoreNotFound(err error) error {
	if isNotFound(err) {
		return nil
	}
	return err
}

// applyFlags overrides the loaded configuration with non-empty flag values.
func applyFlags(cfg *schema.Configuration, flags schema.ConfigAndFlags) error {
	override := schema.Configuration{
		BasePath: flags.BasePath,
		Propagation: schema.Propagation{
			SuperpomBump: flags.SuperpomBump,
			Mismatch:     flags.Mismatch,
		},
		Logs:     schema.Logs{File: flags.LogsFile, Level: flags.LogsLevel},
		Profiler: schema.Profiler{Enabled: flags.Profile},
	}
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrMergeConfig, err)
	}
	return nil
}

// finalize validates the configuration and computes derived fields.
func finalize(cfg *schema.Configuration) error {
	if _, err := log.ParseLogLevel(cfg.Logs.Level); err != nil {
		return errUtils.Build(err).
			WithHintf("set %s or logs.level to one of Trace, Debug, Info, Warning, Off", LogsLevelFlag).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}

	basePath, err := homedir.Expand(cfg.BasePath)
	if err != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrLoadConfig, err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return fmt.Errorf("%w: %w", errUtils.ErrLoadConfig, err)
	}
	cfg.BasePathAbsolute = abs

	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return errUtils.Build(fmt.Errorf("%w: '%s'", errUtils.ErrMissingBasePath, abs)).
			WithHintf("set %s, POMGRAPH_BASE_PATH, or base_path in pomgraph.yaml", BasePathFlag).
			WithExitCode(errUtils.ExitCodeUsage).
			Err()
	}
	return nil
}

func isFromEnv(key string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + strings.ToUpper(key))
	return ok
}
