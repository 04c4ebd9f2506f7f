package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"time"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/iedriver/dialog"
	"github.com/liuxd6825/iedriver/errext"
	"github.com/liuxd6825/iedriver/errext/exitcodes"
	"github.com/liuxd6825/iedriver/lib/types"
	"github.com/liuxd6825/iedriver/session"
	"github.com/liuxd6825/iedriver/trace"
)

const defaultAddress = "localhost:5555"

func configFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringP("address", "a", defaultAddress, "address for the wire protocol server")
	flags.String("log-level", "info", "minimum level of driver log lines")
	flags.String("log-filter", "", "only log categories matching this `regexp`")
	flags.String("atoms-dir", "", "`directory` with atom overrides")
	flags.Duration("dialog-ready-timeout", dialog.DefaultReadyTimeout, "how long to wait for dialog buttons")
	flags.Duration("dialog-poll-interval", dialog.DefaultPollInterval, "first interval between dialog readiness checks")
	flags.String("traces-output", trace.OutputNone, "where command traces go: `none` or otel[=<endpoint>][,proto=grpc|http]")
	return flags
}

// Config is the driver configuration, consolidated from defaults, the JSON
// config file, the environment and CLI flags, in increasing priority.
type Config struct {
	Address            null.String        `json:"address" envconfig:"IEDRIVER_ADDRESS"`
	LogLevel           null.String        `json:"logLevel" envconfig:"IEDRIVER_LOG_LEVEL"`
	LogFilter          null.String        `json:"logFilter" envconfig:"IEDRIVER_LOG_FILTER"`
	AtomsDir           null.String        `json:"atomsDir" envconfig:"IEDRIVER_ATOMS_DIR"`
	DialogReadyTimeout types.NullDuration `json:"dialogReadyTimeout" envconfig:"IEDRIVER_DIALOG_READY_TIMEOUT"`
	DialogPollInterval types.NullDuration `json:"dialogPollInterval" envconfig:"IEDRIVER_DIALOG_POLL_INTERVAL"`
	TracesOutput       null.String        `json:"tracesOutput" envconfig:"IEDRIVER_TRACES_OUTPUT"`
}

// Apply the provided config on top of the current one, returning a new one.
// The provided config has priority over the current one.
func (c Config) Apply(cfg Config) Config {
	if cfg.Address.Valid {
		c.Address = cfg.Address
	}
	if cfg.LogLevel.Valid {
		c.LogLevel = cfg.LogLevel
	}
	if cfg.LogFilter.Valid {
		c.LogFilter = cfg.LogFilter
	}
	if cfg.AtomsDir.Valid {
		c.AtomsDir = cfg.AtomsDir
	}
	if cfg.DialogReadyTimeout.Valid {
		c.DialogReadyTimeout = cfg.DialogReadyTimeout
	}
	if cfg.DialogPollInterval.Valid {
		c.DialogPollInterval = cfg.DialogPollInterval
	}
	if cfg.TracesOutput.Valid {
		c.TracesOutput = cfg.TracesOutput
	}
	return c
}

// SessionOptions returns the options every new session gets.
func (c Config) SessionOptions() session.Options {
	return session.Options{
		DialogReady: dialog.ReadyOptions{
			Timeout:      c.DialogReadyTimeout.TimeDuration(),
			PollInterval: c.DialogPollInterval.TimeDuration(),
		},
	}
}

// Gets configuration from CLI flags.
func getConfig(flags *pflag.FlagSet) (Config, error) {
	var conf Config
	var err error
	if conf.Address, err = getNullString(flags, "address"); err != nil {
		return conf, err
	}
	if conf.LogLevel, err = getNullString(flags, "log-level"); err != nil {
		return conf, err
	}
	if conf.LogFilter, err = getNullString(flags, "log-filter"); err != nil {
		return conf, err
	}
	if conf.AtomsDir, err = getNullString(flags, "atoms-dir"); err != nil {
		return conf, err
	}
	if conf.DialogReadyTimeout, err = getNullDuration(flags, "dialog-ready-timeout"); err != nil {
		return conf, err
	}
	if conf.DialogPollInterval, err = getNullDuration(flags, "dialog-poll-interval"); err != nil {
		return conf, err
	}
	if conf.TracesOutput, err = getNullString(flags, "traces-output"); err != nil {
		return conf, err
	}
	return conf, nil
}

func getNullString(flags *pflag.FlagSet, key string) (null.String, error) {
	v, err := flags.GetString(key)
	if err != nil {
		return null.String{}, err
	}
	return null.NewString(v, flags.Changed(key)), nil
}

func getNullDuration(flags *pflag.FlagSet, key string) (types.NullDuration, error) {
	v, err := flags.GetDuration(key)
	if err != nil {
		return types.NullDuration{}, err
	}
	return types.NewNullDuration(v, flags.Changed(key)), nil
}

// readDiskConfig reads the JSON config file. A missing file is an empty
// config.
func readDiskConfig(gs *globalState) (Config, error) {
	data, err := afero.ReadFile(gs.fs, gs.flags.configFilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	} else if err != nil {
		return Config{}, err
	}
	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return Config{}, fmt.Errorf("couldn't parse the configuration file %q: %w", gs.flags.configFilePath, err)
	}
	return conf, nil
}

// Reads configuration variables from the environment.
func readEnvConfig(envMap map[string]string) (Config, error) {
	var conf Config
	err := envconfig.Process("", &conf, func(key string) (string, bool) {
		v, ok := envMap[key]
		return v, ok
	})
	return conf, err
}

func applyDefault(conf Config) Config {
	if !conf.Address.Valid {
		conf.Address = null.StringFrom(defaultAddress)
	}
	if !conf.LogLevel.Valid {
		conf.LogLevel = null.StringFrom("info")
	}
	if !conf.DialogReadyTimeout.Valid {
		conf.DialogReadyTimeout = types.NullDurationFrom(dialog.DefaultReadyTimeout)
	}
	if !conf.DialogPollInterval.Valid {
		conf.DialogPollInterval = types.NullDurationFrom(dialog.DefaultPollInterval)
	}
	if !conf.TracesOutput.Valid {
		conf.TracesOutput = null.StringFrom(trace.OutputNone)
	}
	return conf
}

func validateConfig(conf Config) error {
	var errs []error
	if _, err := logrus.ParseLevel(conf.LogLevel.String); err != nil {
		errs = append(errs, fmt.Errorf("logLevel: %w", err))
	}
	if conf.LogFilter.String != "" {
		if _, err := regexp.Compile(conf.LogFilter.String); err != nil {
			errs = append(errs, fmt.Errorf("logFilter: %w", err))
		}
	}
	if conf.Address.String == "" {
		errs = append(errs, errors.New("address must not be empty"))
	}
	if conf.DialogReadyTimeout.Duration <= 0 {
		errs = append(errs, errors.New("dialogReadyTimeout must be positive"))
	}
	if conf.DialogPollInterval.Duration <= 0 {
		errs = append(errs, errors.New("dialogPollInterval must be positive"))
	}
	if time.Duration(conf.DialogPollInterval.Duration) > time.Duration(conf.DialogReadyTimeout.Duration) {
		errs = append(errs, errors.New("dialogPollInterval must not exceed dialogReadyTimeout"))
	}
	if err := trace.ValidateConfigLine(conf.TracesOutput.String); err != nil {
		errs = append(errs, fmt.Errorf("tracesOutput: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return errext.WithHint(
		errext.WithExitCodeIfNone(errors.Join(errs...), exitcodes.InvalidConfig),
		"check the config file, the IEDRIVER_* environment variables and the CLI flags",
	)
}

// getConsolidatedConfig assembles the final config from defaults < file <
// environment < CLI flags and validates it.
func getConsolidatedConfig(gs *globalState, cliConf Config) (Config, error) {
	fileConf, err := readDiskConfig(gs)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	envConf, err := readEnvConfig(gs.envVars)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	conf := applyDefault(fileConf.Apply(envConf).Apply(cliConf))
	return conf, validateConfig(conf)
}
