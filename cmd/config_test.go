package cmd

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/iedriver/errext"
	"github.com/liuxd6825/iedriver/errext/exitcodes"
	"github.com/liuxd6825/iedriver/lib/types"
)

func TestConfigConsolidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		file  string
		env   map[string]string
		args  []string
		check func(t *testing.T, c Config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, null.StringFrom(defaultAddress), c.Address)
				assert.Equal(t, "info", c.LogLevel.String)
				assert.False(t, c.AtomsDir.Valid)
				assert.Equal(t, types.NullDurationFrom(time.Second), c.DialogReadyTimeout)
				assert.Equal(t, 10*time.Millisecond, c.DialogPollInterval.TimeDuration())
				assert.Equal(t, "none", c.TracesOutput.String)
			},
		},
		{
			name: "file",
			file: `{"address":"0.0.0.0:4444","dialogReadyTimeout":"3s","dialogPollInterval":50}`,
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "0.0.0.0:4444", c.Address.String)
				assert.Equal(t, 3*time.Second, c.DialogReadyTimeout.TimeDuration())
				assert.Equal(t, 50*time.Millisecond, c.DialogPollInterval.TimeDuration())
			},
		},
		{
			name: "env over file",
			file: `{"address":"0.0.0.0:4444","logLevel":"warn"}`,
			env: map[string]string{
				"IEDRIVER_ADDRESS":              "127.0.0.1:6000",
				"IEDRIVER_DIALOG_READY_TIMEOUT": "2s",
				"IEDRIVER_ATOMS_DIR":            "/atoms",
				"IEDRIVER_TRACES_OUTPUT":        "otel=collector:4317",
			},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "127.0.0.1:6000", c.Address.String)
				assert.Equal(t, "warn", c.LogLevel.String)
				assert.Equal(t, null.StringFrom("/atoms"), c.AtomsDir)
				assert.Equal(t, 2*time.Second, c.DialogReadyTimeout.TimeDuration())
				assert.Equal(t, "otel=collector:4317", c.TracesOutput.String)
			},
		},
		{
			name: "flags over env",
			env:  map[string]string{"IEDRIVER_ADDRESS": "127.0.0.1:6000", "IEDRIVER_LOG_LEVEL": "error"},
			args: []string{"-a", "127.0.0.1:7000", "--dialog-poll-interval", "25ms", "--log-filter", "^Accept"},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "127.0.0.1:7000", c.Address.String)
				assert.Equal(t, "error", c.LogLevel.String)
				assert.Equal(t, "^Accept", c.LogFilter.String)
				assert.Equal(t, 25*time.Millisecond, c.DialogPollInterval.TimeDuration())

				opts := c.SessionOptions()
				assert.Equal(t, time.Second, opts.DialogReady.Timeout)
				assert.Equal(t, 25*time.Millisecond, opts.DialogReady.PollInterval)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gs := &globalState{fs: afero.NewMemMapFs(), envVars: tc.env, flags: getDefaultFlags("/config")}
			if tc.file != "" {
				require.NoError(t, afero.WriteFile(gs.fs, gs.flags.configFilePath, []byte(tc.file), 0o644))
			}
			flags := configFlagSet()
			require.NoError(t, flags.Parse(tc.args))
			cliConf, err := getConfig(flags)
			require.NoError(t, err)

			conf, err := getConsolidatedConfig(gs, cliConf)
			require.NoError(t, err)
			tc.check(t, conf)
		})
	}
}

func TestConfigInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
		env  map[string]string
		msg  string
	}{
		{name: "bad json", file: `{"address":`, msg: "couldn't parse the configuration file"},
		{name: "bad level", env: map[string]string{"IEDRIVER_LOG_LEVEL": "loud"}, msg: "logLevel"},
		{name: "bad filter", file: `{"logFilter":"("}`, msg: "logFilter"},
		{name: "negative timeout", file: `{"dialogReadyTimeout":"-1s"}`, msg: "negative"},
		{name: "poll over timeout", file: `{"dialogReadyTimeout":"10ms","dialogPollInterval":"1s"}`, msg: "must not exceed"},
		{name: "bad traces output", file: `{"tracesOutput":"otel,proto=udp"}`, msg: "tracesOutput"},
		{name: "bad env duration", env: map[string]string{"IEDRIVER_DIALOG_POLL_INTERVAL": "soon"}, msg: "IEDRIVER_DIALOG_POLL_INTERVAL"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gs := &globalState{fs: afero.NewMemMapFs(), envVars: tc.env, flags: getDefaultFlags("/config")}
			if tc.file != "" {
				require.NoError(t, afero.WriteFile(gs.fs, gs.flags.configFilePath, []byte(tc.file), 0o644))
			}
			_, err := getConsolidatedConfig(gs, Config{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)

			var ecerr errext.HasExitCode
			require.ErrorAs(t, err, &ecerr)
			assert.Equal(t, exitcodes.InvalidConfig, ecerr.ExitCode())
		})
	}
}

func TestGetFlags(t *testing.T) {
	t.Parallel()

	defaults := getDefaultFlags("/home/u/.config")
	assert.Equal(t, "/home/u/.config/iedriver/config.json", defaults.configFilePath)

	flags := getFlags(defaults, map[string]string{
		"IEDRIVER_CONFIG":     "/etc/iedriver.json",
		"IEDRIVER_LOG_OUTPUT": "none",
		"IEDRIVER_LOG_FORMAT": "json",
		"NO_COLOR":            "",
	})
	assert.Equal(t, "/etc/iedriver.json", flags.configFilePath)
	assert.Equal(t, "none", flags.logOutput)
	assert.Equal(t, "json", flags.logFormat)
	assert.True(t, flags.noColor)

	assert.Equal(t, map[string]string{"A": "1", "B": "x=y", "C": ""}, buildEnvMap([]string{"A=1", "B=x=y", "C"}))
}
