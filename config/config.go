// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package config loads the cache's bootstrap configuration: defaults,
// an optional file on a search path, and flag overrides, all layered
// through viper. Environment variables are not read.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const applicationName = "slsd"

// Config is the full set of values needed to build an sls.Cache and its
// HTTP server.
type Config struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	SLSID   string `mapstructure:"sls-id"`
	Log     Log    `mapstructure:"log"`
	Lease   Lease  `mapstructure:"lease"`
	Sub     Sub    `mapstructure:"subscription"`
	Maint   Maint  `mapstructure:"maintenance"`
	Archive bool   `mapstructure:"archive-enabled"`
}

// Log configures the zap logger built in cmd/slsd.
type Log struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Lease configures the lease manager's admission policy.
type Lease struct {
	Capacity   int           `mapstructure:"capacity"`
	DefaultTTL time.Duration `mapstructure:"default-ttl"`
}

// Sub configures subscription delivery defaults and worker pool sizing.
type Sub struct {
	Workers     int           `mapstructure:"workers"`
	RetireAfter int           `mapstructure:"retire-after"`
	PushTimeout time.Duration `mapstructure:"push-timeout"`
}

// Maint configures the maintenance scheduler's tick intervals.
type Maint struct {
	PruneInterval  time.Duration `mapstructure:"prune-interval"`
	FlushInterval  time.Duration `mapstructure:"flush-interval"`
	PruneThreshold time.Duration `mapstructure:"prune-threshold"`
}

// Default returns a Config with every field set to a sane standalone
// default, used before any config file/flags are applied.
func Default() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		SLSID:   "local",
		Log:     Log{Level: "INFO", Encoding: "json"},
		Lease:   Lease{Capacity: 0, DefaultTTL: time.Hour},
		Sub:     Sub{Workers: 4, RetireAfter: 3, PushTimeout: 8 * time.Second},
		Maint:   Maint{PruneInterval: time.Minute, FlushInterval: 30 * time.Second, PruneThreshold: 5 * time.Minute},
		Archive: true,
	}
}

// SetupFlagSet registers the CLI flags recognized by cmd/slsd.
func SetupFlagSet(fs *pflag.FlagSet) {
	fs.StringP("file", "f", "", "the configuration file to use. Overrides the search path.")
	fs.BoolP("debug", "d", false, "enables debug logging. Overrides configuration.")
	fs.String("host", "", "bind address, overrides config file")
	fs.Int("port", 0, "bind port, overrides config file")
	fs.String("config-dir", "", "additional directory to search for the config file, ahead of the default search path")
	fs.String("log-config", "", "path to a separate log-only config file, merged over the main config's log section")
	fs.String("data-dir", "", "directory for on-disk state, reserved for future persistence backends")
}

// Load builds a viper instance from args, reading a config file if one
// is named or discoverable on the search path, and returns the decoded
// Config layered on top of Default().
func Load(args []string) (Config, *viper.Viper, error) {
	cfg := Default()

	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	SetupFlagSet(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, nil, fmt.Errorf("parse args: %w", err)
	}

	v := viper.New()
	if file, _ := fs.GetString("file"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(applicationName)
		if dir, _ := fs.GetString("config-dir"); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(fmt.Sprintf("/etc/%s", applicationName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.%s", applicationName))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return cfg, v, fmt.Errorf("read config file: %w", err)
		}
	}

	if logFile, _ := fs.GetString("log-config"); logFile != "" {
		lv := viper.New()
		lv.SetConfigFile(logFile)
		if err := lv.ReadInConfig(); err != nil {
			return cfg, v, fmt.Errorf("read log config file: %w", err)
		}
		if err := v.MergeConfigMap(map[string]interface{}{"log": lv.AllSettings()}); err != nil {
			return cfg, v, fmt.Errorf("merge log config: %w", err)
		}
	}

	if debug, _ := fs.GetBool("debug"); debug {
		v.Set("log.level", "DEBUG")
	}
	if host, _ := fs.GetString("host"); host != "" {
		v.Set("host", host)
	}
	if port, _ := fs.GetInt("port"); port != 0 {
		v.Set("port", port)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, v, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, v, nil
}
