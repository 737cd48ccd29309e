// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config resolves the client configuration from flags, environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/veilnet-labs/veilclient/utils/logging"
)

const (
	appName   = "veilclient"
	envPrefix = "VEILCLIENT"
)

var (
	homeDir        = os.ExpandEnv("$HOME")
	defaultDataDir = filepath.Join(homeDir, "."+appName)

	errNoNodeEndpoint = errors.New("node endpoint must be set")
)

// Config is the resolved client configuration.
type Config struct {
	// DataDir holds the database unless DBInMemory is set.
	DataDir    string
	DBInMemory bool

	NodeEndpoint string
	// ProverEndpoint selects a remote proving service; proofs are produced
	// in-process when empty.
	ProverEndpoint string
	RequestTimeout time.Duration

	LogLevel logging.Level

	SyncTimeout   time.Duration
	PollFrequency time.Duration
	CommitTimeout time.Duration

	MetricsNamespace string
}

func flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)

	fs.String(ConfigFileKey, "", "Specifies a config file")

	fs.String(DataDirKey, defaultDataDir, "Directory holding the client database")
	fs.Bool(DBInMemoryKey, false, "Keep state in memory instead of on disk. State is lost on exit")

	fs.String(NodeEndpointKey, "", "URI of the node to sync against. Example: http://127.0.0.1:9650")
	fs.String(ProverEndpointKey, "", "URI of a remote proving service. If empty, proofs are produced in-process")
	fs.Duration(RequestTimeoutKey, 10*time.Second, "Timeout of a single node request")

	fs.String(LogLevelKey, "info", "The log level. Should be one of {verbo, debug, info, warn, error, fatal}")

	fs.Duration(SyncTimeoutKey, 2*time.Minute, "Bound on one sync batch, fetch and apply included")
	fs.Duration(PollFrequencyKey, 500*time.Millisecond, "How often to re-check a submitted transaction's status")
	fs.Duration(CommitTimeoutKey, 5*time.Minute, "How long to wait for a submitted transaction to resolve")

	fs.String(MetricsNamespaceKey, appName, "Namespace prefixing all exported metrics")
	return fs
}

// BuildViper returns the viper environment from parsing the config file, the
// environment and [args], in ascending precedence.
func BuildViper(args []string) (*viper.Viper, error) {
	fs := flagSet()
	pfs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	pfs.AddGoFlagSet(fs)
	if err := pfs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(pfs); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if v.IsSet(ConfigFileKey) {
		v.SetConfigFile(os.ExpandEnv(v.GetString(ConfigFileKey)))
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// GetConfig builds a Config from the [viper] environment.
func GetConfig(v *viper.Viper) (Config, error) {
	config := Config{
		DataDir:          os.ExpandEnv(v.GetString(DataDirKey)),
		DBInMemory:       v.GetBool(DBInMemoryKey),
		NodeEndpoint:     v.GetString(NodeEndpointKey),
		ProverEndpoint:   v.GetString(ProverEndpointKey),
		RequestTimeout:   v.GetDuration(RequestTimeoutKey),
		SyncTimeout:      v.GetDuration(SyncTimeoutKey),
		PollFrequency:    v.GetDuration(PollFrequencyKey),
		CommitTimeout:    v.GetDuration(CommitTimeoutKey),
		MetricsNamespace: v.GetString(MetricsNamespaceKey),
	}

	if config.NodeEndpoint == "" {
		return Config{}, errNoNodeEndpoint
	}

	level, err := logging.ToLevel(v.GetString(LogLevelKey))
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", LogLevelKey, err)
	}
	config.LogLevel = level

	if config.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", RequestTimeoutKey)
	}
	if config.SyncTimeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", SyncTimeoutKey)
	}
	if config.PollFrequency <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", PollFrequencyKey)
	}
	if config.CommitTimeout <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", CommitTimeoutKey)
	}
	return config, nil
}

// GetConfigFromArgs resolves the configuration from [args], typically
// os.Args[1:].
func GetConfigFromArgs(args []string) (Config, error) {
	v, err := BuildViper(args)
	if err != nil {
		return Config{}, err
	}
	return GetConfig(v)
}
