// Package config defines the data structures related to configuration and
// includes functions for loading, validating and converting the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"github.com/waribei/unit-economics/pkg/constants"
	"github.com/waribei/unit-economics/pkg/economics"
)

// DateLayout is the format expected in config files and is also the output
// date format.
const DateLayout = constants.DateLayout

// EnvPrefix prefixes environment overrides, e.g. UNIT_ECONOMICS_STORE_PASSWORD
// overrides store.password.
const EnvPrefix = "UNIT_ECONOMICS"

// Configuration holds all configuration for unit-economics.
type Configuration struct {
	Logging        LoggingConfig         `yaml:"logging,omitempty"`
	Output         OutputConfig          `yaml:"output,omitempty"`
	Ledger         LedgerConfig          `yaml:"ledger,omitempty"`
	Store          StoreConfig           `yaml:"store,omitempty"`
	Defaults       DefaultsConfig        `yaml:"defaults"`
	Presets        []PresetConfig        `yaml:"presets,omitempty"`
	QuickScenarios []QuickScenarioConfig `yaml:"quickScenarios,omitempty"`
	History        []HistoryConfig       `yaml:"history,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// LedgerConfig selects the ledger variant.
type LedgerConfig struct {
	ReplaceOnDate bool `yaml:"replaceOnDate"`
}

// StoreConfig selects where scenario snapshots are kept between runs.
type StoreConfig struct {
	Backend   string `yaml:"backend,omitempty"` // memory, redis
	RedisAddr string `yaml:"redisAddr,omitempty"`
	RedisDB   int    `yaml:"redisDB,omitempty"`
	Password  string `yaml:"password,omitempty"`
	KeyPrefix string `yaml:"keyPrefix,omitempty"`
}

// DefaultsConfig holds the live inputs a new session starts with.
type DefaultsConfig struct {
	Name        string                `yaml:"name"`
	Assumptions economics.Assumptions `yaml:"assumptions"`
	Volume      economics.Volume      `yaml:"volume"`
}

// PresetConfig is one row of the date-keyed preset table. Version is bumped
// whenever the canned values of a preset change.
type PresetConfig struct {
	Date        string                `yaml:"date"`
	Name        string                `yaml:"name"`
	Version     int                   `yaml:"version"`
	Assumptions economics.Assumptions `yaml:"assumptions"`
	Volume      *economics.Volume     `yaml:"volume,omitempty"`
}

// QuickScenarioConfig is a named assumption set selectable in one action.
type QuickScenarioConfig struct {
	Name        string                `yaml:"name"`
	Assumptions economics.Assumptions `yaml:"assumptions"`
}

// HistoryConfig is a historical scenario seeded once into the ledger.
type HistoryConfig struct {
	Date           string                `yaml:"date"`
	Name           string                `yaml:"name"`
	Assumptions    economics.Assumptions `yaml:"assumptions"`
	Volume         economics.Volume      `yaml:"volume"`
	ComputeMetrics *bool                 `yaml:"computeMetrics,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("store.backend", constants.DefaultStoreBackend)
	v.SetDefault("store.redisAddr", constants.DefaultRedisAddress)
	v.SetDefault("store.keyPrefix", constants.DefaultRedisKeyPrefix)
	v.SetDefault("store.redisDB", 0)
	v.SetDefault("store.password", "")

	v.SetDefault("defaults.name", constants.DefaultScenarioName)
	v.SetDefault("defaults.assumptions.revenuePct", constants.DefaultRevenuePct)
	v.SetDefault("defaults.assumptions.paymentCostPct", constants.DefaultPaymentCostPct)
	v.SetDefault("defaults.assumptions.liquidityCostPct", constants.DefaultLiquidityCostPct)
	v.SetDefault("defaults.assumptions.defaultRatePct", constants.DefaultDefaultRatePct)
	v.SetDefault("defaults.volume.loanBookK", constants.DefaultLoanBookK)
	v.SetDefault("defaults.volume.cyclesPerMonth", constants.DefaultCyclesPerMonth)
	v.SetDefault("defaults.volume.avgLoanValue", constants.DefaultAvgLoanValue)
	v.SetDefault("defaults.volume.txPerClientPerMonth", constants.DefaultTxPerClientMonth)

	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}
