package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/waribei/unit-economics/internal/ledger"
	"github.com/waribei/unit-economics/pkg/constants"
	"github.com/waribei/unit-economics/pkg/datetime"
	"github.com/waribei/unit-economics/pkg/economics"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test config",
			configPath: filepath.Join("..", "..", "test", "test_config.yaml"),
		},
		{
			name:       "Example config",
			configPath: filepath.Join("..", "..", constants.ExampleConfigFile),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadTestConfigValues(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" {
		t.Errorf("unexpected logging config: %+v", conf.Logging)
	}
	if conf.Output.Format != constants.OutputFormatCSV {
		t.Errorf("Output.Format = %q, expected csv", conf.Output.Format)
	}
	if !conf.Ledger.ReplaceOnDate {
		t.Error("expected replaceOnDate to be true")
	}
	if conf.Defaults.Name != "Test" || conf.Defaults.Assumptions.RevenuePct != 4 || conf.Defaults.Volume.LoanBookK != 50 {
		t.Errorf("unexpected defaults: %+v", conf.Defaults)
	}
	if len(conf.Presets) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(conf.Presets))
	}
	if conf.Presets[0].Volume != nil {
		t.Error("expected first preset to carry no volume")
	}
	if conf.Presets[1].Volume == nil || conf.Presets[1].Volume.LoanBookK != 300 {
		t.Errorf("unexpected second preset volume: %+v", conf.Presets[1].Volume)
	}
	if len(conf.History) != 2 || conf.History[0].ComputeMetrics == nil || *conf.History[0].ComputeMetrics {
		t.Errorf("expected first history entry with computeMetrics false, got %+v", conf.History)
	}
	if conf.Store.Backend != constants.StoreBackendMemory {
		t.Errorf("Store.Backend = %q, expected default memory", conf.Store.Backend)
	}
}

func TestLoadConfigurationAppliesDefaults(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if conf.Defaults.Assumptions != economics.DefaultAssumptions() {
		t.Errorf("Defaults.Assumptions = %+v, expected built-in defaults", conf.Defaults.Assumptions)
	}
	if conf.Defaults.Volume != economics.DefaultVolume() {
		t.Errorf("Defaults.Volume = %+v, expected built-in defaults", conf.Defaults.Volume)
	}
	if conf.Defaults.Name != constants.DefaultScenarioName {
		t.Errorf("Defaults.Name = %q, expected %q", conf.Defaults.Name, constants.DefaultScenarioName)
	}
	if conf.Output.Format != constants.OutputFormatPretty {
		t.Errorf("Output.Format = %q, expected pretty", conf.Output.Format)
	}
}

func TestLoadConfigurationPartialDefaults(t *testing.T) {
	data := `defaults:
  assumptions:
    revenuePct: 5
`
	conf, err := LoadConfigurationFromReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if conf.Defaults.Assumptions.RevenuePct != 5 {
		t.Errorf("RevenuePct = %v, expected 5", conf.Defaults.Assumptions.RevenuePct)
	}
	if conf.Defaults.Assumptions.PaymentCostPct != constants.DefaultPaymentCostPct {
		t.Errorf("PaymentCostPct = %v, expected default", conf.Defaults.Assumptions.PaymentCostPct)
	}
}

func TestLoadConfigurationEnvOverrides(t *testing.T) {
	t.Setenv("UNIT_ECONOMICS_STORE_PASSWORD", "s3cret")
	t.Setenv("UNIT_ECONOMICS_STORE_BACKEND", constants.StoreBackendRedis)

	conf, err := LoadConfigurationFromReader(strings.NewReader("output:\n  format: csv\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if conf.Store.Password != "s3cret" {
		t.Errorf("Store.Password = %q, expected value from environment", conf.Store.Password)
	}
	if conf.Store.Backend != constants.StoreBackendRedis {
		t.Errorf("Store.Backend = %q, expected redis", conf.Store.Backend)
	}
}

func TestLoadConfigurationInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("defaults: [unterminated"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestPresetTable(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	table, err := conf.PresetTable()
	if err != nil {
		t.Fatalf("PresetTable() error = %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 presets, got %d", table.Len())
	}

	p, ok := table.Lookup(datetime.MustParseDate("2025-12-31"))
	if !ok || p.Name != "Target" || p.Volume == nil {
		t.Errorf("Lookup(2025-12-31) = %+v, %v", p, ok)
	}
}

func TestPresetTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		presets []PresetConfig
		target  error
	}{
		{
			name: "Duplicate date",
			presets: []PresetConfig{
				{Date: "2025-06-30", Name: "one"},
				{Date: "2025-06-30", Name: "two"},
			},
			target: ledger.ErrDuplicatePresetDate,
		},
		{
			name:    "Empty date",
			presets: []PresetConfig{{Name: "undated"}},
			target:  datetime.ErrEmptyDate,
		},
		{
			name:    "Month only date",
			presets: []PresetConfig{{Date: "2025-06", Name: "month"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Configuration{Presets: tt.presets}
			_, err := conf.PresetTable()
			if err == nil {
				t.Fatal("PresetTable() expected error but got none")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("PresetTable() error = %v, expected %v", err, tt.target)
			}
		})
	}
}

func TestHistoryEntries(t *testing.T) {
	no := false
	conf := Configuration{
		History: []HistoryConfig{
			{Date: "2024-12-31", Name: "FY2024", ComputeMetrics: &no},
			{Date: "2025-03-31", Name: "Q1"},
		},
	}

	entries, err := conf.HistoryEntries()
	if err != nil {
		t.Fatalf("HistoryEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ComputeMetrics {
		t.Error("expected computeMetrics false to be honoured")
	}
	if !entries[1].ComputeMetrics {
		t.Error("expected computeMetrics to default to true")
	}

	conf.History = append(conf.History, HistoryConfig{Date: "soon", Name: "bad"})
	if _, err := conf.HistoryEntries(); err == nil {
		t.Error("expected error for unparseable history date")
	}
}

func TestSessionAndLedgerOptions(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	opts := conf.SessionOptions()
	if opts.Name != "Test" || opts.Assumptions.RevenuePct != 4 || opts.Volume.CyclesPerMonth != 3 {
		t.Errorf("unexpected session options: %+v", opts)
	}
	if len(opts.QuickScenarios) != 1 || opts.QuickScenarios[0].Name != "Stress" {
		t.Errorf("unexpected quick scenarios: %+v", opts.QuickScenarios)
	}

	lopts, err := conf.LedgerOptions()
	if err != nil {
		t.Fatalf("LedgerOptions() error = %v", err)
	}
	if !lopts.ReplaceOnDate || lopts.Presets.Len() != 2 {
		t.Errorf("unexpected ledger options: %+v", lopts)
	}
}
