// Package constants provides shared constants for the unit-economics application.
package constants

// DateLayout is the calendar date format used in config files, scenario
// identities and output.
const DateLayout = "2006-01-02"

// Unit economics reference parameters. These are fixed system parameters and
// are not user-configurable.
const (
	// LiquidityPeriodDays is the holding period the liquidity cost input refers to.
	LiquidityPeriodDays = 10

	// DaysPerYear is used to annualize the liquidity cost.
	DaysPerYear = 365

	// MonthsPerYear is used to annualize monthly revenue.
	MonthsPerYear = 12

	// DefaultHorizonDays is the horizon the default rate input refers to.
	DefaultHorizonDays = 30

	// ThousandMultiplier converts the loan book from thousands to currency units.
	ThousandMultiplier = 1000.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Input bounds applied by the presentation layer.
const (
	// MinPercentage is the lowest accepted percentage input.
	MinPercentage = 0.0

	// MaxPercentage is the highest accepted percentage input.
	MaxPercentage = 100.0
)

// Live input defaults, taken from the first calculator revision.
const (
	DefaultRevenuePct       = 3.8
	DefaultPaymentCostPct   = 1.8
	DefaultLiquidityCostPct = 0.55
	DefaultDefaultRatePct   = 1.7

	DefaultLoanBookK        = 100.0
	DefaultCyclesPerMonth   = 2.9
	DefaultAvgLoanValue     = 250.0
	DefaultTxPerClientMonth = 2.0

	// DefaultScenarioName is the label pre-filled for a new scenario.
	DefaultScenarioName = "Today"
)

// Ledger constants
const (
	// IdentitySeparator joins date and name in a scenario identity label.
	IdentitySeparator = " – "

	// ComparisonTolerance is the tolerance for float comparisons in validation.
	ComparisonTolerance = 1e-9
)

// Store constants
const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"

	DefaultStoreBackend   = StoreBackendMemory
	DefaultRedisAddress   = "localhost:6379"
	DefaultRedisKeyPrefix = "unit-economics"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)
