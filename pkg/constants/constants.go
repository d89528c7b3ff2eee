// Package constants provides shared constants for the mortgage-planner application.
package constants

// DateTimeLayout is the format expected in config files and plan state and is
// also the output date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MaxDealRate is the highest annual percentage rate accepted for a deal
	MaxDealRate = 15.0

	// MaxOverpaymentAmount is the sanity ceiling for a single overpayment
	MaxOverpaymentAmount = 10000000.0

	// DefaultDealSpanMonths is the span proposed for a deal added into a gap
	DefaultDealSpanMonths = 24
)

// Interaction constants
const (
	// MarkerHitThresholdPx is the pixel radius within which a pointer event
	// selects an existing overpayment marker instead of creating a new one
	MarkerHitThresholdPx = 20.0

	// LongPressCancelThresholdPx is the movement that cancels a pending
	// long-press (interpreted as a scroll gesture)
	LongPressCancelThresholdPx = 10.0

	// LongPressDelayMs is the hold duration before a touch opens the add popover
	LongPressDelayMs = 500

	// DebounceQuietPeriodMs is the quiet period before a scheduled
	// re-simulation fires
	DebounceQuietPeriodMs = 500
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultSnapshotFile is the default BoltDB snapshot database path
	DefaultSnapshotFile = "plans.db"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the planner API
	DefaultServerAddress = ":8080"

	// DefaultUpstreamTimeoutSeconds is the default timeout for upstream
	// simulation requests
	DefaultUpstreamTimeoutSeconds = 30

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)

// Persistence constants
const (
	// SnapshotVersion is the current plan snapshot schema version; snapshots
	// carrying any other version are discarded on load
	SnapshotVersion = 2

	// SnapshotMaxAgeDays is the age past which a snapshot is treated as absent
	SnapshotMaxAgeDays = 30

	// PlanBucket is the BoltDB bucket holding plan snapshots
	PlanBucket = "plans"

	// MarkerBucket is the BoltDB bucket holding overpayment marker snapshots
	MarkerBucket = "overpayments"
)

// Cache constants
const (
	// CacheKeyPrefix namespaces simulation cache entries
	CacheKeyPrefix = "simulate:"

	// DefaultCacheTTLSeconds is the default lifetime of a cached simulation
	DefaultCacheTTLSeconds = 300
)
