package config

// Tally defaults.
const (
	DefaultKeyFiles    = true
	DefaultByFacet     = true
	DefaultClassify    = false
	DefaultWithDetails = false
)

// Store defaults.
const (
	BackendMemory = "memory"
	BackendSpill  = "spill"

	DefaultStoreBackend    = BackendMemory
	DefaultStoreMaxEntries = 50_000
)

// Output defaults.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"

	DefaultOutputFormat = FormatJSON
	DefaultOutputTop    = 10
)

// Logging defaults.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"

	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatText
)
