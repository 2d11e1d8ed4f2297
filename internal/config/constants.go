package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./qbank.db"
)

// Import pipeline defaults
const (
	// DefaultBatchSize is the number of questions persisted per bulk insert
	DefaultBatchSize = 50

	// DefaultMaxLogs is how many progress log lines a session keeps
	DefaultMaxLogs = 50
)
