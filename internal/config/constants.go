package config

import (
	"time"

	"consensuscli/pkg/contracts"
)

// Application constants for the Consensus export CLI
const (
	// Application Info
	AppName    = "Consensus Export"
	AppVersion = contracts.Version
	UserAgent  = "consensus-export/" + AppVersion

	// Report endpoint documented by Consensus; API_BASE_URL must still be set
	DefaultBaseURL    = "https://app.goconsensus.com/api/reports/v1.0/trackDemoBoards"
	DefaultSourceName = "consensuscli"

	// Date Range
	DateLayout       = "2006-01-02"
	DefaultStartDate = "2025-04-01"

	// Paging
	DefaultPageLimit  = 500
	DefaultPageNumber = 1
	DefaultMaxPages   = 100
	MaxPageLimit      = 10000
	SortBy            = "creationDate"
	SortOrder         = "ASC"

	// Pagination stop policies
	StopPolicyAuto = "auto"
	StopPolicySize = "size"
	StopPolicyFlag = "flag"

	// Network
	DefaultRequestTimeout = 60 * time.Second

	// Output
	DefaultOutputDir     = "output"
	DefaultFullPrefix    = "consensus_full_data"
	DefaultSummaryPrefix = "consensus_summary"
	DefaultListSeparator = ";"
	WorkbookPrefix       = "consensus_export"
	TimestampLayout      = "20060102_150405"

	// Log Settings
	DefaultLogLevel    = "info"
	DefaultLogOutput   = "both"
	DefaultLogFilePath = "logs/app.log"

	// Telemetry
	DefaultTraceExporter = "none"

	// ConfigFileEnv names an optional YAML settings file
	ConfigFileEnv = "CONSENSUS_CONFIG_FILE"
)
