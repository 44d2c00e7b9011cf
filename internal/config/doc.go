// Package config loads the settings for one export run.
//
// # Configuration Sources
//
// Settings are resolved from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file named by CONSENSUS_CONFIG_FILE, or config.yaml /
//	   configs/config.yaml in the working directory
//	3. Default values (lowest priority)
//
// # Environment Variables
//
//	API_BASE_URL=https://app.goconsensus.com/api/reports/v1.0/trackDemoBoards
//	API_KEY=...
//	API_SECRET=...
//	API_EMAIL=ops@example.com
//	START_DATE=2025-04-01
//	PAGE_LIMIT=500
//	OUTPUT_DIR=output
//	LOG_LEVEL=info
//
// The four API_* variables above are required. Empty values count as
// missing.
//
// # Validation
//
// Load validates everything before returning, so a *Settings that was
// returned without error is safe to hand to every component. Failures are
// CONFIG errors whose message names the offending variable.
//
// Components receive the *Settings by pointer and never read the
// environment themselves.
package config
