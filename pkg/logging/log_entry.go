package logging

// LogEntry represents a structured log record with fields particularly
// relevant to evolutionary runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Evolution-specific fields
	RunID      string // The evolution run being executed
	Generation int    // Generation counter at the time of logging, -1 if unknown
	Latency    int64  // Operation duration in milliseconds

	// General structured data
	Fields map[string]interface{}
}
