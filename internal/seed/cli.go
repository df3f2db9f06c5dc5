package seed

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/campusconnect/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging logs to stdout and to logFile. If logFile is empty, a
// timestamped filename is generated. The returned closer closes the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "seed_log_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file)), logger.WithLevel(level)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`CampusConnect Seed Tool
=======================

Populates a running service with a synthetic campus and verifies the
leaderboard, ranks and recommendations it serves back.

Usage:
  go run ./cmd/seed [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -students int
        Number of students (default 200)
  -mentors int
        Number of alumni and faculty mentors (default 50)
  -events int
        Number of events (default 40)
  -activities int
        Number of activities to submit (default 5000)
  -top int
        Number of leaderboard entries to fetch (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -seed uint
        Random seed; equal seeds generate equal campuses (default 1)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        How long to wait for points to be awarded (default 2m)
  -output string
        Save the generated campus as JSON to this file
  -log string
        Log file (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Point totals are checked against the default points table. Runs against a
server with custom points, or one that already holds data, report the
difference as a warning.
`)
}
