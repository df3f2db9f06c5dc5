package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/campusconnect/internal/seed"
)

// Default configuration constants.
const (
	defaultStudents   = 200
	defaultMentors    = 50
	defaultEvents     = 40
	defaultActivities = 5000
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		students   = flag.Int("students", defaultStudents, "Number of students")
		mentors    = flag.Int("mentors", defaultMentors, "Number of alumni and faculty mentors")
		events     = flag.Int("events", defaultEvents, "Number of events")
		activities = flag.Int("activities", defaultActivities, "Number of activities to submit")
		topN       = flag.Int("top", seed.DefaultTopN, "Number of leaderboard entries to fetch")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		seedValue  = flag.Uint64("seed", 1, "Random seed")
		timeout    = flag.Duration("timeout", seed.DefaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", seed.DefaultSettleTimeout, "How long to wait for points to be awarded")
		outputFile = flag.String("output", "", "Save the generated campus as JSON to this file")
		logFile    = flag.String("log", "", "Log file (default: seed_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	closer, err := seed.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &seed.Config{
		BaseURL:       *baseURL,
		Students:      *students,
		Mentors:       *mentors,
		Events:        *events,
		Activities:    *activities,
		TopN:          *topN,
		Workers:       *workers,
		Seed:          *seedValue,
		Timeout:       *timeout,
		SettleTimeout: *settle,
		OutputFile:    *outputFile,
		Verbose:       *verbose,
	}

	if _, err := seed.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed failed: " + err.Error() + "\n")
		cancel()
		_ = closer.Close()
		os.Exit(1) //nolint:gocritic // deferred calls already run above
	}
}
