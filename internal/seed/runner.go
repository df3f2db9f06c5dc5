package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/campusconnect/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrNotSettled is returned when awards are still pending after SettleTimeout.
var ErrNotSettled = errors.New("activities not processed in time")

// serviceStats is the part of GET /stats the runner reads.
type serviceStats struct {
	ActivitiesProcessed int64 `json:"activitiesProcessed"`
	QueueLength         int   `json:"queueLength"`
}

// Run seeds the campus, waits for awards to land and verifies what the
// service serves back.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	cfg = cfg.withDefaults()
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting campus seed",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("students", cfg.Students),
		logger.Int("mentors", cfg.Mentors),
		logger.Int("events", cfg.Events),
		logger.Int("activities", cfg.Activities),
		logger.Int("workers", cfg.Workers),
		logger.String("seed", strconv.FormatUint(cfg.Seed, 10)),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health and remember how much it already processed
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	baseline, err := readStats(ctx, client)
	if err != nil {
		return stats, err
	}

	// Step 2: Generate the campus
	now := time.Now()
	campus := Generate(ctx, cfg, now)

	// Step 3: Create users and events
	if err := putUsers(ctx, cfg, client, campus.Users, stats); err != nil {
		return stats, fmt.Errorf("user creation failed: %w", err)
	}
	if err := createEvents(ctx, cfg, client, campus.Events, stats); err != nil {
		return stats, fmt.Errorf("event creation failed: %w", err)
	}

	// Step 4: RSVP and submit activities concurrently
	rsvps := submitRSVPs(ctx, cfg, client, campus.RSVPs, stats)
	accepted := submitActivities(ctx, cfg, client, campus.Activities, stats)

	// Step 5: Wait for the workers
	want := baseline.ActivitiesProcessed + int64(len(rsvps)+len(accepted))
	if err := waitProcessed(ctx, client, want, cfg.SettleTimeout); err != nil {
		return stats, err
	}

	// Step 6: Verify leaderboard, ranks and recommendations
	var top []Entry
	if _, err := client.Get(ctx, "/leaderboard?limit="+strconv.Itoa(cfg.TopN), &top); err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	stats.LeaderboardEntries = len(top)
	if err := verifyLeaderboard(top); err != nil {
		return stats, err
	}

	mismatched, err := verifyRanks(ctx, cfg, client, expectedPoints(rsvps, campus.Activities, accepted), top, stats)
	if err != nil {
		return stats, err
	}
	if mismatched > 0 {
		log.Warn(ctx, "point totals differ from the default table; the server may use custom points or hold earlier data",
			logger.Int("users", mismatched))
	}

	if err := verifyRecommendations(ctx, client, campus.Users, now, stats); err != nil {
		return stats, err
	}

	// Step 7: Save the campus
	if cfg.OutputFile != "" {
		if err := saveCampus(ctx, cfg.OutputFile, campus); err != nil {
			log.Warn(ctx, "failed to save campus to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	status, err := client.Get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	// the service answers with Prometheus metrics
	if status != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

func readStats(ctx context.Context, client *HTTPClient) (serviceStats, error) {
	var s serviceStats
	if _, err := client.Get(ctx, "/stats", &s); err != nil {
		return s, fmt.Errorf("stats retrieval failed: %w", err)
	}
	return s, nil
}

// waitProcessed polls /stats until the workers processed want activities.
func waitProcessed(ctx context.Context, client *HTTPClient, want int64, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(SettlePollInterval)
	defer ticker.Stop()

	var last serviceStats
	for {
		s, err := readStats(ctx, client)
		if err == nil {
			last = s
			if s.ActivitiesProcessed >= want && s.QueueLength == 0 {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: processed %d of %d", ErrNotSettled, last.ActivitiesProcessed, want)
		case <-ticker.C:
		}
	}
}

// saveCampus writes the generated campus as JSON.
func saveCampus(ctx context.Context, filename string, campus Campus) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(campus, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal campus: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Get().Info(ctx, "campus saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, activitiesPerSecond float64
	submitted := stats.ActivitiesAccepted + stats.ActivitiesDuplicate + stats.ActivitiesFailed
	if submitted > 0 {
		acceptRate = float64(stats.ActivitiesAccepted) / float64(submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		activitiesPerSecond = float64(submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("usersCreated", stats.UsersCreated),
		logger.Int("eventsCreated", stats.EventsCreated),
		logger.Int("rsvpsAccepted", stats.RSVPsAccepted),
		logger.Int("rsvpsRejected", stats.RSVPsRejected),
		logger.Int("activitiesAccepted", stats.ActivitiesAccepted),
		logger.Int("activitiesDuplicate", stats.ActivitiesDuplicate),
		logger.Int("activitiesFailed", stats.ActivitiesFailed),
		logger.Int("ranksRetrieved", stats.RanksRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Int("recommendationsRead", stats.RecommendationsRead),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("activitiesPerSecond", activitiesPerSecond),
	)
}
