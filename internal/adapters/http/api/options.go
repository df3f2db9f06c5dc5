package api

const defaultMaxLeaderboardLimit = 100

// Option configures a Server.
type Option func(*options)

type options struct {
	maxLeaderboardLimit int
	middleware          *ChiMiddlewareConfig
}

// WithMaxLeaderboardLimit caps ?limit= on GET /leaderboard.
func WithMaxLeaderboardLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLeaderboardLimit = n
		}
	}
}

// WithMiddlewareConfig replaces the CORS and rate limit settings.
func WithMiddlewareConfig(cfg *ChiMiddlewareConfig) Option {
	return func(o *options) {
		if cfg != nil {
			o.middleware = cfg
		}
	}
}
