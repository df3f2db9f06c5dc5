// Package repository holds the points leaderboard.
package repository

import "context"

// Entry is a leaderboard row.
type Entry struct {
	Rank   int
	UserID string
	Points int64
}

// Store provides read/write access to the points leaderboard.
type Store interface {
	// AddPoints adds delta to the user's total and returns the new total. A
	// total never drops below zero.
	AddPoints(ctx context.Context, userID string, delta int64) (int64, error)

	// Rank returns the user's current position. Returns ErrNotFound for users
	// without points history.
	Rank(ctx context.Context, userID string) (Entry, error)

	// TopN returns the best n entries ordered by points desc, user id asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of ranked users.
	Count(ctx context.Context) int
}
