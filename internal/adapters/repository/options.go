package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSeed fixes the seed of the treap priorities.
func WithSeed(seed uint64) Option {
	return func(s *TreapStore) {
		s.seed = seed
	}
}

// WithInitialPoints preloads totals, e.g. from persisted user documents.
// Non-positive totals and blank ids are skipped.
func WithInitialPoints(totals map[string]int64) Option {
	return func(s *TreapStore) {
		for id, p := range totals {
			if id != "" && p > 0 {
				s.initial[id] = p
			}
		}
	}
}
