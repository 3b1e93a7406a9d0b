package data

import "time"

// TimeProvider supplies the clock used for created_at/updated_at stamps, so
// repository tests can pin time and assert exact values.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider is the production clock.
type RealTimeProvider struct{}

func (*RealTimeProvider) Now() time.Time { return time.Now() }

// FixedTimeProvider is a test clock frozen at a chosen instant.
type FixedTimeProvider struct {
	at time.Time
}

// NewFixedTimeProvider returns a clock frozen at t.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{at: t}
}

func (f *FixedTimeProvider) Now() time.Time { return f.at }

// AddTime advances the frozen clock by d.
func (f *FixedTimeProvider) AddTime(d time.Duration) {
	f.at = f.at.Add(d)
}
