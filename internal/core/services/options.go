// internal/core/services/options.go
package services

import "time"

// Option configures an AllocationService
type Option func(*AllocationService)

// WithClock overrides the clock used to compute "today" for expiry reports
func WithClock(now func() time.Time) Option {
	return func(s *AllocationService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone whose calendar day counts as "today".
// Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *AllocationService) {
		if loc != nil {
			s.loc = loc
		}
	}
}
