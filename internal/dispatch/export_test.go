package dispatch

import "time"

type MockTimeProvider struct {
	CurrentTime int64
}

func (m MockTimeProvider) Now() time.Time {
	return time.Unix(m.CurrentTime, 0).UTC()
}

// WithDispatcher overrides the GitHub dispatch client.
func WithDispatcher(d dispatcher) Options {
	return func(o *options) {
		o.dispatcher = d
	}
}

// WithTimeProvider sets the time provider for the forwarder.
func WithTimeProvider(tp timeProvider) Options {
	return func(o *options) {
		o.timeProvider = tp
	}
}
