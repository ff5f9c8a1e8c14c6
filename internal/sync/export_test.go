package sync

import "time"

type MockTimeProvider struct {
	CurrentTime int64
}

func (m MockTimeProvider) Now() time.Time {
	return time.Unix(m.CurrentTime, 0).UTC()
}

// WithTokenFetcher overrides the token fetcher component.
func WithTokenFetcher(f tokenFetcher) Options {
	return func(o *options) {
		o.tokenFetcher = f
	}
}

// WithScreenshotFetcher overrides the screenshot fetcher component.
func WithScreenshotFetcher(f screenshotFetcher) Options {
	return func(o *options) {
		o.screenshotFetcher = f
	}
}

// WithUpdater overrides the documentation updater component.
func WithUpdater(u docsUpdater) Options {
	return func(o *options) {
		o.updater = u
	}
}

// WithTimeProvider sets the time provider for the orchestrator.
func WithTimeProvider(tp timeProvider) Options {
	return func(o *options) {
		o.timeProvider = tp
	}
}
