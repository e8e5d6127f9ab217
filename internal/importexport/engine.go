package importexport

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/logger"
	"github.com/tphakala/gear-tracker/internal/observability/metrics"
)

// DefaultVersion is written to METADATA when no version is configured.
const DefaultVersion = "1.0"

// Store is the part of datastore.Store the engine needs.
type Store interface {
	DB() *gorm.DB
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics records row outcomes and run durations.
func WithMetrics(m *metrics.ImportExportMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithVersion sets the METADATA version string.
func WithVersion(version string) Option {
	return func(e *Engine) {
		if version != "" {
			e.version = version
		}
	}
}

// WithClock replaces time.Now for the export timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine exports, previews and imports sectioned CSV documents.
type Engine struct {
	store   Store
	log     logger.Logger
	metrics *metrics.ImportExportMetrics
	version string
	now     func() time.Time
}

// NewEngine creates an Engine on store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		log:     logger.Global().Module(component),
		version: DefaultVersion,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) recordRun(kind string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	e.metrics.RecordRun(kind, status, time.Since(start).Seconds())
}
