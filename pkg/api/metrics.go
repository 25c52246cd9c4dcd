package api

import (
	"errors"

	"bookclub/pkg/checkpoint"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// saveTotal counts save requests by outcome
	saveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookclub_checkpoint_save_total",
		Help: "Checkpoint status saves by result",
	}, []string{"result"})

	// savedRows counts rows written by saves
	savedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookclub_checkpoint_rows_total",
		Help: "CheckpointStatus rows written by action",
	}, []string{"action"})

	tabReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookclub_tab_reads_total",
		Help: "Tab reads served by tab and result",
	}, []string{"tab", "result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookclub_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"route", "method"})
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, checkpoint.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, checkpoint.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, checkpoint.ErrEmptyTable):
		return "empty_table"
	case errors.Is(err, checkpoint.ErrStoreRead):
		return "store_read"
	case errors.Is(err, checkpoint.ErrPartialWrite):
		return "partial_write"
	case errors.Is(err, checkpoint.ErrStoreWrite):
		return "store_write"
	case errors.Is(err, checkpoint.ErrNoCurrentCheckpoint):
		return "no_current_checkpoint"
	default:
		return "error"
	}
}
