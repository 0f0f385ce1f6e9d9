package rowstore

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planilha_operations_total",
		Help: "Operações no armazenamento de planilha por resultado",
	}, []string{"backend", "op", "table", "result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planilha_operation_duration_seconds",
		Help:    "Latência das operações no armazenamento de planilha",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"backend", "op"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planilha_cache_lookups_total",
		Help: "Consultas ao cache de leitura por resultado",
	}, []string{"result"})
)

// Instrumented registra contagem e latência de cada operação do store.
type Instrumented struct {
	next    Store
	backend string
}

// NewInstrumented envolve next com métricas Prometheus.
func NewInstrumented(next Store, backend string) *Instrumented {
	return &Instrumented{next: next, backend: backend}
}

func (s *Instrumented) observe(op, table string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(s.backend, op, table, result).Inc()
	operationDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

func (s *Instrumented) ReadRows(ctx context.Context, table string) (t *Table, err error) {
	defer func(start time.Time) { s.observe("read", table, start, err) }(time.Now())
	return s.next.ReadRows(ctx, table)
}

func (s *Instrumented) AppendRow(ctx context.Context, table string, values map[string]string, fallbackColumns []string) (err error) {
	defer func(start time.Time) { s.observe("append", table, start, err) }(time.Now())
	return s.next.AppendRow(ctx, table, values, fallbackColumns)
}

func (s *Instrumented) UpdateRow(ctx context.Context, table string, ref RowRef, values map[string]string) (err error) {
	defer func(start time.Time) { s.observe("update", table, start, err) }(time.Now())
	return s.next.UpdateRow(ctx, table, ref, values)
}

func (s *Instrumented) DeleteRow(ctx context.Context, table string, ref RowRef) (err error) {
	defer func(start time.Time) { s.observe("delete", table, start, err) }(time.Now())
	return s.next.DeleteRow(ctx, table, ref)
}

func (s *Instrumented) EnsureColumn(ctx context.Context, table, column string) (err error) {
	defer func(start time.Time) { s.observe("ensure_column", table, start, err) }(time.Now())
	return s.next.EnsureColumn(ctx, table, column)
}
