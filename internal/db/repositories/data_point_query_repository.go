package repositories

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"flighttest/ftias/internal/constants"
	"flighttest/ftias/internal/metrics"
)

// DataPointRow is one sample joined with its parameter's name and unit.
type DataPointRow struct {
	ID            string  `db:"id" json:"id"`
	ParameterID   string  `db:"parameter_id" json:"parameter_id"`
	ParameterName string  `db:"parameter_name" json:"parameter_name"`
	Unit          *string `db:"unit" json:"unit"`
	Timestamp     SQLTime `db:"timestamp" json:"timestamp"`
	Value         float64 `db:"value" json:"value"`
}

// ParameterStatsRow aggregates one parameter's samples within a flight test.
type ParameterStatsRow struct {
	ParameterID    string  `db:"parameter_id" json:"parameter_id"`
	ParameterName  string  `db:"parameter_name" json:"parameter_name"`
	Unit           *string `db:"unit" json:"unit"`
	SampleCount    int64   `db:"sample_count" json:"sample_count"`
	MinValue       float64 `db:"min_value" json:"min_value"`
	MaxValue       float64 `db:"max_value" json:"max_value"`
	AvgValue       float64 `db:"avg_value" json:"avg_value"`
	FirstTimestamp SQLTime `db:"first_timestamp" json:"first_timestamp"`
	LastTimestamp  SQLTime `db:"last_timestamp" json:"last_timestamp"`
}

// DataPointQueryRepository serves the read side of time-series data with sqlx.
type DataPointQueryRepository struct {
	db      *sqlx.DB
	metrics *metrics.MetricsRegistry
}

// NewDataPointQueryRepository accepts a nil metrics registry.
func NewDataPointQueryRepository(db *sqlx.DB, metricsReg *metrics.MetricsRegistry) *DataPointQueryRepository {
	return &DataPointQueryRepository{db: db, metrics: metricsReg}
}

// ListByFlightTest pages through a flight test's samples ordered by time.
// An empty parameterID returns every parameter.
func (r *DataPointQueryRepository) ListByFlightTest(ctx context.Context, flightTestID, parameterID string, skip, limit int) ([]DataPointRow, error) {
	defer r.observe("list_data_points", time.Now())

	rows := []DataPointRow{}
	var err error
	if parameterID == "" {
		err = r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.ListDataPoints), flightTestID, limit, skip)
	} else {
		err = r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.ListDataPointsForParameter), flightTestID, parameterID, limit, skip)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list data points: %w", err)
	}
	return rows, nil
}

// ParameterStats summarizes every parameter recorded in the flight test.
func (r *DataPointQueryRepository) ParameterStats(ctx context.Context, flightTestID string) ([]ParameterStatsRow, error) {
	defer r.observe("parameter_stats", time.Now())

	rows := []ParameterStatsRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.ParameterStatsForFlightTest), flightTestID); err != nil {
		return nil, fmt.Errorf("failed to compute parameter stats: %w", err)
	}
	return rows, nil
}

// Ping checks the read-side connection.
func (r *DataPointQueryRepository) Ping(ctx context.Context) error {
	defer r.observe("ping", time.Now())

	var one int
	if err := r.db.GetContext(ctx, &one, constants.Ping); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (r *DataPointQueryRepository) observe(queryType string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.DBQueriesTotal.WithLabelValues(queryType).Inc()
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
}

// sqliteTimeLayouts covers timestamps that SQLite returns as text, which
// happens for aggregates over datetime columns.
var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// SQLTime scans a timestamp whether the driver yields time.Time or text.
type SQLTime struct {
	time.Time
}

func (t *SQLTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into SQLTime", src)
	}
}

func (t SQLTime) Value() (driver.Value, error) {
	return t.Time, nil
}

func (t *SQLTime) parse(s string) error {
	for _, layout := range sqliteTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
