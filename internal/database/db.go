package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"insightquery/internal/models"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and runs migrations
func NewDB(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// GetConn returns the underlying database connection
func (db *DB) GetConn() *sql.DB {
	return db.conn
}

// migrate creates the necessary tables if they don't exist
func (db *DB) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS insight_values (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		object_id TEXT NOT NULL,
		metric TEXT NOT NULL,
		period INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		value TEXT NOT NULL,
		UNIQUE(object_id, metric, period, end_time)
	);

	CREATE INDEX IF NOT EXISTS idx_object_period_end ON insight_values(object_id, period, end_time);
	`

	_, err := db.conn.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

const upsertValue = `
	INSERT INTO insight_values (object_id, metric, period, end_time, value)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(object_id, metric, period, end_time) DO UPDATE SET value = excluded.value
`

// UpsertValues writes values in one transaction, replacing existing values
// for the same object, metric, period and end time.
func (db *DB) UpsertValues(ctx context.Context, values []models.InsightValue) (int, error) {
	return db.withTx(ctx, func(tx *sql.Tx) (int, error) {
		return upsertTx(ctx, tx, values)
	})
}

// ReplaceMetricValues deletes the stored values of each metric for one object
// and period, then writes values, all in one transaction. Other periods of the
// same metrics are left alone.
func (db *DB) ReplaceMetricValues(ctx context.Context, objectID string, period int64, metrics []string, values []models.InsightValue) (int, error) {
	return db.withTx(ctx, func(tx *sql.Tx) (int, error) {
		for _, metric := range metrics {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM insight_values WHERE object_id = ? AND metric = ? AND period = ?",
				objectID, metric, period); err != nil {
				return 0, fmt.Errorf("failed to delete records for %s/%s: %w", objectID, metric, err)
			}
		}
		return upsertTx(ctx, tx, values)
	})
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) (int, error)) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	count, err := fn(tx)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}

func upsertTx(ctx context.Context, tx *sql.Tx, values []models.InsightValue) (int, error) {
	stmt, err := tx.PrepareContext(ctx, upsertValue)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert statement: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, v.ObjectID, v.Metric, v.Period, v.EndTime, string(v.Value)); err != nil {
			return 0, fmt.Errorf("failed to upsert %s/%s at %d: %w", v.ObjectID, v.Metric, v.EndTime, err)
		}
		count++
	}
	return count, nil
}

// QueryValues returns the values of one object, period and end time. When
// metrics is non-empty only those metrics are returned, in the given order;
// otherwise all metrics are returned ordered by name.
func (db *DB) QueryValues(ctx context.Context, objectID string, metrics []string, period, endTime int64) ([]models.InsightValue, error) {
	query := `
		SELECT id, object_id, metric, period, end_time, value
		FROM insight_values
		WHERE object_id = ? AND period = ? AND end_time = ?
	`
	args := []any{objectID, period, endTime}

	if len(metrics) > 0 {
		query += " AND metric IN (" + strings.TrimSuffix(strings.Repeat("?,", len(metrics)), ",") + ")"
		for _, m := range metrics {
			args = append(args, m)
		}
	}
	query += " ORDER BY metric"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	defer rows.Close()

	var result []models.InsightValue
	for rows.Next() {
		var v models.InsightValue
		var value string
		if err := rows.Scan(&v.ID, &v.ObjectID, &v.Metric, &v.Period, &v.EndTime, &value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		v.Value = []byte(value)
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(metrics) > 0 {
		result = orderByMetrics(result, metrics)
	}
	return result, nil
}

func orderByMetrics(values []models.InsightValue, metrics []string) []models.InsightValue {
	byMetric := make(map[string]models.InsightValue, len(values))
	for _, v := range values {
		byMetric[v.Metric] = v
	}
	out := make([]models.InsightValue, 0, len(values))
	for _, m := range metrics {
		if v, ok := byMetric[m]; ok {
			out = append(out, v)
			delete(byMetric, m)
		}
	}
	return out
}

// DeleteAllRecords deletes all records from insight_values table
func (db *DB) DeleteAllRecords(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM insight_values")
	if err != nil {
		return fmt.Errorf("failed to delete all records: %w", err)
	}
	return nil
}

// DeleteMetricRecords deletes all records of one object's metric, across
// every period
func (db *DB) DeleteMetricRecords(ctx context.Context, objectID, metric string) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM insight_values WHERE object_id = ? AND metric = ?", objectID, metric)
	if err != nil {
		return fmt.Errorf("failed to delete records for %s/%s: %w", objectID, metric, err)
	}
	return nil
}

// ListMetricsWithStats returns every stored object/metric pair with its
// record count and end time range
func (db *DB) ListMetricsWithStats(ctx context.Context) ([]models.MetricStats, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT object_id, metric, COUNT(*), MIN(end_time), MAX(end_time)
		FROM insight_values
		GROUP BY object_id, metric
		ORDER BY object_id, metric
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	defer rows.Close()

	var result []models.MetricStats
	for rows.Next() {
		var s models.MetricStats
		if err := rows.Scan(&s.ObjectID, &s.Metric, &s.Count, &s.MinEndTime, &s.MaxEndTime); err != nil {
			return nil, fmt.Errorf("scan metric stats: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
