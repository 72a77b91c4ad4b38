package storage

// sqlite.go: historial de corridas.
//
// Estrategia:
//   - `runs`: UNA fila por corrida con sus estadísticas resumidas. Los paths no
//     se persisten; se regeneran con la misma semilla.
//   - Tiempos como enteros (unix nanos) y la semilla como texto: database/sql
//     no acepta uint64 con el bit alto encendido.
//   - Prune automático al arrancar: corridas > 90d.

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/montecarlo/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    kind        TEXT    NOT NULL,
    started_at  INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL DEFAULT 0,
    seed        TEXT    NOT NULL,
    antithetic  INTEGER NOT NULL DEFAULT 0,
    tickers     TEXT    NOT NULL DEFAULT '',
    model       TEXT    NOT NULL,
    path_count  INTEGER NOT NULL,
    horizon     INTEGER NOT NULL,
    mean        REAL    NOT NULL,
    std_dev     REAL    NOT NULL,
    median      REAL    NOT NULL,
    p5          REAL    NOT NULL,
    p25         REAL    NOT NULL,
    p75         REAL    NOT NULL,
    p95         REAL    NOT NULL,
    var95       REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_model   ON runs(model);
`

const retentionRuns = 90 * 24 * time.Hour // corridas: 90 días

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia corridas antiguas.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background(), time.Now())
	return s, nil
}

// SaveRun persiste una corrida. Un ID repetido reemplaza la fila anterior.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run domain.RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("storage.SaveRun: empty run id: %w", domain.ErrInvalidRequest)
	}

	antithetic := 0
	if run.Antithetic {
		antithetic = 1
	}
	st := run.Stats

	if _, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, kind, started_at, duration_ns, seed, antithetic, tickers,
			 model, path_count, horizon, mean, std_dev, median,
			 p5, p25, p75, p95, var95)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Kind),
		run.StartedAt.UTC().UnixNano(),
		int64(run.Duration),
		strconv.FormatUint(run.Seed, 10),
		antithetic,
		strings.Join(run.Tickers, ","),
		st.ModelLabel,
		st.PathCount,
		st.Horizon,
		st.Mean,
		st.StdDev,
		st.Median,
		st.P5,
		st.P25,
		st.P75,
		st.P95,
		st.VaR95,
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns devuelve las corridas más recientes primero. limit <= 0 devuelve todas.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = -1 // sin límite en SQLite
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, started_at, duration_ns, seed, antithetic, tickers,
		       model, path_count, horizon, mean, std_dev, median,
		       p5, p25, p75, p95, var95
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.ListRuns: query: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord
	for rows.Next() {
		var (
			run                      domain.RunRecord
			kind, seed, tickers      string
			startedAt, durationNanos int64
			antithetic               int
		)
		st := &run.Stats

		if err := rows.Scan(
			&run.ID,
			&kind,
			&startedAt,
			&durationNanos,
			&seed,
			&antithetic,
			&tickers,
			&st.ModelLabel,
			&st.PathCount,
			&st.Horizon,
			&st.Mean,
			&st.StdDev,
			&st.Median,
			&st.P5,
			&st.P25,
			&st.P75,
			&st.P95,
			&st.VaR95,
		); err != nil {
			return nil, fmt.Errorf("storage.ListRuns: scan row: %w", err)
		}

		run.Kind = domain.RunKind(kind)
		run.StartedAt = time.Unix(0, startedAt).UTC()
		run.Duration = time.Duration(durationNanos)
		run.Seed, err = strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("storage.ListRuns: parse seed of %s: %w", run.ID, err)
		}
		run.Antithetic = antithetic == 1
		if tickers != "" {
			run.Tickers = strings.Split(tickers, ",")
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina corridas más viejas que la retención para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context, now time.Time) {
	cutoff := now.UTC().Add(-retentionRuns).UnixNano()
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
}
