package export

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"expdata/internal/aggregate"
	"expdata/internal/record"
)

const archiveSchema = `
DROP TABLE IF EXISTS metrics;
DROP TABLE IF EXISTS records;
DROP TABLE IF EXISTS aggregates;

CREATE TABLE records (
	id             INTEGER PRIMARY KEY,
	family         TEXT NOT NULL,
	source         TEXT NOT NULL,
	idx            INTEGER NOT NULL,
	schema_version TEXT,
	protocol       TEXT,
	topology       TEXT,
	embedding      TEXT,
	strategy       TEXT,
	selection      TEXT,
	network_size   INTEGER
);

CREATE TABLE metrics (
	record_id INTEGER NOT NULL REFERENCES records(id),
	name      TEXT NOT NULL,
	value     REAL NOT NULL,
	PRIMARY KEY (record_id, name)
);

CREATE TABLE aggregates (
	family    TEXT NOT NULL,
	group_key TEXT NOT NULL,
	metric    TEXT NOT NULL,
	mean      REAL NOT NULL,
	samples   INTEGER NOT NULL,
	PRIMARY KEY (family, group_key, metric)
);

CREATE INDEX idx_records_family ON records(family);
`

// Archive is a SQLite copy of one run's canonical records and aggregate
// rows. Opening it discards whatever a previous run stored.
type Archive struct {
	db   *sql.DB
	path string
}

// OpenArchive creates or resets the archive database at path.
func OpenArchive(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("export: open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("export: init archive schema: %w", err)
	}
	return &Archive{db: db, path: path}, nil
}

// Path returns the database file path.
func (a *Archive) Path() string { return a.path }

// Close closes the database.
func (a *Archive) Close() error { return a.db.Close() }

// PutRecords stores canonical records and their metrics in one transaction.
func (a *Archive) PutRecords(ctx context.Context, recs []record.Canonical) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range recs {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO records (family, source, idx, schema_version, protocol, topology, embedding, strategy, selection, network_size)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(c.Family), c.Provenance.Source, c.Provenance.Index, c.Provenance.SchemaVersion,
			c.Protocol, c.Topology, c.Embedding, c.Strategy, c.Selection, c.NetworkSize,
		)
		if err != nil {
			return fmt.Errorf("export: insert record: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("export: record id: %w", err)
		}
		for _, name := range sortedMetrics(c.Metrics) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO metrics (record_id, name, value) VALUES (?, ?, ?)`,
				id, name, c.Metrics[name],
			); err != nil {
				return fmt.Errorf("export: insert metric %s: %w", name, err)
			}
		}
	}
	return tx.Commit()
}

// PutRows stores a family's aggregate rows, one line per (group, metric).
func (a *Archive) PutRows(ctx context.Context, f record.Family, rows []aggregate.Row) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: begin: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rows {
		for _, m := range r.Metrics {
			mean, ok := r.Means[m]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO aggregates (family, group_key, metric, mean, samples)
				VALUES (?, ?, ?, ?, ?)`,
				string(f), r.Key.String(), m, mean, r.Counts[m],
			); err != nil {
				return fmt.Errorf("export: insert aggregate: %w", err)
			}
		}
	}
	return tx.Commit()
}

// RecordCount returns how many records of a family are stored.
func (a *Archive) RecordCount(ctx context.Context, f record.Family) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE family = ?`, string(f)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("export: count records: %w", err)
	}
	return n, nil
}

// Mean returns the stored aggregate mean of one group and metric.
func (a *Archive) Mean(ctx context.Context, f record.Family, groupKey, metric string) (float64, error) {
	var v float64
	err := a.db.QueryRowContext(ctx,
		`SELECT mean FROM aggregates WHERE family = ? AND group_key = ? AND metric = ?`,
		string(f), groupKey, metric,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("export: read aggregate: %w", err)
	}
	return v, nil
}

func sortedMetrics(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
