// Package reportstore archives detection results in SQLite so reports can be
// listed and re-fetched after the fact. The full result is kept as JSON next
// to relational rows for the segments and per-source evidence.
package reportstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/utsushi/internal/logging"
	"github.com/raysh454/utsushi/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrNotFound = errors.New("reportstore: report not found")

// ReportMeta is the listing row for an archived report.
type ReportMeta struct {
	ReportID    string    `json:"report_id"`
	CreatedAt   time.Time `json:"created_at"`
	Similarity  int       `json:"similarity"`
	Risk        string    `json:"risk"`
	TextLen     int       `json:"text_len"`
	SourceCount int       `json:"source_count"`
}

type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the report database at dsn and applies the
// schema. dsn is a file path or any DSN modernc.org/sqlite accepts.
func Open(dsn string, logger logging.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("reportstore: empty dsn")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger = logger.With(logging.Field{Key: "component", Value: "reportstore"})
	logger.Info("report store opened", logging.Field{Key: "dsn", Value: dsn})

	return &Store{db: db, logger: logger}, nil
}

// applySchema sets pragmas and executes the embedded schema.
func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Save archives a result. textLen is the length of the analyzed text; the
// text itself is never stored. The write is atomic via a transaction.
func (s *Store) Save(ctx context.Context, res *model.DetectionResult, textLen int) error {
	if res == nil || res.ReportID == "" {
		return errors.New("reportstore: result missing report id")
	}

	resultJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reports (report_id, created_at, similarity, risk, text_len, result_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.ReportID, createdAt, res.Similarity, string(res.Risk), textLen, string(resultJSON),
	); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	for _, src := range res.Sources {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_sources (report_id, source_id, title, url, segment_count, matched_chars, exactness)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			res.ReportID, src.SourceID, src.Title, src.URL, src.SegmentCount, src.MatchedChars, src.Exactness,
		); err != nil {
			return fmt.Errorf("insert source %s: %w", src.SourceID, err)
		}
	}

	for _, seg := range res.Matches {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO report_segments (report_id, start_offset, end_offset, source_id, source_title)
			 VALUES (?, ?, ?, ?, ?)`,
			res.ReportID, seg.Start, seg.End, seg.SourceID, seg.SourceTitle,
		); err != nil {
			return fmt.Errorf("insert segment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("report archived",
		logging.Field{Key: "report_id", Value: res.ReportID},
		logging.Field{Key: "segments", Value: len(res.Matches)})

	return nil
}

// Get returns the archived result for reportID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, reportID string) (*model.DetectionResult, error) {
	var resultJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM reports WHERE report_id = ?`, reportID,
	).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report %s: %w", reportID, err)
	}

	var res model.DetectionResult
	if err := json.Unmarshal([]byte(resultJSON), &res); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", reportID, err)
	}
	return &res, nil
}

// List returns up to limit report rows, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]ReportMeta, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.report_id, r.created_at, r.similarity, r.risk, r.text_len,
		        (SELECT COUNT(*) FROM report_sources rs WHERE rs.report_id = r.report_id)
		 FROM reports r
		 ORDER BY r.created_at DESC, r.report_id
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []ReportMeta
	for rows.Next() {
		var m ReportMeta
		var createdAt string
		if err := rows.Scan(&m.ReportID, &createdAt, &m.Similarity, &m.Risk, &m.TextLen, &m.SourceCount); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			m.CreatedAt = t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
