package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/PoorRican/BidBeast/internal/model"
)

// SQLiteStore persists postings and feed sources in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS postings (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	link        TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT '',
	decision    INTEGER NOT NULL DEFAULT -1,
	pros        TEXT NOT NULL DEFAULT '[]',
	cons        TEXT NOT NULL DEFAULT '[]',
	reviewed    INTEGER NOT NULL DEFAULT 0,
	first_seen  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_postings_title ON postings (title);
CREATE INDEX IF NOT EXISTS idx_postings_reviewed ON postings (reviewed);
CREATE TABLE IF NOT EXISTS sources (
	url      TEXT PRIMARY KEY,
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the postings and sources tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// FindByTitles returns the subset of titles that already exist in the store.
// A single IN query regardless of batch size.
func (s *SQLiteStore) FindByTitles(ctx context.Context, titles []string) (map[string]struct{}, error) {
	found := make(map[string]struct{})
	if len(titles) == 0 {
		return found, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(titles)), ",")
	args := make([]any, len(titles))
	for i, t := range titles {
		args[i] = t
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT title FROM postings WHERE title IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("querying titles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		found[title] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating titles: %w", err)
	}
	return found, nil
}

// BulkInsert writes a batch of postings in one transaction.
func (s *SQLiteStore) BulkInsert(ctx context.Context, postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO postings
		(id, title, description, link, summary, decision, pros, cons, reviewed, first_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range postings {
		pros, cons, err := marshalAspects(p.Judgment)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			p.ID.String(), p.Title, p.Description, p.Link, p.Summary,
			int(p.Judgment.Decision), pros, cons, boolToInt(p.Reviewed), p.FirstSeen.UTC())
		if err != nil {
			return fmt.Errorf("inserting posting %q: %w", p.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert: %w", err)
	}
	return nil
}

// QueryUnreviewed returns all postings with reviewed = false.
func (s *SQLiteStore) QueryUnreviewed(ctx context.Context) ([]model.Posting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, title, description, link, summary, decision, pros, cons, reviewed, first_seen
		FROM postings WHERE reviewed = 0`)
	if err != nil {
		return nil, fmt.Errorf("querying unreviewed postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postings: %w", err)
	}
	return postings, nil
}

// UpdateReview persists a corrected judgment and marks the posting reviewed.
func (s *SQLiteStore) UpdateReview(ctx context.Context, id uuid.UUID, judgment model.Judgment) error {
	pros, cons, err := marshalAspects(judgment)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE postings SET decision = ?, pros = ?, cons = ?, reviewed = 1 WHERE id = ?",
		int(judgment.Decision), pros, cons, id.String())
	if err != nil {
		return fmt.Errorf("updating review for %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating review: no posting with id %s", id)
	}
	return nil
}

// AddSource records a feed URL. Adding an existing URL is a no-op.
func (s *SQLiteStore) AddSource(ctx context.Context, url string) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO sources (url) VALUES (?)", url)
	if err != nil {
		return fmt.Errorf("adding source %q: %w", url, err)
	}
	return nil
}

// RemoveSource deletes a feed URL.
func (s *SQLiteStore) RemoveSource(ctx context.Context, url string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sources WHERE url = ?", url)
	if err != nil {
		return fmt.Errorf("removing source %q: %w", url, err)
	}
	return nil
}

// ListSources returns all feed URLs in insertion order.
func (s *SQLiteStore) ListSources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM sources ORDER BY added_at, url")
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return urls, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanPosting(rows *sql.Rows) (model.Posting, error) {
	var (
		p          model.Posting
		rawID      string
		decision   int
		pros, cons string
		reviewed   int
		firstSeen  time.Time
	)
	err := rows.Scan(&rawID, &p.Title, &p.Description, &p.Link, &p.Summary,
		&decision, &pros, &cons, &reviewed, &firstSeen)
	if err != nil {
		return model.Posting{}, fmt.Errorf("scanning posting: %w", err)
	}

	p.ID, err = uuid.Parse(rawID)
	if err != nil {
		return model.Posting{}, fmt.Errorf("parsing posting id %q: %w", rawID, err)
	}
	p.Judgment.Decision = model.Decision(decision)
	if err := json.Unmarshal([]byte(pros), &p.Judgment.Pros); err != nil {
		return model.Posting{}, fmt.Errorf("decoding pros for %s: %w", rawID, err)
	}
	if err := json.Unmarshal([]byte(cons), &p.Judgment.Cons); err != nil {
		return model.Posting{}, fmt.Errorf("decoding cons for %s: %w", rawID, err)
	}
	p.Reviewed = reviewed != 0
	p.FirstSeen = firstSeen
	return p, nil
}

// marshalAspects encodes pros/cons as JSON arrays, normalizing nil to [].
func marshalAspects(j model.Judgment) (pros string, cons string, err error) {
	prosBytes, err := json.Marshal(emptyIfNil(j.Pros))
	if err != nil {
		return "", "", fmt.Errorf("encoding pros: %w", err)
	}
	consBytes, err := json.Marshal(emptyIfNil(j.Cons))
	if err != nil {
		return "", "", fmt.Errorf("encoding cons: %w", err)
	}
	return string(prosBytes), string(consBytes), nil
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
