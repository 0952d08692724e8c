package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/models"
)

// ErrInvalidPage is returned for a page or page size below 1.
var ErrInvalidPage = errors.New("page and per_page must be at least 1")

// HistoryStore is the append-only log of analysed queries.
type HistoryStore struct {
	db     *sql.DB
	dbPath string
}

// OpenHistory opens (or creates) history.db under dataDir and runs migrations.
func OpenHistory(dataDir string) (*HistoryStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	if _, err := db.Exec(HistorySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &HistoryStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryStore) Path() string {
	return h.dbPath
}

// Append stores a query and its JSON-encodable result.
func (h *HistoryStore) Append(ctx context.Context, query string, kind models.EntryKind, result any) (*models.HistoryEntry, error) {
	if kind == "" {
		kind = models.EntryStandard
	}
	blob, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	entry := &models.HistoryEntry{
		ID:     uuid.New().String(),
		Query:  query,
		Kind:   kind,
		Result: blob,
	}
	err = h.db.QueryRowContext(ctx,
		`INSERT INTO query_history (id, query, kind, result) VALUES (?, ?, ?, ?) RETURNING created_at`,
		entry.ID, entry.Query, string(entry.Kind), string(blob),
	).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}
	return entry, nil
}

// ListRecent returns one page of entries, newest first. Pages start at 1.
func (h *HistoryStore) ListRecent(ctx context.Context, page, perPage int) ([]models.HistoryEntry, error) {
	if page < 1 || perPage < 1 {
		return nil, ErrInvalidPage
	}
	// An offset past math.MaxInt is past any table.
	if page-1 > math.MaxInt/perPage {
		return []models.HistoryEntry{}, nil
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, query, kind, result, created_at FROM query_history
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e      models.HistoryEntry
			kind   string
			result string
		)
		if err := rows.Scan(&e.ID, &e.Query, &kind, &result, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Kind = models.EntryKind(kind)
		e.Result = json.RawMessage(result)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of stored entries.
func (h *HistoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}
