// Package catalog persists type-model snapshots in a SQLite database.
//
// A snapshot is the YAML export of a universe at one point in time. It is
// addressed by its generated ID or by name; a name may be reused, in which
// case the most recent snapshot with that name wins.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/funvibe/meditation/internal/logger"
	"github.com/funvibe/meditation/internal/schema"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

// ErrNotFound is returned when no snapshot matches a reference.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one stored type model.
type Snapshot struct {
	ID        string
	Name      string
	Types     int
	CreatedAt time.Time

	// Content is the YAML schema. List leaves it empty.
	Content []byte
}

// Catalog is a snapshot store backed by one database file.
type Catalog struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
	log *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		c.log = logger.OrNop(l)
	}
}

// WithClock replaces the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// Open opens or creates the catalog at path.
func Open(path string, opts ...Option) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}

	c := &Catalog{db: db, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring catalog: %w", err)
		}
	}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog: %w", err)
	}
	return c, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) initSchema() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		types INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		content BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name, created_at);
	`
	for _, stmt := range strings.Split(ddl, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := c.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save stores the non built-in types of u under name.
func (c *Catalog) Save(ctx context.Context, name string, u *ts.Universe) (*Snapshot, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("snapshot name is required")
	}
	f := schema.Export(u)
	content, err := f.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	snap := &Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		Types:     len(f.Types),
		CreatedAt: c.now().UTC(),
		Content:   content,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.db.ExecContext(ctx,
		"INSERT INTO snapshots (id, name, types, created_at, content) VALUES (?, ?, ?, ?, ?)",
		snap.ID, snap.Name, snap.Types, snap.CreatedAt.UnixNano(), snap.Content,
	)
	if err != nil {
		return nil, fmt.Errorf("saving snapshot %s: %w", name, err)
	}
	c.log.Info("saved snapshot", zap.String("id", snap.ID), zap.String("name", name), zap.Int("types", snap.Types))
	return snap, nil
}

// List returns every snapshot without content, newest first.
func (c *Catalog) List(ctx context.Context) ([]Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.QueryContext(ctx,
		"SELECT id, name, types, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var created int64
		if err := rows.Scan(&s.ID, &s.Name, &s.Types, &created); err != nil {
			return nil, fmt.Errorf("listing snapshots: %w", err)
		}
		s.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// Show returns the snapshot with ID ref, or else the newest one named ref.
func (c *Catalog) Show(ctx context.Context, ref string) (*Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.db.QueryRowContext(ctx, `
		SELECT id, name, types, created_at, content FROM snapshots
		WHERE id = ? OR name = ?
		ORDER BY id = ? DESC, created_at DESC, rowid DESC
		LIMIT 1`, ref, ref, ref)

	var s Snapshot
	var created int64
	if err := row.Scan(&s.ID, &s.Name, &s.Types, &created, &s.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", ref, err)
	}
	s.CreatedAt = time.Unix(0, created).UTC()
	return &s, nil
}

// Load declares the types of snapshot ref in u.
func (c *Catalog) Load(ctx context.Context, ref string, u *ts.Universe) (*Snapshot, error) {
	s, err := c.Show(ctx, ref)
	if err != nil {
		return nil, err
	}
	f, err := schema.Parse(s.Content, "snapshot "+s.ID)
	if err != nil {
		return nil, err
	}
	if err := schema.Apply(u, f); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes the snapshot Show(ref) would return.
func (c *Catalog) Delete(ctx context.Context, ref string) error {
	s, err := c.Show(ctx, ref)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", s.ID); err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", s.ID, err)
	}
	c.log.Info("deleted snapshot", zap.String("id", s.ID), zap.String("name", s.Name))
	return nil
}
