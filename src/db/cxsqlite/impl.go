package cxsqlite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	// registers the sqlite3 database/sql driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

const (
	driverName         = "sqlite3"
	defaultBusyTimeout = 5 * time.Second
	defaultJournalMode = "WAL"
)

type sqliteOpt struct {
	busyTimeout time.Duration
	journalMode string
}

type Option func(o *sqliteOpt)

// WithBusyTimeout sets how long a statement waits on a locked database file
func WithBusyTimeout(timeout time.Duration) Option {
	return func(o *sqliteOpt) {
		o.busyTimeout = timeout
	}
}

// WithJournalMode sets the journal mode used while the store is open for writing,
// the file is switched back to DELETE mode on close either way
func WithJournalMode(mode string) Option {
	return func(o *sqliteOpt) {
		o.journalMode = mode
	}
}

type sqliteStore struct {
	db       *sqlx.DB
	readOnly bool
	journal  string
}

// Open opens, creating it if needed, the SQLite file at path for writing
func Open(ctx context.Context, path string, options ...Option) (cx.Store, *sqlx.DB, error) {
	opt := &sqliteOpt{
		busyTimeout: defaultBusyTimeout,
		journalMode: defaultJournalMode,
	}
	for _, option := range options {
		option(opt)
	}
	dsn, err := uri(path, url.Values{"_busy_timeout": {strconv.FormatInt(opt.busyTimeout.Milliseconds(), 10)}})
	if err != nil {
		return nil, nil, fmt.Errorf("cxsqlite: open %s: %w", path, err)
	}
	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("cxsqlite: open %s: %w", path, err)
	}
	// one connection: the file has one writer and transactions must see their own writes
	conn.SetMaxOpenConns(1)
	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("cxsqlite: open %s: %w", path, err)
	}
	if _, err = conn.ExecContext(ctx, "PRAGMA journal_mode="+opt.journalMode); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("cxsqlite: set journal mode: %w", err)
	}
	return &sqliteStore{db: conn, journal: opt.journalMode}, conn, nil
}

// OpenReadOnly opens an existing SQLite file without write access.
// The returned connection serves queries the store has no operation for.
func OpenReadOnly(ctx context.Context, path string) (cx.Store, *sqlx.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("cxsqlite: open %s: %w", path, err)
	}
	dsn, err := uri(path, url.Values{"mode": {"ro"}})
	if err != nil {
		return nil, nil, fmt.Errorf("cxsqlite: open %s: %w", path, err)
	}
	conn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("cxsqlite: open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)
	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("cxsqlite: open %s: %w", path, err)
	}
	return &sqliteStore{db: conn, readOnly: true}, conn, nil
}

// uri turns a filesystem path into a SQLite URI filename. The path is made absolute
// and percent-encoded so '?', '#' and '%' stay part of the file name.
func uri(path string, query url.Values) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: query.Encode()}
	return u.String(), nil
}

// NewStoreWithConn wraps an already opened connection, the store takes ownership of it
func NewStoreWithConn(conn *sqlx.DB) cx.Store {
	return &sqliteStore{db: conn}
}

// RemoveFiles deletes the SQLite file at path together with its journal files.
// Missing files are not an error.
func RemoveFiles(path string) error {
	for _, name := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cxsqlite: remove %s: %w", name, err)
		}
	}
	return nil
}

// Tables lists the tables of the database behind conn, SQLite's internal tables excluded
func Tables(ctx context.Context, conn *sqlx.DB) ([]string, error) {
	var names []string
	err := conn.SelectContext(ctx, &names,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("cxsqlite: list tables: %w", err)
	}
	return names, nil
}

func (s *sqliteStore) Exists(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	if err != nil {
		return false, fmt.Errorf("cxsqlite: lookup table %s: %w", table, err)
	}
	return n > 0, nil
}

func (s *sqliteStore) Drop(ctx context.Context, table string) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return fmt.Errorf("cxsqlite: drop table %s: %w", table, err)
	}
	return nil
}

func (s *sqliteStore) Create(ctx context.Context, table cx.Table) error {
	if _, err := s.db.ExecContext(ctx, createQuery(table)); err != nil {
		return fmt.Errorf("cxsqlite: create table %s: %w", table.Name, err)
	}
	return nil
}

// Insert writes all rows in one transaction, the first failing row aborts the whole insert
func (s *sqliteStore) Insert(ctx context.Context, view cx.View, rows []cx.Vector) (uint64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("cxsqlite: begin insert: %w", err)
	}
	stmt, err := tx.PreparexContext(ctx, insertQuery(view.Name, view.Columns))
	if err != nil {
		// If you do not call the rollback function the connection stays busy
		if err := tx.Rollback(); err != nil {
			log.Println(err)
		}
		return 0, fmt.Errorf("cxsqlite: prepare insert into %s: %w", view.Name, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Println(err)
		}
	}()
	var affected uint64
	for _, row := range rows {
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			if err := tx.Rollback(); err != nil {
				log.Println(err)
			}
			return 0, fmt.Errorf("cxsqlite: insert into %s: %w", view.Name, err)
		}
		affected++
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("cxsqlite: commit insert into %s: %w", view.Name, err)
	}
	return affected, nil
}

// Deduplicate keeps the first inserted row of every distinct tuple
func (s *sqliteStore) Deduplicate(ctx context.Context, view cx.View) error {
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE rowid NOT IN (SELECT MIN(rowid) FROM %s GROUP BY %s)",
		quote(view.Name), quote(view.Name), quoteAll(view.Columns),
	)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cxsqlite: deduplicate %s: %w", view.Name, err)
	}
	return nil
}

func (s *sqliteStore) CreateIndex(ctx context.Context, index cx.Index) error {
	query := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		quote(index.Name), quote(index.Table), quoteAll(index.Columns),
	)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cxsqlite: create index %s: %w", index.Name, err)
	}
	return nil
}

func (s *sqliteStore) DropIndex(ctx context.Context, index cx.Index) error {
	if _, err := s.db.ExecContext(ctx, "DROP INDEX IF EXISTS "+quote(index.Name)); err != nil {
		return fmt.Errorf("cxsqlite: drop index %s: %w", index.Name, err)
	}
	return nil
}

// Indexes skips the automatic indexes SQLite creates for constraints, they have no sql
func (s *sqliteStore) Indexes(ctx context.Context, table string) ([]cx.Index, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		"SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL ORDER BY name",
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("cxsqlite: list indexes of %s: %w", table, err)
	}
	indexes := make([]cx.Index, 0, len(names))
	for _, name := range names {
		var columns []string
		err = s.db.SelectContext(ctx, &columns, "SELECT name FROM pragma_index_info(?) ORDER BY seqno", name)
		if err != nil {
			return nil, fmt.Errorf("cxsqlite: describe index %s: %w", name, err)
		}
		indexes = append(indexes, cx.Index{Name: name, Table: table, Columns: columns})
	}
	return indexes, nil
}

func (s *sqliteStore) Columns(ctx context.Context, table string) ([]string, error) {
	var columns []string
	if err := s.db.SelectContext(ctx, &columns, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table); err != nil {
		return nil, fmt.Errorf("cxsqlite: describe table %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("cxsqlite: %w: %s", cx.ErrTableNotFound, table)
	}
	return columns, nil
}

func (s *sqliteStore) Select(ctx context.Context, view cx.View) ([]cx.Vector, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", quoteAll(view.Columns), quote(view.Name))
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("cxsqlite: select from %s: %w", view.Name, err)
	}
	defer rows.Close()
	var out []cx.Vector
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("cxsqlite: scan %s: %w", view.Name, err)
		}
		out = append(out, values)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("cxsqlite: select from %s: %w", view.Name, err)
	}
	return out, nil
}

// Close folds the write-ahead log back into the file so a closed store is a single file
func (s *sqliteStore) Close() error {
	if !s.readOnly && s.journal != "" && !strings.EqualFold(s.journal, "DELETE") {
		ctx := context.Background()
		if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			log.Println(err)
		}
		if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=DELETE"); err != nil {
			log.Println(err)
		}
	}
	return s.db.Close()
}
