package cxclickhouse

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

const defaultInsertTimeout = time.Millisecond * 15000

type clickhouseStore struct {
	db            *sqlx.DB
	insertTimeout time.Duration
	mu            sync.Mutex
	// next _seq value per table, loaded lazily from the table itself
	seq map[string]uint64
}

// NewClickhouse opens a ClickHouse connection through database/sql and wraps it as a cx.Store.
// Tables are created in the database of options.Auth.
func NewClickhouse(ctx context.Context, options *clickhouse.Options) (cx.Store, *sqlx.DB, error) {
	conn := sqlx.NewDb(clickhouse.OpenDB(options), "clickhouse")
	if err := conn.PingContext(ctx); err != nil {
		if exception, ok := err.(*clickhouse.Exception); ok {
			log.Printf("catch exception [%d] %s \n%s\n", exception.Code, exception.Message, exception.StackTrace)
		}
		_ = conn.Close()
		return nil, nil, err
	}
	return NewClickhouseWithConn(conn), conn, nil
}

// NewClickhouseWithConn wraps an already opened connection, the store takes ownership of it
func NewClickhouseWithConn(conn *sqlx.DB) cx.Store {
	return &clickhouseStore{
		db:            conn,
		insertTimeout: defaultInsertTimeout,
		seq:           map[string]uint64{},
	}
}

func (c *clickhouseStore) Exists(ctx context.Context, table string) (bool, error) {
	var n uint64
	err := c.db.GetContext(ctx, &n,
		"SELECT count() FROM system.tables WHERE database = currentDatabase() AND name = ?", table,
	)
	if err != nil {
		return false, fmt.Errorf("cxclickhouse: lookup table %s: %w", table, err)
	}
	return n > 0, nil
}

func (c *clickhouseStore) Drop(ctx context.Context, table string) error {
	if _, err := c.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return fmt.Errorf("cxclickhouse: drop table %s: %w", table, err)
	}
	c.mu.Lock()
	delete(c.seq, table)
	c.mu.Unlock()
	return nil
}

func (c *clickhouseStore) Create(ctx context.Context, table cx.Table) error {
	if _, err := c.db.ExecContext(ctx, createQuery(table)); err != nil {
		return fmt.Errorf("cxclickhouse: create table %s: %w", table.Name, err)
	}
	return nil
}

// Insert The entire batch is implemented through so-called "transactions",
// although Clickhouse does not support them - it is only a client solution for preparing requests.
// Every row gets the next _seq so reads come back in append order.
func (c *clickhouseStore) Insert(ctx context.Context, view cx.View, rows []cx.Vector) (uint64, error) {
	next, err := c.nextSeq(ctx, view.Name)
	if err != nil {
		return 0, err
	}
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("cxclickhouse: begin insert: %w", err)
	}
	stmt, err := tx.PreparexContext(ctx, insertQuery(view.Name, view.Columns))
	if err != nil {
		// If you do not call the rollback function there will be a memory leak and goroutine
		// Such a leak can occur if there is no access to the table or there is no table itself
		if err := tx.Rollback(); err != nil {
			log.Println(err)
		}
		return 0, fmt.Errorf("cxclickhouse: prepare insert into %s: %w", view.Name, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Println(err)
		}
	}()

	timeoutContext, cancel := context.WithTimeout(ctx, c.insertTimeout)
	defer cancel()

	var affected uint64
	for _, row := range rows {
		args := make([]interface{}, 0, len(row)+1)
		args = append(args, next+affected)
		for _, v := range row {
			args = append(args, normalize(v))
		}
		if _, err = stmt.ExecContext(timeoutContext, args...); err != nil {
			if err := tx.Rollback(); err != nil {
				log.Println(err)
			}
			return 0, fmt.Errorf("cxclickhouse: insert into %s: %w", view.Name, err)
		}
		affected++
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("cxclickhouse: commit insert into %s: %w", view.Name, err)
	}
	c.mu.Lock()
	c.seq[view.Name] = next + affected
	c.mu.Unlock()
	return affected, nil
}

func (c *clickhouseStore) nextSeq(ctx context.Context, table string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if next, ok := c.seq[table]; ok {
		return next, nil
	}
	var count, maxSeq uint64
	row := c.db.QueryRowxContext(ctx, fmt.Sprintf("SELECT count(), max(%s) FROM %s", seqColumn, quote(table)))
	if err := row.Scan(&count, &maxSeq); err != nil {
		return 0, fmt.Errorf("cxclickhouse: read sequence of %s: %w", table, err)
	}
	next := uint64(0)
	if count > 0 {
		next = maxSeq + 1
	}
	c.seq[table] = next
	return next, nil
}

// Deduplicate forces a merge that keeps one row per distinct tuple of the view's columns
func (c *clickhouseStore) Deduplicate(ctx context.Context, view cx.View) error {
	query := fmt.Sprintf("OPTIMIZE TABLE %s FINAL DEDUPLICATE BY %s", quote(view.Name), quoteAll(view.Columns))
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cxclickhouse: deduplicate %s: %w", view.Name, err)
	}
	return nil
}

// CreateIndex adds a minmax data skipping index and materializes it for parts written before it existed
func (c *clickhouseStore) CreateIndex(ctx context.Context, index cx.Index) error {
	queries := []string{
		fmt.Sprintf("ALTER TABLE %s ADD INDEX IF NOT EXISTS %s (%s) TYPE minmax GRANULARITY 1",
			quote(index.Table), quote(index.Name), quoteAll(index.Columns)),
		fmt.Sprintf("ALTER TABLE %s MATERIALIZE INDEX %s", quote(index.Table), quote(index.Name)),
	}
	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("cxclickhouse: create index %s: %w", index.Name, err)
		}
	}
	return nil
}

func (c *clickhouseStore) DropIndex(ctx context.Context, index cx.Index) error {
	query := fmt.Sprintf("ALTER TABLE %s DROP INDEX IF EXISTS %s", quote(index.Table), quote(index.Name))
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cxclickhouse: drop index %s: %w", index.Name, err)
	}
	return nil
}

func (c *clickhouseStore) Indexes(ctx context.Context, table string) ([]cx.Index, error) {
	var found []struct {
		Name string `db:"name"`
		Expr string `db:"expr"`
	}
	err := c.db.SelectContext(ctx, &found,
		"SELECT name, expr FROM system.data_skipping_indices WHERE database = currentDatabase() AND table = ? ORDER BY name",
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("cxclickhouse: list indexes of %s: %w", table, err)
	}
	indexes := make([]cx.Index, 0, len(found))
	for _, f := range found {
		indexes = append(indexes, cx.Index{Name: f.Name, Table: table, Columns: parseExpr(f.Expr)})
	}
	return indexes, nil
}

func (c *clickhouseStore) Columns(ctx context.Context, table string) ([]string, error) {
	var columns []string
	err := c.db.SelectContext(ctx, &columns,
		"SELECT name FROM system.columns WHERE database = currentDatabase() AND table = ? AND name != ? ORDER BY position",
		table, seqColumn,
	)
	if err != nil {
		return nil, fmt.Errorf("cxclickhouse: describe table %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("cxclickhouse: %w: %s", cx.ErrTableNotFound, table)
	}
	return columns, nil
}

func (c *clickhouseStore) Select(ctx context.Context, view cx.View) ([]cx.Vector, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", quoteAll(view.Columns), quote(view.Name), seqColumn)
	rows, err := c.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("cxclickhouse: select from %s: %w", view.Name, err)
	}
	defer rows.Close()
	var out []cx.Vector
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("cxclickhouse: scan %s: %w", view.Name, err)
		}
		for i := range values {
			values[i] = dereference(values[i])
		}
		out = append(out, values)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("cxclickhouse: select from %s: %w", view.Name, err)
	}
	return out, nil
}

func (c *clickhouseStore) Close() error {
	return c.db.Close()
}
