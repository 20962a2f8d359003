package dataframebuffer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zikwall/dataframe-buffer/src/buffer/cxmem"
	"github.com/zikwall/dataframe-buffer/src/cx"
)

const (
	// TableName holds every appended row
	TableName = "dataframe"
	// IndexTableName holds the distinct index column tuples
	IndexTableName = "dataframe_index"
	// indexName is the one index over the index columns of TableName
	indexName = "idx_dataframe"
)

// Dumper buffers frames in memory and dumps them to a cx.Store
// every N appends or every T since the last dump, whichever comes first.
// Dumper is not safe for concurrent use, it is meant to sit inside one acquisition loop.
// Close must be called exactly once the loop ends, it dumps what is left,
// builds the index and releases the store.
type Dumper interface {
	// Append adds a frame to the buffer and dumps the buffer if a trigger fires.
	// The first appended frame locks the schema.
	Append(frame *cx.Frame) error
	// Dump writes the buffer to the store now
	Dump() error
	// Schema returns the locked schema, false before the first append
	Schema() (cx.Schema, bool)
	Stats() Stats
	// Close runs the final dump, finalizes the index and releases the store
	Close() error
}

// Stats counts what a dumper has done so far
type Stats struct {
	Appends uint64
	Dumps   uint64
	Rows    uint64
	Pending int
}

type dumper struct {
	context context.Context
	store   cx.Store
	buffer  cx.Buffer
	options *Options
	logger  cx.Logger
	// nil until the first append
	schema *cx.Schema
	// true when the primary table held data before this dumper, append mode only
	existed          bool
	appendsSinceDump uint
	lastDump         time.Time
	appends          cx.Countable
	dumps            cx.Countable
	rows             cx.Countable
	// sticky error of a failed dump, the dumper refuses further work
	failed error
	closed bool
}

// NewDumper takes ownership of the store and prepares it according to the options:
// a pre-existing store is dropped, appended to, or refused with cx.ErrStoreExists.
// A nil buffer selects the in-memory engine.
// The store is closed if NewDumper fails.
func NewDumper(ctx context.Context, store cx.Store, buffer cx.Buffer, options *Options) (Dumper, error) {
	if options == nil {
		options = DefaultOptions()
	}
	if err := options.validate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	if buffer == nil {
		buffer = cxmem.NewBuffer(options.dumpAfterAppends)
	}
	d := &dumper{
		context: ctx,
		store:   store,
		buffer:  buffer,
		options: options,
		logger:  options.logger,
		appends: cx.NewCounter(),
		dumps:   cx.NewCounter(),
		rows:    cx.NewCounter(),
	}
	if err := d.prepare(); err != nil {
		if closeErr := store.Close(); closeErr != nil {
			d.logger.Logf("close store: %s", closeErr)
		}
		return nil, err
	}
	d.lastDump = d.now()
	return d, nil
}

func (d *dumper) prepare() error {
	exists, err := d.store.Exists(d.context, TableName)
	if err != nil {
		return err
	}
	switch {
	case d.options.deleteExisting:
		for _, table := range []string{TableName, IndexTableName} {
			if err = d.store.Drop(d.context, table); err != nil {
				return err
			}
		}
		if exists && d.options.isDebug {
			d.logger.Log("dropped existing store")
		}
	case exists && !d.options.appendToExisting:
		return fmt.Errorf("%w: table %s is present, enable deletion or appending", cx.ErrStoreExists, TableName)
	default:
		d.existed = exists
	}
	return nil
}

func (d *dumper) now() time.Time {
	return d.options.clock()
}

func (d *dumper) usable() error {
	if d.closed {
		return cx.ErrClosed
	}
	return d.failed
}

func (d *dumper) Append(frame *cx.Frame) error {
	if err := d.usable(); err != nil {
		return err
	}
	if frame == nil {
		return fmt.Errorf("%w: nil frame", cx.ErrInvalidFrame)
	}
	if err := frame.Validate(); err != nil {
		return err
	}
	if d.schema == nil {
		schema := cx.NewSchema(frame)
		if err := d.lock(schema); err != nil {
			return err
		}
	} else if err := d.schema.Check(frame); err != nil {
		return err
	}
	if err := d.buffer.Write(frame); err != nil {
		return d.fail(err)
	}
	d.appendsSinceDump++
	d.appends.Inc()
	if d.shouldDump() {
		return d.dump()
	}
	return nil
}

// lock creates the tables for the first frame's schema, an existing table
// (append mode) must carry the same column set
func (d *dumper) lock(schema cx.Schema) error {
	if d.existed {
		existing, err := d.existingSchema()
		if err != nil {
			return d.fail(err)
		}
		if err = existing.Check(cx.NewFrame(schema.ColumnNames(), schema.Index()...)); err != nil {
			return fmt.Errorf("existing table %s: %w", TableName, err)
		}
	}
	if err := d.store.Create(d.context, cx.Table{Name: TableName, Columns: schema.Columns()}); err != nil {
		return d.fail(err)
	}
	if schema.HasIndex() {
		if err := d.store.Create(d.context, cx.Table{Name: IndexTableName, Columns: schema.IndexColumns()}); err != nil {
			return d.fail(err)
		}
	}
	d.schema = &schema
	if d.options.isDebug {
		d.logger.Logf("schema locked: columns %v, index %v", schema.ColumnNames(), schema.Index())
	}
	return nil
}

// existingSchema reads the column and index sets back from the tables of a previous run
func (d *dumper) existingSchema() (cx.Schema, error) {
	columns, err := d.store.Columns(d.context, TableName)
	if err != nil {
		return cx.Schema{}, err
	}
	var index []string
	hasIndex, err := d.store.Exists(d.context, IndexTableName)
	if err != nil {
		return cx.Schema{}, err
	}
	if hasIndex {
		if index, err = d.store.Columns(d.context, IndexTableName); err != nil {
			return cx.Schema{}, err
		}
	}
	return cx.NewSchema(cx.NewFrame(columns, index...)), nil
}

func (d *dumper) shouldDump() bool {
	return d.appendsSinceDump >= d.options.dumpAfterAppends ||
		d.now().Sub(d.lastDump) >= d.options.dumpAfter
}

func (d *dumper) Dump() error {
	if err := d.usable(); err != nil {
		return err
	}
	return d.dump()
}

func (d *dumper) dump() error {
	frames, err := d.buffer.Read()
	if err != nil {
		return d.fail(err)
	}
	// frames are only ever written after the schema is locked
	if len(frames) > 0 && d.schema != nil {
		if err = d.write(frames); err != nil {
			return d.fail(err)
		}
		if err = d.buffer.Flush(); err != nil {
			return d.fail(err)
		}
		d.dumps.Inc()
	}
	d.appendsSinceDump = 0
	d.lastDump = d.now()
	return nil
}

func (d *dumper) write(frames []*cx.Frame) error {
	var rows, index []cx.Vector
	for _, frame := range frames {
		rows = append(rows, d.schema.Project(frame)...)
		if d.schema.HasIndex() {
			index = append(index, d.schema.ProjectIndex(frame)...)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	affected, err := d.store.Insert(d.context, cx.NewView(TableName, d.schema.ColumnNames()), rows)
	if err != nil {
		return err
	}
	d.rows.Add(affected)
	if d.options.isDebug {
		d.logger.Logf("dump %d frames, %d rows into %s", len(frames), affected, TableName)
	}
	if !d.schema.HasIndex() {
		return nil
	}
	view := cx.NewView(IndexTableName, d.schema.Index())
	if _, err = d.store.Insert(d.context, view, index); err != nil {
		return err
	}
	return d.store.Deduplicate(d.context, view)
}

func (d *dumper) fail(err error) error {
	d.failed = err
	return err
}

func (d *dumper) Schema() (cx.Schema, bool) {
	if d.schema == nil {
		return cx.Schema{}, false
	}
	return *d.schema, true
}

func (d *dumper) Stats() Stats {
	return Stats{
		Appends: d.appends.Val(),
		Dumps:   d.dumps.Val(),
		Rows:    d.rows.Val(),
		Pending: d.buffer.Len(),
	}
}

// Close finalizes the store once, later calls are no-ops.
// The store is released even when the final dump or the index build fails.
func (d *dumper) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	var errs []error
	if d.failed == nil {
		if err := d.finalize(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if d.options.isDebug {
		d.logger.Logf("close dumper: %d appends, %d dumps, %d rows", d.appends.Val(), d.dumps.Val(), d.rows.Val())
	}
	return errors.Join(errs...)
}

func (d *dumper) finalize() error {
	if err := d.dump(); err != nil {
		return err
	}
	if d.schema == nil || !d.schema.HasIndex() {
		return nil
	}
	index := cx.Index{Name: indexName, Table: TableName, Columns: d.schema.Index()}
	if err := replaceIndex(d.context, d.store, index); err != nil {
		return err
	}
	return d.store.Deduplicate(d.context, cx.NewView(IndexTableName, d.schema.Index()))
}
