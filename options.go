package dataframebuffer

import (
	"fmt"
	"math"
	"time"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

const defaultDumpAfter = 600 * time.Second

// Options holds dumper configuration properties
type Options struct {
	// Number of appends after which the buffer is dumped to the store. Required
	dumpAfterAppends uint
	// Time since the last dump after which the next append dumps the buffer. Default 600s
	dumpAfter time.Duration
	// Remove any pre-existing store before use. Default true
	deleteExisting bool
	// Append to a pre-existing store instead of failing. Only used when deleteExisting is off
	appendToExisting bool
	// Debug mode
	isDebug bool
	// Logger with
	logger cx.Logger
	// Clock with, for tests
	clock func() time.Time
	// set by WithDumpAfterSeconds for a threshold no duration can hold
	dumpAfterErr error
}

type Option func(o *Options)

// WithDumpAfterAppends sets the number of appends that triggers a dump, bounding peak memory
func WithDumpAfterAppends(n uint) Option {
	return func(o *Options) {
		o.dumpAfterAppends = n
	}
}

// WithDumpAfter sets the elapsed time since the last dump that triggers a dump, bounding staleness
func WithDumpAfter(d time.Duration) Option {
	return func(o *Options) {
		o.SetDumpAfter(d)
	}
}

// WithDumpAfterSeconds is WithDumpAfter in seconds.
// Thresholds beyond the range of time.Duration, +Inf included, saturate to the longest duration.
func WithDumpAfterSeconds(seconds float64) Option {
	return func(o *Options) {
		nanos := seconds * float64(time.Second)
		switch {
		case math.IsNaN(seconds):
			o.dumpAfter = 0
			o.dumpAfterErr = fmt.Errorf("%w: dump after seconds is NaN", cx.ErrInvalidOptions)
		case nanos >= math.MaxInt64:
			o.SetDumpAfter(math.MaxInt64)
		case nanos <= math.MinInt64:
			o.SetDumpAfter(math.MinInt64)
		default:
			o.SetDumpAfter(time.Duration(nanos))
		}
	}
}

// WithDeleteExisting enable/disable removing a pre-existing store before use
func WithDeleteExisting(enabled bool) Option {
	return func(o *Options) {
		o.deleteExisting = enabled
	}
}

// WithAppendToExisting opt into appending to a pre-existing store when deletion is disabled
func WithAppendToExisting(enabled bool) Option {
	return func(o *Options) {
		o.appendToExisting = enabled
	}
}

// WithDebugMode set debug mode, for logs and errors
func WithDebugMode(isDebug bool) Option {
	return func(o *Options) {
		o.isDebug = isDebug
	}
}

// WithLogger installs a custom implementation of the cx.Logger interface
func WithLogger(logger cx.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// WithClock replaces time.Now for the time based dump trigger
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.clock = clock
	}
}

// NewOptions returns Options object with default values overridden by options
func NewOptions(options ...Option) *Options {
	o := DefaultOptions()
	for _, option := range options {
		option(o)
	}
	return o
}

// DefaultOptions returns Options object with default values.
// DumpAfterAppends has no default and must be set.
func DefaultOptions() *Options {
	return &Options{
		dumpAfter:      defaultDumpAfter,
		deleteExisting: true,
		clock:          time.Now,
	}
}

// SetDumpAfterAppends set number of appends that triggers a dump
func (o *Options) SetDumpAfterAppends(n uint) *Options {
	o.dumpAfterAppends = n
	return o
}

// SetDumpAfter set elapsed time that triggers a dump
func (o *Options) SetDumpAfter(d time.Duration) *Options {
	o.dumpAfter = d
	o.dumpAfterErr = nil
	return o
}

// SetDebugMode set debug mode, for logs and errors
func (o *Options) SetDebugMode(isDebug bool) *Options {
	o.isDebug = isDebug
	return o
}

// SetLogger installs a custom implementation of the cx.Logger interface
func (o *Options) SetLogger(logger cx.Logger) *Options {
	o.logger = logger
	return o
}

// DumpAfterAppends returns number of appends that triggers a dump
func (o *Options) DumpAfterAppends() uint {
	return o.dumpAfterAppends
}

// DumpAfter returns elapsed time that triggers a dump
func (o *Options) DumpAfter() time.Duration {
	return o.dumpAfter
}

func (o *Options) DeleteExisting() bool {
	return o.deleteExisting
}

func (o *Options) AppendToExisting() bool {
	return o.appendToExisting
}

func (o *Options) validate() error {
	if o.dumpAfterAppends == 0 {
		return fmt.Errorf("%w: dump after appends must be positive", cx.ErrInvalidOptions)
	}
	if o.dumpAfterErr != nil {
		return o.dumpAfterErr
	}
	if o.dumpAfter <= 0 {
		return fmt.Errorf("%w: dump after duration must be positive, got %s", cx.ErrInvalidOptions, o.dumpAfter)
	}
	if o.logger == nil {
		o.logger = cx.NewDefaultLogger()
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	return nil
}
