package cx

import "sync/atomic"

// Countable is a counter safe to read from another goroutine while the owner increments it
type Countable interface {
	Inc() uint64
	Add(delta uint64) uint64
	Val() uint64
}

type uint64Counter struct {
	val uint64
}

func NewCounter() Countable {
	return &uint64Counter{}
}

func (u *uint64Counter) Inc() uint64 {
	return atomic.AddUint64(&u.val, 1)
}

func (u *uint64Counter) Add(delta uint64) uint64 {
	return atomic.AddUint64(&u.val, delta)
}

func (u *uint64Counter) Val() uint64 {
	return atomic.LoadUint64(&u.val)
}
