package cxmem

import (
	"github.com/zikwall/dataframe-buffer/src/cx"
)

// maxPrealloc bounds the capacity reserved up front, larger buffers grow on append
const maxPrealloc = 1024

type memory struct {
	buffer []*cx.Frame
}

// NewBuffer returns the in-process buffer engine, sizeHint is the expected number of frames between flushes
func NewBuffer(sizeHint uint) cx.Buffer {
	return &memory{
		buffer: make([]*cx.Frame, 0, min(sizeHint, maxPrealloc)+1),
	}
}

func (i *memory) Write(frame *cx.Frame) error {
	i.buffer = append(i.buffer, frame)
	return nil
}

func (i *memory) Read() ([]*cx.Frame, error) {
	snapshot := make([]*cx.Frame, len(i.buffer))
	copy(snapshot, i.buffer)
	return snapshot, nil
}

func (i *memory) Len() int {
	return len(i.buffer)
}

func (i *memory) Flush() error {
	// drop references so flushed frames can be collected
	for k := range i.buffer {
		i.buffer[k] = nil
	}
	i.buffer = i.buffer[:0]
	return nil
}
