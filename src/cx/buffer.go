package cx

import (
	"bytes"
	"encoding/gob"
	"time"
)

func init() {
	// values inside Vector travel as interface{}, gob needs every concrete type
	// that is not a builtin registered up front
	gob.Register(time.Time{})
}

// Buffer it is the interface for creating a frame buffer (temporary storage).
// It is enough to implement this interface so that you can use your own temporary storage.
// Frames must be returned by Read in the order they were written.
type Buffer interface {
	Write(*Frame) error
	Read() ([]*Frame, error)
	Len() int
	Flush() error
}

// Vectorable interface is an assistant in the correct formation of the order of fields in the data
// before appending it to a Frame
type Vectorable interface {
	Row() Vector
}

// Vector basic structure for one row is nothing more than a slice of undefined interfaces
type Vector []interface{}

// Row makes Vector itself Vectorable
func (v Vector) Row() Vector {
	return v
}

// encodedFrame is the wire form of a Frame, Frame keeps its fields unexported
type encodedFrame struct {
	Columns []string
	Index   []string
	Rows    []Vector
}

// Encode turns the Frame into an array of bytes.
// Encode is used for data serialization and storage in remote buffers, such as cxredis
func (f *Frame) Encode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(encodedFrame{
		Columns: f.columns,
		Index:   f.index,
		Rows:    f.rows,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FrameDecoded a type that is a string, but contains a binary data format
type FrameDecoded string

// Decode method is required to reverse deserialize an array of bytes in a Frame type
func (d FrameDecoded) Decode() (*Frame, error) {
	var e encodedFrame
	err := gob.NewDecoder(bytes.NewReader([]byte(d))).Decode(&e)
	if err != nil {
		return nil, err
	}
	return &Frame{columns: e.Columns, index: e.Index, rows: e.Rows}, nil
}
