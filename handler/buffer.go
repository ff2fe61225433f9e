package handler

import (
	"bytes"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// BufferItem is one complete matched element accumulated by Buffer.
type BufferItem struct {
	Path   path.Path
	Data   []byte
	Digest uint64
}

// Buffer is a non-converting handler that accumulates each matched
// element's raw bytes and queues them for a consumer to Pop. It is the
// handler-side counterpart of Extract's own queue, usable from Trigger or
// All where no dedicated extraction strategy is in play.
type Buffer struct {
	maxSize int
	queue   []BufferItem
	curPath path.Path
	cur     bytes.Buffer
}

// NewBuffer returns a Buffer that errors if a single element's bytes exceed
// maxSize. maxSize <= 0 means unbounded.
func NewBuffer(maxSize int) *Buffer {
	return &Buffer{maxSize: maxSize}
}

func (b *Buffer) IsConverter() bool { return false }

func (b *Buffer) Start(p path.Path, _ int, _ token.Token) ([]byte, error) {
	b.curPath = p
	b.cur.Reset()
	return nil, nil
}

func (b *Buffer) Feed(data []byte, _ int) ([]byte, error) {
	b.cur.Write(data)
	if b.maxSize > 0 && b.cur.Len() > b.maxSize {
		return nil, &Error{Msg: fmt.Sprintf("buffer exceeded max size %d at %s", b.maxSize, b.curPath.String())}
	}
	return nil, nil
}

func (b *Buffer) End(path.Path, int, token.Token) ([]byte, error) {
	data := append([]byte(nil), b.cur.Bytes()...)
	b.queue = append(b.queue, BufferItem{
		Path:   b.curPath,
		Data:   data,
		Digest: xxh3.Hash(data),
	})
	return nil, nil
}

// Pop removes and returns the oldest queued item, or false if empty.
func (b *Buffer) Pop() (BufferItem, bool) {
	if len(b.queue) == 0 {
		return BufferItem{}, false
	}
	item := b.queue[0]
	b.queue = b.queue[1:]
	return item, true
}

// Len reports the number of items currently queued.
func (b *Buffer) Len() int { return len(b.queue) }
