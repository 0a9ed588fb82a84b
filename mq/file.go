package mq

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

const maxLineSize = 4 << 20

// FileSource replays events from a JSON lines file, one event per line.
type FileSource struct {
	file    io.Closer
	scanner *bufio.Scanner
	line    int
}

func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	return NewReaderSource(f), nil
}

// NewReaderSource reads events from r. r is closed by Close when it is an io.Closer.
func NewReaderSource(r io.Reader) *FileSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	fs := &FileSource{scanner: scanner}
	if c, ok := r.(io.Closer); ok {
		fs.file = c
	}
	return fs
}

func (s *FileSource) Fetch(ctx context.Context) (Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return Message{}, fmt.Errorf("failed to read events file: %w", err)
			}
			return Message{}, io.EOF
		}
		s.line++

		data := bytes.TrimSpace(s.scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		ev, err := decodeEvent(data)
		if err != nil {
			return Message{}, fmt.Errorf("line %d: %w", s.line, err)
		}
		return Message{Event: ev}, nil
	}
}

func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
