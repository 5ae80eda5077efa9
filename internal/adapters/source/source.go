// Package source provides the input file collaborators of the report pipeline.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Sentinel kinds for source errors.
var (
	ErrNoFile   = errors.New("no input file found")
	ErrTooLarge = errors.New("input file too large")
)

// Input is a fully read input file.
type Input struct {
	Name    string
	ModTime time.Time
	Data    []byte
}

// Reader returns a fresh reader over the file contents.
func (in Input) Reader() io.Reader {
	return bytes.NewReader(in.Data)
}

// Source yields one input file per call.
type Source interface {
	Open(ctx context.Context) (Input, error)
}

// Latest picks the most recently modified file matching Pattern in Dir.
type Latest struct {
	Dir      string
	Pattern  string
	MaxBytes int64
}

// NewLatest creates a Latest source.
func NewLatest(dir, pattern string, maxBytes int64) *Latest {
	return &Latest{Dir: dir, Pattern: pattern, MaxBytes: maxBytes}
}

// Open finds and reads the newest matching file.
func (l *Latest) Open(ctx context.Context) (Input, error) {
	if err := ctx.Err(); err != nil {
		return Input{}, err
	}

	glob := filepath.Join(l.Dir, l.Pattern)
	matches, err := filepath.Glob(glob)
	if err != nil {
		return Input{}, fmt.Errorf("source: pattern %q: %w", glob, err)
	}

	var (
		newest  string
		modTime time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if newest == "" || info.ModTime().After(modTime) {
			newest, modTime = m, info.ModTime()
		}
	}
	if newest == "" {
		return Input{}, fmt.Errorf("%w: %s", ErrNoFile, glob)
	}

	f, err := os.Open(newest)
	if err != nil {
		return Input{}, fmt.Errorf("source: open %s: %w", newest, err)
	}
	defer func() { _ = f.Close() }()

	data, err := ReadAll(f, l.MaxBytes)
	if err != nil {
		return Input{}, fmt.Errorf("source: read %s: %w", newest, err)
	}
	return Input{Name: filepath.Base(newest), ModTime: modTime, Data: data}, nil
}

// File reads one explicitly named file.
type File struct {
	Path     string
	MaxBytes int64
}

// NewFile creates a File source.
func NewFile(path string, maxBytes int64) *File {
	return &File{Path: path, MaxBytes: maxBytes}
}

// Open reads the file.
func (f *File) Open(ctx context.Context) (Input, error) {
	if err := ctx.Err(); err != nil {
		return Input{}, err
	}
	fh, err := os.Open(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Input{}, fmt.Errorf("%w: %s", ErrNoFile, f.Path)
	}
	if err != nil {
		return Input{}, fmt.Errorf("source: open %s: %w", f.Path, err)
	}
	defer func() { _ = fh.Close() }()

	info, err := fh.Stat()
	if err != nil {
		return Input{}, fmt.Errorf("source: stat %s: %w", f.Path, err)
	}
	data, err := ReadAll(fh, f.MaxBytes)
	if err != nil {
		return Input{}, fmt.Errorf("source: read %s: %w", f.Path, err)
	}
	return Input{Name: filepath.Base(f.Path), ModTime: info.ModTime(), Data: data}, nil
}

// Stream wraps an already open reader, such as an uploaded form file.
type Stream struct {
	Name     string
	R        io.Reader
	MaxBytes int64
}

// NewStream creates a Stream source.
func NewStream(name string, r io.Reader, maxBytes int64) *Stream {
	return &Stream{Name: name, R: r, MaxBytes: maxBytes}
}

// Open reads the stream fully. It can be called once.
func (s *Stream) Open(ctx context.Context) (Input, error) {
	if err := ctx.Err(); err != nil {
		return Input{}, err
	}
	if s.R == nil {
		return Input{}, ErrNoFile
	}
	data, err := ReadAll(s.R, s.MaxBytes)
	if err != nil {
		return Input{}, err
	}
	return Input{Name: s.Name, ModTime: time.Now(), Data: data}, nil
}

// ReadAll reads r up to max bytes; max <= 0 means no limit.
func ReadAll(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, max)
	}
	return data, nil
}
