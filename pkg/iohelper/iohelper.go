// Package iohelper provides helper functions for I/O operations,
// particularly for safely reading HTTP response bodies with limits.
package iohelper

import (
	"io"
	"log/slog"

	"github.com/httpeek/httpeek/pkg/bufpool"
	"github.com/httpeek/httpeek/pkg/defaults"
)

// Body size limits for different probe stages
const (
	// SmallMaxBodySize is for redirect hops and error pages (8KB)
	SmallMaxBodySize int64 = defaults.BufferSmall

	// DefaultMaxBodySize is the cap for final response bodies (1MB).
	// Content length is counted from bytes actually received, so the
	// cap bounds both memory and the reported length.
	DefaultMaxBodySize int64 = defaults.BufferLarge

	// LargeMaxBodySize is for targets probed with -max-body (10MB)
	LargeMaxBodySize int64 = defaults.BufferMax
)

// ReadBody reads from an io.Reader with a size limit.
// If r is nil, returns an empty slice and no error.
// Reads go through pooled buffers; the returned slice is a private copy,
// so it stays valid after the pool reclaims them. Like io.ReadAll, a
// read error still returns the bytes read so far.
//
// Usage:
//
//	body, err := iohelper.ReadBody(resp.Body, iohelper.DefaultMaxBodySize)
//	defer resp.Body.Close()
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}

	buf := bufpool.Get()
	defer bufpool.Put(buf)
	chunk := bufpool.GetChunk()
	defer bufpool.PutSlice(chunk)

	limited := io.LimitReader(r, maxSize)
	var readErr error
	for {
		n, err := limited.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, readErr
}

// ReadBodyDefault reads from an io.Reader with the default 1MB limit.
func ReadBodyDefault(r io.Reader) ([]byte, error) {
	return ReadBody(r, DefaultMaxBodySize)
}

// ReadBodySmall reads from an io.Reader with an 8KB limit.
// Suitable for intermediate redirect hops where only headers matter.
func ReadBodySmall(r io.Reader) ([]byte, error) {
	return ReadBody(r, SmallMaxBodySize)
}

// ReadBodyOrLog reads the body using ReadBodyDefault and logs any error.
// It returns the body bytes (which may be nil on error).
func ReadBodyOrLog(r io.Reader, logger *slog.Logger) []byte {
	data, err := ReadBodyDefault(r)
	if err != nil && logger != nil {
		logger.Warn("body read failed", slog.String("error", err.Error()))
	}
	return data
}

// DrainAndClose reads any remaining data from r and closes it if it is a
// ReadCloser, so the underlying connection can be reused for keep-alive.
// Always returns nil to allow use in defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}

	// Drain cap keeps a hostile endless body from pinning the worker.
	_, _ = io.Copy(io.Discard, io.LimitReader(r, defaults.BufferLarge))

	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
