package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	md2docx "github.com/alnah/go-md2docx"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// fakeConverter records inputs and returns fixed bytes.
type fakeConverter struct {
	mu     sync.Mutex
	inputs []md2docx.Input
	err    error
}

var _ CLIConverter = (*fakeConverter)(nil)

func (f *fakeConverter) Convert(ctx context.Context, in md2docx.Input) (*md2docx.ConvertResult, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	out := &md2docx.ConvertResult{DOCX: []byte("PK fake docx")}
	if in.HTMLPreview {
		out.HTML = []byte("<html>preview</html>")
	}
	return out, nil
}

// recorded returns the inputs keyed by title.
func (f *fakeConverter) recorded() map[string]md2docx.Input {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := make(map[string]md2docx.Input, len(f.inputs))
	for _, in := range f.inputs {
		m[in.Title] = in
	}
	return m
}

// fakePool hands out one shared fakeConverter.
type fakePool struct {
	conv       *fakeConverter
	size       int
	opts       int
	acquireErr error
	released   atomic.Int32
	closed     atomic.Bool
}

var _ Pool = (*fakePool)(nil)

func (p *fakePool) Acquire() (CLIConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conv, nil
}

func (p *fakePool) Release(CLIConverter) { p.released.Add(1) }

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.closed.Store(true)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// testEnv returns an environment writing to buffers whose NewPool hands
// out pool, sized as the CLI asks.
func testEnv(pool *fakePool) (env *Environment, stdout, stderr *bytes.Buffer) {
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	env = &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: stdout,
		Stderr: stderr,
		NewPool: func(size int, opts ...md2docx.Option) Pool {
			pool.size = size
			pool.opts = len(opts)
			return pool
		},
	}
	return env, stdout, stderr
}

func newFakePool() *fakePool {
	return &fakePool{conv: &fakeConverter{}, size: 1}
}

// writeFile creates path under dir with its parents.
func writeFile(t *testing.T, dir, path, content string) string {
	t.Helper()

	full := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return full
}

func mustParse(t *testing.T, args ...string) (*convertFlags, []string) {
	t.Helper()

	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		t.Fatalf("parseConvertFlags(%v) error = %v", args, err)
	}
	return flags, positional
}
