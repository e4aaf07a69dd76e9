package main

import (
	"context"
	"fmt"

	md2docx "github.com/alnah/go-md2docx"
)

// CLIConverter is the conversion surface the batch runner needs.
type CLIConverter interface {
	Convert(ctx context.Context, input md2docx.Input) (*md2docx.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*md2docx.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// converterPool adapts md2docx.ConverterPool to Pool.
type converterPool struct {
	pool *md2docx.ConverterPool
}

// Compile-time check that converterPool implements Pool.
var _ Pool = (*converterPool)(nil)

// newConverterPool creates a lazily filled pool of n converters.
func newConverterPool(n int, opts ...md2docx.Option) Pool {
	return &converterPool{pool: md2docx.NewConverterPool(n, opts...)}
}

func (p *converterPool) Acquire() (CLIConverter, error) {
	conv, err := p.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConverterInit, err)
	}
	return conv, nil
}

// Release panics on a converter this pool did not hand out (programmer error).
func (p *converterPool) Release(c CLIConverter) {
	conv, ok := c.(*md2docx.Converter)
	if !ok {
		panic(fmt.Sprintf("converterPool.Release: unexpected type %T", c))
	}
	p.pool.Release(conv)
}

func (p *converterPool) Size() int { return p.pool.Size() }

func (p *converterPool) Close() error { return p.pool.Close() }
