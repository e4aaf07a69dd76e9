package md2docx

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() (*Converter, error)
	Release(*Converter)
	Size() int
	Close() error
} = (*ConverterPool)(nil)

// poolOptions keep pooled converters away from a real browser.
func poolOptions() []Option {
	return []Option{
		WithDiagramRenderer(&fakeDiagrams{err: errors.New("disabled")}),
		WithFormulaRenderer(&fakeFormulas{err: errors.New("disabled")}),
	}
}

func mustAcquire(t *testing.T, pool *ConverterPool) *Converter {
	t.Helper()

	conv, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if conv == nil {
		t.Fatal("Acquire() returned nil")
	}
	return conv
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit takes priority", 4, 4},
		{"explicit=1 for sequential", 1, 1},
		{"explicit can exceed max", 100, 100},
		{"zero uses auto calculation", 0, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
		{"negative uses auto calculation", -5, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestConverterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2, poolOptions()...)
	defer pool.Close()

	conv1 := mustAcquire(t, pool)
	conv2 := mustAcquire(t, pool)
	if conv1 == conv2 {
		t.Error("expected different converter instances")
	}

	pool.Release(conv1)
	if conv3 := mustAcquire(t, pool); conv3 != conv1 {
		t.Error("expected to get back released converter")
	}

	pool.Release(conv1)
	pool.Release(conv2)
}

func TestConverterPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := NewConverterPool(tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConverterPool_CreationErrorFreesSlot(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1, WithStyle("nope"))
	defer pool.Close()

	for range 2 {
		if _, err := pool.Acquire(); !errors.Is(err, ErrStyleNotFound) {
			t.Fatalf("Acquire() error = %v, want ErrStyleNotFound", err)
		}
	}
}

// TestConverterPool_ParallelConversions runs more goroutines than pooled
// converters; each conversion must complete without deadlock.
func TestConverterPool_ParallelConversions(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2, poolOptions()...)
	defer pool.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := pool.Acquire()
			if err != nil {
				errs <- err
				return
			}
			defer pool.Release(conv)
			if _, err := conv.Convert(context.Background(), Input{Markdown: "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |"}); err != nil {
				errs <- err
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		t.Fatal("parallel conversions timed out - possible deadlock")
	}

	close(errs)
	for err := range errs {
		t.Errorf("conversion error = %v", err)
	}
}

func TestConverterPool_ReleaseAfterClose(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2, poolOptions()...)
	conv := mustAcquire(t, pool)

	if err := pool.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Release after close is a no-op.
	pool.Release(conv)
}

func TestConverterPool_DoubleClose(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1)

	if err := pool.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
