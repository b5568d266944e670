package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewBatchWriter tests the BatchWriter constructor.
func TestNewBatchWriter(t *testing.T) {
	t.Parallel()

	t.Run("creates writer with defaults", func(t *testing.T) {
		t.Parallel()

		bw := NewBatchWriter(New(nil))
		if bw.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bw.concurrency)
		}
		if bw.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bw := NewBatchWriter(New(nil), WithConcurrency(2))
		if bw.concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", bw.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bw := NewBatchWriter(New(nil), WithConcurrency(0))
		if bw.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bw.concurrency)
		}
	})
}

// TestBatchWriterWriteAll tests batch delivery.
func TestBatchWriterWriteAll(t *testing.T) {
	t.Parallel()

	t.Run("delivers every job in order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		p, _ := newTestPrinter()

		var jobs []*Job
		for i := range 5 {
			src := writeResultFile(t, dir, fmt.Sprintf("in%d.json", i), fmt.Sprintf(`{"n":%d}`, i))
			jobs = append(jobs, &Job{Source: src, Mode: "json", OutputPath: filepath.Join(dir, fmt.Sprintf("out%d.json", i))})
		}

		bw := NewBatchWriter(DeliveryPipeline(p, nil, "", WithLogger(discardLogger())),
			WithConcurrency(2), WithBatchLogger(discardLogger()))
		got, err := bw.WriteAll(context.Background(), jobs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if Errors(got) != nil {
			t.Fatalf("unexpected job errors: %v", Errors(got))
		}

		for i, job := range got {
			if job != jobs[i] {
				t.Errorf("job %d out of order", i)
			}
			data, err := os.ReadFile(job.OutputPath)
			if err != nil {
				t.Fatalf("failed to read %s: %v", job.OutputPath, err)
			}
			if want := fmt.Sprintf("{\n  \"n\": %d\n}", i); string(data) != want {
				t.Errorf("job %d: expected %q, got %q", i, want, data)
			}
		}
	})

	t.Run("continues after a failing job", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		p, _ := newTestPrinter()
		good := writeResultFile(t, dir, "good.json", `{}`)

		jobs := []*Job{
			{Source: filepath.Join(dir, "missing.json"), Mode: "json", OutputPath: filepath.Join(dir, "a.json")},
			{Source: good, Mode: "bogus", OutputPath: filepath.Join(dir, "b.json")},
			{Source: good, Mode: "json", OutputPath: filepath.Join(dir, "c.json")},
		}

		bw := NewBatchWriter(DeliveryPipeline(p, nil, "", WithLogger(discardLogger())), WithBatchLogger(discardLogger()))
		got, err := bw.WriteAll(context.Background(), jobs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !errors.Is(got[0].Err, os.ErrNotExist) {
			t.Errorf("job 0: expected os.ErrNotExist, got %v", got[0].Err)
		}
		if got[1].Err == nil {
			t.Error("job 1: expected invalid mode error")
		}
		if got[2].Err != nil {
			t.Errorf("job 2: unexpected error %v", got[2].Err)
		}
		if _, err := os.Stat(filepath.Join(dir, "c.json")); err != nil {
			t.Errorf("expected c.json to be written: %v", err)
		}

		joined := Errors(got)
		if !errors.Is(joined, os.ErrNotExist) {
			t.Errorf("expected joined error to include os.ErrNotExist, got %v", joined)
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		step := &mockStep{name: "track", doFunc: func(context.Context, *Job) error {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		}}

		jobs := make([]*Job, 10)
		for i := range jobs {
			jobs[i] = &Job{Source: fmt.Sprint(i)}
		}

		bw := NewBatchWriter(New([]Step{step}, WithLogger(discardLogger())),
			WithConcurrency(3), WithBatchLogger(discardLogger()))
		if _, err := bw.WriteAll(context.Background(), jobs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 3 {
			t.Errorf("expected at most 3 concurrent jobs, saw %d", peak.Load())
		}
	})

	t.Run("cancelled context marks jobs", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		jobs := []*Job{{Source: "a"}, {Source: "b"}}
		bw := NewBatchWriter(New([]Step{&mockStep{name: "noop"}}, WithLogger(discardLogger())),
			WithBatchLogger(discardLogger()))
		_, err := bw.WriteAll(ctx, jobs)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		for _, job := range jobs {
			if !errors.Is(job.Err, context.Canceled) {
				t.Errorf("job %s: expected context.Canceled, got %v", job.Source, job.Err)
			}
		}
	})
}

// TestBatchWriterCallback tests the per-job callback.
func TestBatchWriterCallback(t *testing.T) {
	t.Parallel()

	jobs := make([]*Job, 6)
	for i := range jobs {
		jobs[i] = &Job{Source: fmt.Sprint(i)}
	}

	var mu sync.Mutex
	seen := make(map[int]string)

	bw := NewBatchWriter(New([]Step{&mockStep{name: "noop"}}, WithLogger(discardLogger())),
		WithBatchLogger(discardLogger()))
	err := bw.WriteAllWithCallback(context.Background(), jobs, func(job *Job, index int) {
		mu.Lock()
		defer mu.Unlock()
		seen[index] = job.Source
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != len(jobs) {
		t.Fatalf("expected %d callbacks, got %d", len(jobs), len(seen))
	}
	for i, source := range seen {
		if source != fmt.Sprint(i) {
			t.Errorf("callback index %d got job %q", i, source)
		}
	}
}

// TestErrors tests joining job errors.
func TestErrors(t *testing.T) {
	t.Parallel()

	if err := Errors([]*Job{{}, {}}); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	errA := errors.New("a")
	errB := errors.New("b")
	err := Errors([]*Job{{Err: errA}, {}, {Err: errB}})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both errors, got %v", err)
	}
}
