package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWorkerQueueProcessesAllJobs(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]Job{}
	)
	q := NewWorkerQueue(func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[job.Path] = job
		return nil
	}, nil, WithWorkers(3), WithQueueSize(4))

	paths := []string{"a.pdf", "b.png", "c.jpg", "d.pdf", "e.webp", "f.tif"}
	for _, p := range paths {
		if err := q.Enqueue(context.Background(), Job{Path: p}); err != nil {
			t.Fatalf("enqueue %s: %v", p, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != len(paths) {
		t.Fatalf("processed %d jobs, want %d", len(seen), len(paths))
	}
	for _, p := range paths {
		job := seen[p]
		if job.TraceID == "" || job.SubmittedAt.IsZero() {
			t.Fatalf("job %s missing trace id or submit time: %+v", p, job)
		}
	}
}

func TestWorkerQueueSurvivesPanic(t *testing.T) {
	done := make(chan string, 2)
	q := NewWorkerQueue(func(_ context.Context, job Job) error {
		if job.Path == "boom" {
			panic("bad document")
		}
		done <- job.Path
		return errors.New("logged, not retried")
	}, nil, WithWorkers(1))

	_ = q.Enqueue(context.Background(), Job{Path: "boom"})
	_ = q.Enqueue(context.Background(), Job{Path: "ok"})

	select {
	case p := <-done:
		if p != "ok" {
			t.Fatalf("got %q", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not recover from panic")
	}
	q.Shutdown(context.Background())
}

func TestWorkerQueueRejectsAfterShutdown(t *testing.T) {
	q := NewWorkerQueue(func(context.Context, Job) error { return nil }, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	if err := q.Enqueue(context.Background(), Job{Path: "late.pdf"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestWorkerQueueBackpressureHonorsContext(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewWorkerQueue(func(context.Context, Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, nil, WithWorkers(1), WithQueueSize(1))

	if err := q.Enqueue(context.Background(), Job{Path: "1"}); err != nil {
		t.Fatal(err)
	}
	<-started
	if err := q.Enqueue(context.Background(), Job{Path: "2"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, Job{Path: "3"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}

	close(release)
	q.Shutdown(context.Background())
}
