package sender

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jummai/wabot/core/whatsapp"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 2})
	defer d.Close()

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := d.Enqueue(context.Background(), "send_text", "whatsapp:+2348001", func(ctx context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	wg.Wait()

	if got := ran.Load(); got != 5 {
		t.Fatalf("ran %d jobs, want 5", got)
	}
	if got := d.ErrorCount(); got != 0 {
		t.Fatalf("error count = %d, want 0", got)
	}
}

func TestDispatcherNoRetryOnFailure(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 1})

	var attempts atomic.Int32
	err := d.Enqueue(context.Background(), "send_text", "whatsapp:+2348001", func(ctx context.Context) error {
		attempts.Add(1)
		return &whatsapp.APIError{StatusCode: 500}
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()

	if got := attempts.Load(); got != 1 {
		t.Fatalf("job ran %d times, want exactly 1", got)
	}
	if got := d.ErrorCount(); got != 1 {
		t.Fatalf("error count = %d, want 1", got)
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})
	defer d.Close()

	block := make(chan struct{})
	release := func() { close(block) }
	defer release()

	// First job occupies the worker, second fills the queue.
	if err := d.Enqueue(context.Background(), "send_text", "a", func(ctx context.Context) error {
		<-block
		return nil
	}); err != nil {
		t.Fatalf("enqueue 1: %v", err)
	}
	// Give the worker time to pick up the first job.
	deadline := time.Now().Add(time.Second)
	for {
		if err := d.Enqueue(context.Background(), "send_text", "b", func(ctx context.Context) error {
			<-block
			return nil
		}); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("queue never accepted the second job")
		}
		time.Sleep(5 * time.Millisecond)
	}

	err := d.Enqueue(context.Background(), "send_text", "c", func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
}

func TestDispatcherEnqueueAfterClose(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()

	err := d.Enqueue(context.Background(), "send_text", "a", func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	d := NewDispatcher(Options{Redact: []string{"supersecrettoken"}})
	defer d.Close()

	got := d.sanitizeErrorMessage(errors.New(`post "https://api.twilio.com": auth supersecrettoken rejected`))
	if got != `post "https://api.twilio.com": auth <redacted> rejected` {
		t.Fatalf("sanitized = %q", got)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{&whatsapp.APIError{StatusCode: 503}, "http_5xx"},
		{&whatsapp.APIError{StatusCode: 401, Code: 20003}, "http_4xx"},
		{errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		if got := classifyError(tc.err); got != tc.want {
			t.Errorf("classifyError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
