// Package sender queues outbound WhatsApp replies and delivers them from
// a worker pool. Delivery is best-effort, at-most-once: a failed send is
// logged and counted, never retried, because the inbound webhook has
// already been acknowledged by the time a reply goes out.
package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jummai/wabot/core/logger"
	"github.com/jummai/wabot/core/whatsapp"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("whatsapp sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("whatsapp sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize int
	Workers   int
	// SendTimeout bounds the time spent delivering a single job.
	SendTimeout time.Duration
	// Redact lists secrets (auth tokens) to scrub from logged errors.
	Redact []string
}

type job struct {
	ctx    context.Context
	action string
	to     string
	run    func(context.Context) error
}

// Dispatcher executes outbound WhatsApp sends asynchronously.
type Dispatcher struct {
	opts Options
	jobs chan job
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
	errs atomic.Uint64
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 12 * time.Second
	}

	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
		stop: make(chan struct{}),
	}

	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}

	return d
}

// Enqueue schedules the provided send function for asynchronous execution.
// The job runs exactly once; its error, if any, is logged and counted.
func (d *Dispatcher) Enqueue(ctx context.Context, action, to string, run func(context.Context) error) error {
	if run == nil {
		return errors.New("whatsapp sender: nil run function")
	}
	select {
	case <-d.stop:
		return ErrQueueClosed
	default:
	}

	j := job{
		ctx:    ctx,
		action: action,
		to:     to,
		run:    run,
	}

	select {
	case d.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops workers and waits for them to finish processing queued jobs.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.stop)
		close(d.jobs)
		d.wg.Wait()
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.handleJob(j)
	}
}

func (d *Dispatcher) handleJob(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
	defer cancel()

	start := time.Now()
	logger.Debug(ctx, "wa.sender", "send.start", d.sendLogAttrs(ctx, j)...)

	if err := j.run(sendCtx); err != nil {
		d.errs.Add(1)
		attrs := d.sendLogAttrs(ctx, j)
		attrs = append(attrs,
			slog.String("error", d.sanitizeErrorMessage(err)),
			slog.String("error_kind", classifyError(err)),
			slog.Int("elapsed_ms", durationToMS(time.Since(start))),
		)
		logger.Error(ctx, "wa.sender", "send.fail", attrs...)
		return
	}

	attrs := d.sendLogAttrs(ctx, j)
	attrs = append(attrs, slog.Int("elapsed_ms", durationToMS(time.Since(start))))
	logger.Debug(ctx, "wa.sender", "send.success", attrs...)
}

func (d *Dispatcher) sendLogAttrs(ctx context.Context, j job) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("action", j.action),
	}
	if j.to != "" {
		attrs = append(attrs, slog.String("to", j.to))
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if msgSID := logger.MessageSIDFrom(ctx); msgSID != "" {
		attrs = append(attrs, slog.String("msg_sid", msgSID))
	}
	return attrs
}

func durationToMS(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(logger.RoundMS(d) / time.Millisecond)
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "timeout"
		}
		if opErr.Op == "dial" {
			return "dial"
		}
		if opErr.Op == "read" || opErr.Op == "write" {
			if kind := classifyError(opErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			if kind := classifyError(urlErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}

	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return "tls"
	}

	var apiErr *whatsapp.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode >= 500:
			return "http_5xx"
		case apiErr.StatusCode >= 400:
			return "http_4xx"
		}
	}

	return "unknown"
}

// sanitizeErrorMessage prevents accidental leakage of the Twilio auth
// token in logs.
func (d *Dispatcher) sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, secret := range d.opts.Redact {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, secret, "<redacted>")
	}
	return msg
}
