package thumbs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// WarmerConfig controls the concurrency characteristics of the warmer.
type WarmerConfig struct {
	QueueSize int
	Workers   int
}

var (
	errWarmerClosed = errors.New("thumbnail warmer closed")
	// ErrQueueFull indicates the warm queue is saturated; warming is
	// opportunistic, so callers typically just log and move on.
	ErrQueueFull = errors.New("thumbnail warm queue full")
)

// Warmer synthesizes thumbnails in the background so gallery requests find
// them already cached. Enqueueing a URL whose outcome is already recorded is
// cheap: the synthesizer answers from its cache.
type Warmer struct {
	synth  *Synthesizer
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewWarmer starts a background worker pool feeding the synthesizer.
func NewWarmer(synth *Synthesizer, cfg WarmerConfig, logger *slog.Logger) *Warmer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Warmer{
		synth:  synth,
		logger: logger,
		jobs:   make(chan string, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	w.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go w.worker()
	}

	return w
}

// Enqueue schedules thumbnail synthesis for the supplied video URL. It never
// blocks: a saturated queue drops the job. The mutex keeps the send ordered
// against Shutdown closing the channel.
func (w *Warmer) Enqueue(videoURL string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errWarmerClosed
	}

	select {
	case w.jobs <- videoURL:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (w *Warmer) Shutdown(ctx context.Context) error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.jobs)
		w.mu.Unlock()
		w.cancel()
	})

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (w *Warmer) worker() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case url, ok := <-w.jobs:
			if !ok {
				return
			}
			if w.synth == nil {
				w.logger.Error("thumbnail warmer missing synthesizer")
				continue
			}
			if _, ok := w.synth.Thumbnail(context.Background(), url); !ok {
				w.logger.Debug("thumbnail warm produced no image", "url", url)
			}
		}
	}
}
