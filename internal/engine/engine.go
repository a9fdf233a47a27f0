package engine

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/genricoloni/nowcord/internal/domain"
	"go.uber.org/zap"
)

// State is the presence state threaded through the poll loop.
// Playing is false while Idle; Current is the last published track.
type State struct {
	Current domain.Track
	Playing bool
}

// Engine orchestrates the presence pipeline.
// It polls the track provider, resolves artwork on change and publishes presence.
type Engine struct {
	logger    *zap.Logger
	provider  domain.TrackProvider
	resolver  domain.ArtworkResolver
	publisher domain.Publisher
	interval  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a new orchestration engine
func NewEngine(
	logger *zap.Logger,
	cfg domain.Config,
	provider domain.TrackProvider,
	resolver domain.ArtworkResolver,
	publisher domain.Publisher,
) *Engine {
	return &Engine{
		logger:    logger,
		provider:  provider,
		resolver:  resolver,
		publisher: publisher,
		interval:  cfg.GetPollInterval(),
	}
}

// Start launches the poll loop in a goroutine.
// It returns immediately (non-blocking).
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		return nil
	}

	// The start context only covers startup, the loop needs its own.
	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	e.logger.Info("Engine starting...", zap.Duration("interval", e.interval))
	go e.runLoop(loopCtx)
	return nil
}

// runLoop polls once per interval. Ticks never overlap: the sleep starts
// after the previous tick has finished.
func (e *Engine) runLoop(ctx context.Context) {
	defer close(e.done)

	var st State
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return
		case <-timer.C:
			st = e.Tick(ctx, st)
			timer.Reset(e.interval)
		}
	}
}

// Tick runs one poll/compare/act step and returns the new state.
func (e *Engine) Tick(ctx context.Context, st State) State {
	track, err := e.provider.CurrentTrack(ctx)
	if err != nil {
		// Keep the last known state; the next tick is the retry.
		e.logger.Warn("Failed to read current track", zap.Error(err))
		return st
	}

	if !track.IsPlaying() {
		if !st.Playing {
			return st
		}
		e.logger.Info("Playback stopped, clearing presence",
			zap.String("message", track.Message))
		if err := e.publisher.Clear(ctx); err != nil {
			e.logger.Error("Failed to clear presence", zap.Error(err))
		}
		return State{}
	}

	if st.Playing && st.Current.SameAs(track) {
		return st
	}

	e.logger.Info("Track changed",
		zap.String("title", track.Title),
		zap.String("artist", track.Artist),
		zap.String("album", track.Album),
		zap.Float64("duration", track.Duration))

	artURL := e.resolver.Resolve(ctx, track)
	if err := e.publisher.Publish(ctx, track, artURL); err != nil {
		// No retry until the next track change.
		e.logger.Error("Failed to publish presence", zap.Error(err))
	}

	return State{Current: track, Playing: true}
}

// Stop gracefully stops the loop and clears the presence
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel = nil
	e.mu.Unlock()

	e.logger.Info("Engine stopping...")

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			e.logger.Warn("Engine loop did not stop in time", zap.Error(ctx.Err()))
			return ctx.Err()
		}
	}

	if err := e.publisher.Close(); err != nil {
		e.logger.Error("Failed to close presence publisher", zap.Error(err))
		return err
	}

	if closer, ok := e.provider.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			e.logger.Warn("Failed to close track provider", zap.Error(err))
		}
	}

	e.logger.Info("Engine stopped")
	return nil
}
