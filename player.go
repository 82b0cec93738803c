package dotplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Clock abstracts wall time so playback pacing can be tested.
type Clock interface {
	Now() time.Time
	// Sleep pauses for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IdleTime returns how long to wait before the next frame: the frame's
// presentation time minus the wall time already elapsed and the time spent
// rendering it, but never less than floor. It is recomputed for every frame,
// so a slow frame is made up for by shorter waits afterwards.
func IdleTime(target, elapsed, render, floor time.Duration) time.Duration {
	idle := (target - elapsed - render).Truncate(time.Microsecond)
	if idle < floor {
		return floor
	}
	return idle
}

// PlayerOpt configures a Player.
type PlayerOpt func(p *Player)

// WithSize sets the output size in terminal cells. Frames are resized to
// cols*2 x rows*4 samples.
func WithSize(cols, rows int) PlayerOpt {
	return func(p *Player) {
		p.cols, p.rows = cols, rows
	}
}

// WithGamma sets the gamma exponent applied to every decoded frame.
func WithGamma(gamma float64) PlayerOpt {
	return func(p *Player) {
		p.gamma = gamma
	}
}

// WithPoolSize sets the number of frame buffers. The queue holds one fewer.
func WithPoolSize(n int) PlayerOpt {
	return func(p *Player) {
		p.poolSize = n
	}
}

// WithRenderOpts passes options through to the frame renderer.
func WithRenderOpts(opts ...RenderOpt) PlayerOpt {
	return func(p *Player) {
		p.renderOpts = append(p.renderOpts, opts...)
	}
}

// WithMinSleep sets the shortest pause between frames.
func WithMinSleep(d time.Duration) PlayerOpt {
	return func(p *Player) {
		p.minSleep = d
	}
}

// WithOSD toggles the status line drawn above each frame.
func WithOSD(on bool) PlayerOpt {
	return func(p *Player) {
		p.osd = on
	}
}

// WithInline draws frames at the cursor instead of at a fixed screen
// position, moving back over the previous frame before drawing the next.
// The screen is not cleared and the status line is not drawn.
func WithInline() PlayerOpt {
	return func(p *Player) {
		p.inline = true
	}
}

// WithLogger injects a logger for diagnostics.
func WithLogger(logger *slog.Logger) PlayerOpt {
	return func(p *Player) {
		p.logger = logger
	}
}

// WithClock replaces the wall clock used for pacing.
func WithClock(clock Clock) PlayerOpt {
	return func(p *Player) {
		p.clock = clock
	}
}

// WithTerminal replaces the terminal used to hide the cursor and clear the screen.
func WithTerminal(term Terminal) PlayerOpt {
	return func(p *Player) {
		p.term = term
	}
}

// PlayerStats is a snapshot of playback progress.
type PlayerStats struct {
	Frames       int
	HighWater    int
	LastRender   time.Duration
	ColorChanges int
	State        State
}

// Session holds the per-playback counters.
type Session struct {
	ID    string
	Start time.Time
	Frame int
}

// Player decodes frames on one goroutine and renders them on another,
// pacing output against each frame's presentation timestamp.
type Player struct {
	dec Decoder
	w   io.Writer

	cols, rows int
	gamma      float64
	poolSize   int
	minSleep   time.Duration
	osd        bool
	inline     bool
	renderOpts []RenderOpt
	logger     *slog.Logger
	clock      Clock
	term       Terminal

	mu    sync.Mutex
	stats PlayerStats
	queue *Queue
}

// NewPlayer returns a Player that reads from dec and writes frames to w.
func NewPlayer(dec Decoder, w io.Writer, opts ...PlayerOpt) *Player {
	p := &Player{
		dec:      dec,
		w:        w,
		cols:     96,
		rows:     30,
		gamma:    2.2,
		poolSize: 8,
		minSleep: time.Millisecond,
		osd:      true,
		logger:   slog.New(slog.DiscardHandler),
		clock:    wallClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.term == nil {
		p.term = &Xterm{Writer: w}
	}
	return p
}

// Stats returns a snapshot of playback progress.
func (p *Player) Stats() PlayerStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	if p.queue != nil {
		s.HighWater = p.queue.HighWater()
		s.State = p.queue.State()
	}
	return s
}

// Play runs the stream to completion. It returns nil once every frame has
// been rendered, the first decode or write error otherwise, or ctx's error
// if playback was cancelled.
func (p *Player) Play(ctx context.Context) error {
	if p.cols <= 0 || p.rows <= 0 {
		return fmt.Errorf("output size %dx%d: %w", p.cols, p.rows, ErrInvalidConfig)
	}
	if p.gamma <= 0 {
		return fmt.Errorf("gamma %v: %w", p.gamma, ErrInvalidConfig)
	}
	pool := NewPool(p.poolSize)
	q := NewQueue(pool.Len() - 1)
	p.mu.Lock()
	p.queue = q
	p.mu.Unlock()

	sess := &Session{ID: uuid.NewString(), Start: p.clock.Now()}
	logger := p.logger.With("session", sess.ID)
	logger.Info("playback started", "cols", p.cols, "rows", p.rows, "pool", pool.Len())

	p.term.ShowCursor(false)
	if !p.inline {
		p.term.Clear()
	}
	defer func() {
		p.term.ResetColor()
		if !p.inline {
			p.term.MoveTo(p.rows+2, 1)
		}
		p.term.ShowCursor(true)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.produce(gctx, q, pool, logger)
	})
	g.Go(func() error {
		return p.consume(gctx, q, sess, logger)
	})
	err := g.Wait()

	stats := p.Stats()
	if err != nil {
		logger.Debug("playback aborted", "err", err, "frames", stats.Frames)
		return err
	}
	logger.Info("playback finished", "frames", stats.Frames, "high_water", stats.HighWater)
	return nil
}

// produce decodes and transforms frames into pool slots. It always closes
// the queue on return so the consumer can observe the end of the stream.
func (p *Player) produce(ctx context.Context, q *Queue, pool *Pool, logger *slog.Logger) (err error) {
	defer func() {
		q.Close(err)
	}()

	decoded := &Gray{}
	resized := &Gray{}
	width, height := p.cols*2, p.rows*4

	for {
		if err := q.WaitNotFull(ctx); err != nil {
			return err
		}
		if err := p.dec.Decode(decoded); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("source exhausted", "queued", q.Len())
				return nil
			}
			return fmt.Errorf("decode: %w", err)
		}
		if !p.dec.HasFrame() {
			continue
		}

		decoded.GammaCorrect(p.gamma)
		t := decoded.Otsu()
		if err := decoded.ResizeBilinearInto(resized, width, height); err != nil {
			return fmt.Errorf("resize: %w", err)
		}
		slot, buf := pool.Next()
		if err := resized.DitherInto(buf, t); err != nil {
			return fmt.Errorf("dither: %w", err)
		}

		if err := q.Push(Item{
			Frame:    buf,
			PTS:      p.dec.PTS(),
			TimeBase: p.dec.TimeBase(),
			Slot:     slot,
		}); err != nil {
			return err
		}
	}
}

// consume renders queued frames in order and sleeps between them.
func (p *Player) consume(ctx context.Context, q *Queue, sess *Session, logger *slog.Logger) error {
	renderOpts := p.renderOpts
	if p.inline {
		renderOpts = append(renderOpts[:len(renderOpts):len(renderOpts)], WithoutHome())
	}
	renderer := NewRenderer(p.w, renderOpts...)
	osd := newOSD(p.w)
	drawn := 0 // rows of the previous inline frame

	for {
		item, err := q.Peek(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		begin := p.clock.Now()
		if drawn > 0 {
			p.term.ResetCursor(drawn)
		}
		stats, err := renderer.Render(item.Frame)
		end := p.clock.Now()
		if err != nil {
			return fmt.Errorf("render frame %d: %w", sess.Frame, err)
		}
		render := end.Sub(begin)
		elapsed := end.Sub(sess.Start)

		if p.inline {
			drawn = stats.Rows
		}

		if p.osd && !p.inline {
			if err := osd.Draw(osdLine{
				Frame:        sess.Frame,
				Item:         item,
				Elapsed:      elapsed,
				Buffered:     q.Len(),
				Render:       render,
				ColorChanges: stats.ColorChanges,
			}); err != nil {
				return fmt.Errorf("draw osd: %w", err)
			}
		}

		q.Pop()
		sess.Frame++

		p.mu.Lock()
		p.stats.Frames = sess.Frame
		p.stats.LastRender = render
		p.stats.ColorChanges = stats.ColorChanges
		p.mu.Unlock()

		idle := IdleTime(item.Timestamp(), elapsed, render, p.minSleep)
		logger.Debug("frame", "n", sess.Frame, "pts", item.PTS, "slot", item.Slot, "render", render, "idle", idle)
		if err := p.clock.Sleep(ctx, idle); err != nil {
			return err
		}
	}
}
