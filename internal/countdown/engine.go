package countdown

import (
	"sync"
	"time"
)

const (
	// DefaultCadence gives roughly 30 ticks per second.
	DefaultCadence = 33 * time.Millisecond
	// MinCadence is the floor applied to configured cadences.
	MinCadence = 10 * time.Millisecond
	// DefaultExpiredText is shown once the deadline passes.
	DefaultExpiredText = "Offer ended"
)

type State int

const (
	Running State = iota
	Expired
)

func (s State) String() string {
	if s == Expired {
		return "expired"
	}
	return "running"
}

// Tick is one evaluation of the countdown.
type Tick struct {
	Remaining time.Duration
	Breakdown Breakdown
	Text      string
	Expired   bool
}

type Config struct {
	Deadline    time.Time
	Cadence     time.Duration
	OnTick      func(Tick)
	ExpiredText string
	Clock       Clock
}

// Engine counts down to a fixed deadline. It holds at most one live ticker;
// once expired it stops ticking for good.
type Engine struct {
	cfg Config

	mu    sync.Mutex
	state State

	life   sync.Mutex
	ticker Ticker
	stop   chan struct{}
	done   chan struct{}
}

func New(cfg Config) *Engine {
	if cfg.Cadence < MinCadence {
		if cfg.Cadence <= 0 {
			cfg.Cadence = DefaultCadence
		} else {
			cfg.Cadence = MinCadence
		}
	}
	if cfg.ExpiredText == "" {
		cfg.ExpiredText = DefaultExpiredText
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.OnTick == nil {
		cfg.OnTick = func(Tick) {}
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Cadence() time.Duration { return e.cfg.Cadence }

func (e *Engine) Deadline() time.Time { return e.cfg.Deadline }

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Evaluate computes the tick for now and reports it through OnTick. The
// Running to Expired transition is reported exactly once; later calls on an
// expired engine return the terminal tick without reporting it again.
func (e *Engine) Evaluate(now time.Time) Tick {
	e.mu.Lock()
	if e.state == Expired {
		e.mu.Unlock()
		return e.terminal()
	}
	remaining := e.cfg.Deadline.Sub(now)
	var tick Tick
	if remaining.Milliseconds() <= 0 {
		e.state = Expired
		tick = e.terminal()
	} else {
		b := Decompose(remaining)
		tick = Tick{Remaining: b.Duration(), Breakdown: b, Text: Format(b)}
	}
	e.mu.Unlock()

	e.cfg.OnTick(tick)
	return tick
}

func (e *Engine) terminal() Tick {
	return Tick{Text: e.cfg.ExpiredText, Expired: true}
}

// Start evaluates immediately and, unless already expired, schedules ticks at
// the configured cadence. A previous schedule is cancelled first.
func (e *Engine) Start() {
	e.life.Lock()
	defer e.life.Unlock()
	e.stopLocked()

	if e.Evaluate(e.cfg.Clock.Now()).Expired {
		return
	}

	ticker := e.cfg.Clock.NewTicker(e.cfg.Cadence)
	stop := make(chan struct{})
	done := make(chan struct{})
	e.ticker, e.stop, e.done = ticker, stop, done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C():
				if e.Evaluate(now).Expired {
					return
				}
			}
		}
	}()
}

// Stop cancels the schedule and waits for the tick goroutine to exit. It is
// safe to call more than once.
func (e *Engine) Stop() {
	e.life.Lock()
	defer e.life.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.stop == nil {
		return
	}
	close(e.stop)
	<-e.done
	e.ticker.Stop()
	e.ticker, e.stop, e.done = nil, nil, nil
}

// Active reports whether a tick goroutine is still scheduled.
func (e *Engine) Active() bool {
	e.life.Lock()
	defer e.life.Unlock()
	if e.done == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}
