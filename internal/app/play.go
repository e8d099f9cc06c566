package app

import (
	"context"
	"sync"
	"time"

	"eco-quiz-engine/internal/domain"
	"eco-quiz-engine/internal/engine"
)

// Play is one live play-through. It serializes access to the engine
// session between the transport and the countdown goroutine, and fans out
// snapshots to subscribers.
type Play struct {
	id          string
	bankID      string
	playerID    string
	displayName string
	createdAt   time.Time

	clock    Clock
	tick     time.Duration
	autoTick bool

	mu           sync.Mutex
	session      *engine.Session
	subscribers  map[chan domain.Snapshot]struct{}
	countdown    context.CancelFunc
	countdownSeq int
	finished     bool
	closed       bool
}

// PlayOptions controls how a play drives its countdown.
type PlayOptions struct {
	Clock    Clock
	Tick     time.Duration
	AutoTick bool
}

// NewPlay wraps a fresh engine session over levels. GameService.Create is
// the usual caller.
func NewPlay(id, bankID, playerID, displayName string, levels []domain.Level, opts PlayOptions) *Play {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	return &Play{
		id:          id,
		bankID:      bankID,
		playerID:    playerID,
		displayName: displayName,
		createdAt:   opts.Clock.Now(),
		clock:       opts.Clock,
		tick:        opts.Tick,
		autoTick:    opts.AutoTick,
		session:     engine.NewSession(levels),
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

func (p *Play) ID() string          { return p.id }
func (p *Play) BankID() string      { return p.bankID }
func (p *Play) PlayerID() string    { return p.playerID }
func (p *Play) DisplayName() string { return p.displayName }

// Snapshot returns the current state.
func (p *Play) Snapshot() domain.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Snapshot()
}

// apply runs one transition. The last result reports whether this call
// moved the play into its final results.
func (p *Play) apply(op func(*engine.Session) (domain.Snapshot, bool)) (domain.Snapshot, bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.session.Snapshot(), false, false
	}
	snap, ok := op(p.session)
	if !ok {
		return snap, false, false
	}
	p.broadcastLocked(snap)
	p.syncCountdownLocked(snap)

	if snap.Phase == domain.PhaseFinalResults && !p.finished {
		p.finished = true
		return snap, true, true
	}
	return snap, true, false
}

// syncCountdownLocked keeps exactly one countdown running while a question
// is open and none otherwise.
func (p *Play) syncCountdownLocked(snap domain.Snapshot) {
	if !p.autoTick {
		return
	}
	if snap.Phase != domain.PhaseInQuestion {
		p.stopCountdownLocked()
		return
	}
	if p.countdown != nil && p.countdownSeq == snap.Seq {
		return
	}
	p.stopCountdownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	ticks, stop := p.clock.NewTicker(p.tick)
	p.countdown = cancel
	p.countdownSeq = snap.Seq
	go p.runCountdown(ctx, ticks, stop, snap.Seq)
}

func (p *Play) stopCountdownLocked() {
	if p.countdown != nil {
		p.countdown()
		p.countdown = nil
	}
}

func (p *Play) runCountdown(ctx context.Context, ticks <-chan time.Time, stop func(), seq int) {
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if !p.tickFor(seq) {
				return
			}
		}
	}
}

// tickFor delivers one tick if question seq is still open. A tick for a
// question that has since been answered or replaced is dropped.
func (p *Play) tickFor(seq int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.session.Seq() != seq {
		return false
	}
	snap, ok := p.session.Tick()
	if !ok {
		return false
	}
	p.broadcastLocked(snap)
	p.syncCountdownLocked(snap)
	return snap.Phase == domain.PhaseInQuestion
}

func (p *Play) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	p.subscribers[ch] = struct{}{}
	ch <- p.session.Snapshot()
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subscribers[ch]; ok {
			delete(p.subscribers, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

func (p *Play) broadcastLocked(snap domain.Snapshot) {
	for ch := range p.subscribers {
		select {
		case ch <- snap:
		default:
			// slow subscriber: replace its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// close stops the countdown and releases every subscriber.
func (p *Play) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.stopCountdownLocked()
	for ch := range p.subscribers {
		delete(p.subscribers, ch)
		close(ch)
	}
}
