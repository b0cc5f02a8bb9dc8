// Package pacing spaces out page interactions with randomized pauses so the
// target site sees a human-like cadence.
package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

type Kind int

const (
	// Brief follows cheap interactions such as expanding a truncated review.
	Brief Kind = iota
	// Short follows dismissing overlays and scrolling to a tab.
	Short
	// Settle follows scrolling a control into view, before it is clicked.
	Settle
	// Tab follows switching to a reviews tab.
	Tab
	// Load follows anything that fetches new content.
	Load
)

func (k Kind) String() string {
	switch k {
	case Brief:
		return "brief"
	case Short:
		return "short"
	case Settle:
		return "settle"
	case Tab:
		return "tab"
	case Load:
		return "load"
	default:
		return "unknown"
	}
}

type Pauser interface {
	Pause(ctx context.Context, kind Kind) error
}

type window struct {
	min time.Duration
	max time.Duration
}

// Nominal windows for a one second base delay.
var defaultWindows = map[Kind]window{
	Brief:  {300 * time.Millisecond, 800 * time.Millisecond},
	Short:  {500 * time.Millisecond, 1500 * time.Millisecond},
	Settle: {1000 * time.Millisecond, 2000 * time.Millisecond},
	Tab:    {2000 * time.Millisecond, 3000 * time.Millisecond},
	Load:   {2000 * time.Millisecond, 4000 * time.Millisecond},
}

const nominalBase = time.Second

type JitterPauser struct {
	windows map[Kind]window
	mu      sync.Mutex
	rng     *rand.Rand
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewJitterPauser scales the nominal windows by base relative to one second.
// A zero base keeps the pause points but makes them instant.
func NewJitterPauser(base time.Duration) *JitterPauser {
	if base < 0 {
		base = 0
	}

	windows := make(map[Kind]window, len(defaultWindows))
	for k, w := range defaultWindows {
		windows[k] = window{
			min: scale(w.min, base),
			max: scale(w.max, base),
		}
	}

	return &JitterPauser{
		windows: windows,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   sleepContext,
	}
}

func (p *JitterPauser) Pause(ctx context.Context, kind Kind) error {
	return p.sleep(ctx, p.Delay(kind))
}

// Delay draws the next pause length for kind.
func (p *JitterPauser) Delay(kind Kind) time.Duration {
	w, ok := p.windows[kind]
	if !ok {
		w = p.windows[Short]
	}

	if w.max <= w.min {
		return w.min
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	delta := w.max - w.min
	return w.min + time.Duration(p.rng.Int63n(int64(delta)))
}

func scale(d, base time.Duration) time.Duration {
	return time.Duration(float64(d) * float64(base) / float64(nominalBase))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Nop never waits. It still honours cancellation.
type Nop struct{}

func (Nop) Pause(ctx context.Context, _ Kind) error {
	return ctx.Err()
}
