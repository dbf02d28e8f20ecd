package carousel

import (
	"context"
	"sync"
	"time"
)

const (
	SlideshowInterval = 5 * time.Second
	PartnersInterval  = 4 * time.Second
	TeamInterval      = 5 * time.Second
)

// Player advances a Cursor on a timer. Manual moves restart the timer so
// the next automatic step comes a full interval later.
type Player struct {
	mu       sync.Mutex
	cursor   *Cursor
	interval time.Duration
	paused   bool
	onChange func(index int)

	reset chan struct{}
}

func NewPlayer(cursor *Cursor, interval time.Duration, onChange func(index int)) *Player {
	if onChange == nil {
		onChange = func(int) {}
	}
	return &Player{
		cursor:   cursor,
		interval: interval,
		onChange: onChange,
		reset:    make(chan struct{}, 1),
	}
}

// Run blocks until ctx is done.
func (p *Player) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.reset:
			ticker.Reset(p.interval)
		case <-ticker.C:
			p.mu.Lock()
			if p.paused {
				p.mu.Unlock()
				continue
			}
			idx := p.cursor.Next()
			p.mu.Unlock()
			p.onChange(idx)
		}
	}
}

func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor.Index()
}

func (p *Player) Next() int {
	return p.move(p.cursor.Next)
}

func (p *Player) Prev() int {
	return p.move(p.cursor.Prev)
}

func (p *Player) JumpTo(i int) bool {
	p.mu.Lock()
	ok := p.cursor.JumpTo(i)
	idx := p.cursor.Index()
	p.mu.Unlock()

	if ok {
		p.restartTimer()
		p.onChange(idx)
	}
	return ok
}

func (p *Player) Resize(perView int) int {
	p.mu.Lock()
	before := p.cursor.Index()
	idx := p.cursor.Resize(perView)
	p.mu.Unlock()

	if idx != before {
		p.onChange(idx)
	}
	return idx
}

// Pause stops automatic advance, as when the pointer enters the carousel.
func (p *Player) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume restarts automatic advance with a fresh interval.
func (p *Player) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.restartTimer()
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) move(step func() int) int {
	p.mu.Lock()
	idx := step()
	p.mu.Unlock()

	p.restartTimer()
	p.onChange(idx)
	return idx
}

func (p *Player) restartTimer() {
	select {
	case p.reset <- struct{}{}:
	default:
	}
}
