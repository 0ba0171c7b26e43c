package board

import (
	"context"
	"sync"
	"time"
)

const (
	SectionNews   = "news"
	SectionEvents = "events"
)

type Section struct {
	Name     string
	Interval time.Duration
}

// Slide is the position of one section after an advance or a jump.
type Slide struct {
	Section string `json:"section"`
	Index   int    `json:"index"`
	Count   int    `json:"count"`
}

type sectionState struct {
	carousel *Carousel
	interval time.Duration
	reset    chan struct{}
}

// Rotator runs one timer per section. Every advance or jump restarts that
// section's timer; sections with fewer than two items stay put.
type Rotator struct {
	mu       sync.Mutex
	sections map[string]*sectionState
	order    []string
	emit     func(Slide)
}

func NewRotator(emit func(Slide), sections ...Section) *Rotator {
	r := &Rotator{sections: map[string]*sectionState{}, emit: emit}
	for _, section := range sections {
		interval := section.Interval
		if interval <= 0 {
			interval = 8 * time.Second
		}
		r.sections[section.Name] = &sectionState{
			carousel: NewCarousel(0),
			interval: interval,
			reset:    make(chan struct{}, 1),
		}
		r.order = append(r.order, section.Name)
	}
	return r
}

// Run blocks until ctx is done.
func (r *Rotator) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, name := range r.order {
		wg.Add(1)
		go func(name string, state *sectionState) {
			defer wg.Done()
			r.loop(ctx, name, state)
		}(name, r.sections[name])
	}
	wg.Wait()
}

func (r *Rotator) loop(ctx context.Context, name string, state *sectionState) {
	timer := time.NewTimer(state.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-state.reset:
			restart(timer, state.interval)
		case <-timer.C:
			r.mu.Lock()
			var slide *Slide
			if state.carousel.Len() > 1 {
				idx := state.carousel.Next()
				slide = &Slide{Section: name, Index: idx, Count: state.carousel.Len()}
			}
			r.mu.Unlock()
			if slide != nil && r.emit != nil {
				r.emit(*slide)
			}
			timer.Reset(state.interval)
		}
	}
}

func restart(timer *time.Timer, interval time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(interval)
}

// SetCount records how many items a section currently shows.
func (r *Rotator) SetCount(section string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.sections[section]; ok {
		state.carousel.Resize(count)
	}
}

// Jump selects a slide directly and restarts the section's timer.
func (r *Rotator) Jump(section string, index int) bool {
	r.mu.Lock()
	state, ok := r.sections[section]
	if !ok || !state.carousel.Jump(index) {
		r.mu.Unlock()
		return false
	}
	slide := Slide{Section: section, Index: index, Count: state.carousel.Len()}
	r.mu.Unlock()

	select {
	case state.reset <- struct{}{}:
	default:
	}
	if r.emit != nil {
		r.emit(slide)
	}
	return true
}

// Snapshot returns the current slide of every section.
func (r *Rotator) Snapshot() []Slide {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Slide, 0, len(r.order))
	for _, name := range r.order {
		state := r.sections[name]
		out = append(out, Slide{Section: name, Index: state.carousel.Index(), Count: state.carousel.Len()})
	}
	return out
}

// Interval reports a section's slide interval, or zero for unknown sections.
func (r *Rotator) Interval(section string) time.Duration {
	if state, ok := r.sections[section]; ok {
		return state.interval
	}
	return 0
}
