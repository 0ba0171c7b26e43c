package board

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCarouselLoops(t *testing.T) {
	c := NewCarousel(3)
	got := []int{c.Index(), c.Next(), c.Next(), c.Next(), c.Next()}
	assert.Equal(t, []int{0, 1, 2, 0, 1}, got)
}

func TestCarouselEmptyStaysAtZero(t *testing.T) {
	c := NewCarousel(0)
	assert.Equal(t, 0, c.Next())
	assert.False(t, c.Jump(0))
}

func TestCarouselJump(t *testing.T) {
	c := NewCarousel(4)
	assert.True(t, c.Jump(3))
	assert.Equal(t, 3, c.Index())
	assert.False(t, c.Jump(4))
	assert.False(t, c.Jump(-1))
	assert.Equal(t, 3, c.Index())
	assert.Equal(t, 0, c.Next())
}

func TestCarouselResizeClamps(t *testing.T) {
	c := NewCarousel(5)
	c.Jump(4)
	c.Resize(2)
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0, c.Next())

	c.Jump(1)
	c.Resize(6)
	assert.Equal(t, 1, c.Index())

	c.Resize(0)
	assert.Equal(t, 0, c.Index())
	c.Resize(-1)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Index())
}

func TestRotatorAdvancesAndLoops(t *testing.T) {
	defer goleak.VerifyNone(t)

	slides := make(chan Slide, 16)
	r := NewRotator(func(s Slide) {
		select {
		case slides <- s:
		default:
		}
	}, Section{Name: SectionNews, Interval: 15 * time.Millisecond})
	r.SetCount(SectionNews, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	got := []int{receive(t, slides).Index, receive(t, slides).Index, receive(t, slides).Index}
	cancel()
	<-done

	assert.Equal(t, []int{1, 0, 1}, got)
}

func TestRotatorSingleItemDoesNotAdvance(t *testing.T) {
	defer goleak.VerifyNone(t)

	slides := make(chan Slide, 4)
	r := NewRotator(func(s Slide) { slides <- s }, Section{Name: SectionEvents, Interval: 5 * time.Millisecond})
	r.SetCount(SectionEvents, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	r.Run(ctx)

	assert.Empty(t, slides)
}

func TestRotatorJumpEmitsImmediately(t *testing.T) {
	slides := make(chan Slide, 4)
	r := NewRotator(func(s Slide) { slides <- s },
		Section{Name: SectionNews, Interval: time.Hour},
		Section{Name: SectionEvents, Interval: time.Hour},
	)
	r.SetCount(SectionNews, 5)

	require.True(t, r.Jump(SectionNews, 3))
	assert.Equal(t, Slide{Section: SectionNews, Index: 3, Count: 5}, receive(t, slides))

	assert.False(t, r.Jump(SectionNews, 9))
	assert.False(t, r.Jump("weather", 0))

	want := []Slide{
		{Section: SectionNews, Index: 3, Count: 5},
		{Section: SectionEvents, Index: 0, Count: 0},
	}
	if diff := cmp.Diff(want, r.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, time.Hour, r.Interval(SectionEvents))
	assert.Zero(t, r.Interval("weather"))
}

func receive(t *testing.T, ch <-chan Slide) Slide {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for slide")
		return Slide{}
	}
}
