package board

// Carousel tracks the visible slide of one board section. It loops: advancing
// past the last item returns to the first. It is not safe for concurrent use.
type Carousel struct {
	length int
	index  int
}

func NewCarousel(length int) *Carousel {
	c := &Carousel{}
	c.Resize(length)
	return c
}

func (c *Carousel) Len() int   { return c.length }
func (c *Carousel) Index() int { return c.index }

// Next advances one slide and returns the new index.
func (c *Carousel) Next() int {
	n := c.length
	if n < 1 {
		n = 1
	}
	c.index = (c.index + 1) % n
	return c.index
}

// Jump selects a slide directly. Out-of-range indexes are ignored.
func (c *Carousel) Jump(index int) bool {
	if index < 0 || index >= c.length {
		return false
	}
	c.index = index
	return true
}

// Resize updates the item count, clamping the index to the last item when it
// no longer fits.
func (c *Carousel) Resize(length int) {
	if length < 0 {
		length = 0
	}
	c.length = length
	if c.index >= length {
		c.index = max(length-1, 0)
	}
}
