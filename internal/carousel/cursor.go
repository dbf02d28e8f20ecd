package carousel

import "github.com/pkg/errors"

var ErrNoSlides = errors.New("carousel needs at least one slide")

// Cursor is the position of one carousel. With perView > 1 several slides
// are visible at once and the cursor stops at count-perView.
type Cursor struct {
	index   int
	count   int
	perView int
}

func NewCursor(count, perView int) (*Cursor, error) {
	if count <= 0 {
		return nil, ErrNoSlides
	}
	if perView <= 0 {
		perView = 1
	}
	return &Cursor{count: count, perView: perView}, nil
}

func (c *Cursor) Index() int { return c.index }

func (c *Cursor) Count() int { return c.count }

// Last is the highest index the cursor can reach.
func (c *Cursor) Last() int {
	return max(0, c.count-c.perView)
}

// Next advances one slide and wraps to the first after the last.
func (c *Cursor) Next() int {
	if c.index >= c.Last() {
		c.index = 0
	} else {
		c.index++
	}
	return c.index
}

// Prev steps back one slide and wraps to the last before the first.
func (c *Cursor) Prev() int {
	if c.index <= 0 {
		c.index = c.Last()
	} else {
		c.index--
	}
	return c.index
}

// JumpTo moves to i. Out of range targets are ignored.
func (c *Cursor) JumpTo(i int) bool {
	if i < 0 || i > c.Last() {
		return false
	}
	c.index = i
	return true
}

// Resize changes how many slides are visible, pulling the cursor back if
// it would show past the end.
func (c *Cursor) Resize(perView int) int {
	if perView <= 0 {
		perView = 1
	}
	c.perView = perView
	if c.index > c.Last() {
		c.index = c.Last()
	}
	return c.index
}

// SlidesPerView maps a viewport width in CSS pixels to the number of
// visible cards.
func SlidesPerView(width int) int {
	switch {
	case width < 768:
		return 1
	case width < 1024:
		return 2
	default:
		return 3
	}
}
