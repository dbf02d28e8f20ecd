package carousel

const (
	SwipeThreshold = 50
	// ScrollStep is how far the core values strip moves per step, in pixels.
	ScrollStep = 350
)

// Swipe returns +1 for a leftward swipe, -1 for a rightward one and 0 when
// the finger moved no more than SwipeThreshold.
func Swipe(startX, endX float64) int {
	diff := startX - endX
	if diff > SwipeThreshold {
		return 1
	}
	if diff < -SwipeThreshold {
		return -1
	}
	return 0
}

// KeyDirection maps arrow keys to a scroll direction.
func KeyDirection(key string) int {
	switch key {
	case "ArrowLeft":
		return -1
	case "ArrowRight":
		return 1
	}
	return 0
}

// ScrollOffset is the horizontal offset for a direction.
func ScrollOffset(direction int) int {
	return direction * ScrollStep
}
