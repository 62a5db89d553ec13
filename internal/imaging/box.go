package imaging

import "image"

// Box is an axis-aligned rectangle in (x, y, width, height) form, the format
// the tracker works in. Width and height are never negative.
type Box struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Rect converts the box to corner form: (x1, y1) = (X, Y),
// (x2, y2) = (X+Width, Y+Height).
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// BoxFromRect converts a corner-form rectangle back to (x, y, w, h).
func BoxFromRect(r image.Rectangle) Box {
	return Box{
		X:      r.Min.X,
		Y:      r.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}

// Empty reports whether the box encloses no pixels.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}
