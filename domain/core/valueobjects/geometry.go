package valueobjects

import "fmt"

// Point is a coordinate on the diagram canvas
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Bounds is the rectangle occupied by a node, given by its upper-left and
// lower-right corners
type Bounds struct {
	UpperLeft  Point `json:"upperLeft" yaml:"upperLeft"`
	LowerRight Point `json:"lowerRight" yaml:"lowerRight"`
}

// NewBounds creates bounds, rejecting inverted rectangles
func NewBounds(upperLeft, lowerRight Point) (Bounds, error) {
	if lowerRight.X < upperLeft.X || lowerRight.Y < upperLeft.Y {
		return Bounds{}, fmt.Errorf("invalid bounds: lower-right (%g,%g) precedes upper-left (%g,%g)",
			lowerRight.X, lowerRight.Y, upperLeft.X, upperLeft.Y)
	}
	return Bounds{UpperLeft: upperLeft, LowerRight: lowerRight}, nil
}

// Width of the rectangle
func (b Bounds) Width() float64 {
	return b.LowerRight.X - b.UpperLeft.X
}

// Height of the rectangle
func (b Bounds) Height() float64 {
	return b.LowerRight.Y - b.UpperLeft.Y
}
