package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// d3.Box is a 3d bounding box.
type Box r3.Box

// BoundingBox returns the smallest box containing every vector in s.
// s must not be empty.
func BoundingBox(s Set) Box {
	return Box{Min: s.Min(), Max: s.Max()}
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Diagonal returns the length of the box diagonal.
func (a Box) Diagonal() float64 {
	return r3.Norm(a.Size())
}
