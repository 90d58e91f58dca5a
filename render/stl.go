package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/meshfair/internal/logging"
	"gonum.org/v1/gonum/spatial/r3"
)

const stlTriangleSize = 50

// WriteSTL writes model triangles to a writer in binary STL format.
// Positions are stored in single precision.
func WriteSTL(w io.Writer, model []r3.Triangle) error {
	if len(model) == 0 {
		return ErrEmptyMesh
	}
	bw := bufio.NewWriter(w)
	header := stlHeader{Count: uint32(len(model))}
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return err
	}
	var (
		b [stlTriangleSize]byte
		d stlTriangle
	)
	for _, triangle := range model {
		d.Tri = ms3.Triangle{toMS3(triangle[0]), toMS3(triangle[1]), toMS3(triangle[2])}
		d.Normal = unitNormal(d.Tri)
		d.put(b[:])
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// ReadSTL reads a binary STL triangle soup. Triangles whose stored normal
// disagrees with their winding are accepted since many exporters write
// zero normals.
func ReadSTL(r io.Reader) (output []r3.Triangle, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("render: encountered EOF while reading STL header")
		}
		return nil, fmt.Errorf("render: STL header read failed: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("render: STL header indicates 0 triangles present")
	}
	var (
		buf        [stlTriangleSize]byte
		d          stlTriangle
		i          int
		mismatches int
	)
	defer func() {
		if readErr != nil {
			readErr = fmt.Errorf("render: %d/%d STL triangles read: %w", i, header.Count, readErr)
		}
	}()
	output = make([]r3.Triangle, 0, min(int(header.Count), 1<<20))
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			if !errors.Is(err, errCalculatedNormalMismatch) {
				return nil, err
			}
			mismatches++
		}
		output = append(output, r3.Triangle{fromMS3(d.Tri[0]), fromMS3(d.Tri[1]), fromMS3(d.Tri[2])})
	}
	if mismatches > 0 {
		logging.Logger().Debug("STL normals disagree with winding", "count", mismatches)
	}
	return output, nil
}

// stlTriangle is one 50 byte STL record: normal, three corners and an
// unused attribute count.
type stlTriangle struct {
	Normal ms3.Vec
	Tri    ms3.Triangle
}

func (t stlTriangle) put(b []byte) {
	_ = b[stlTriangleSize-1]
	putVec(b, t.Normal)
	for j, v := range t.Tri {
		putVec(b[12*(j+1):], v)
	}
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	_ = b[stlTriangleSize-1]
	t.Normal = getVec(b)
	for j := range t.Tri {
		t.Tri[j] = getVec(b[12*(j+1):])
	}
}

func putVec(b []byte, v ms3.Vec) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.Z))
}

func getVec(b []byte) ms3.Vec {
	return ms3.Vec{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b)),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func finiteVec(v ms3.Vec) bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// unitNormal is the normalized winding normal of t, or the zero vector
// for a collapsed triangle.
func unitNormal(t ms3.Triangle) ms3.Vec {
	n := t.Normal()
	if ms3.Norm(n) == 0 {
		return ms3.Vec{}
	}
	return ms3.Unit(n)
}

var errCalculatedNormalMismatch = errors.New("triangle normal not approximately equal to calculated normal from vertices")

func (t stlTriangle) validate() error {
	const normTol = 5e-2
	if !finiteVec(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	for _, v := range t.Tri {
		if !finiteVec(v) {
			return errors.New("inf/NaN STL triangle vertex")
		}
	}
	calc := unitNormal(t.Tri)
	if !ms3.EqualElem(calc, t.Normal, normTol) && !ms3.EqualElem(ms3.Scale(-1, calc), t.Normal, normTol) {
		return errCalculatedNormalMismatch
	}
	return nil
}

func toMS3(v r3.Vec) ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func fromMS3(v ms3.Vec) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}
