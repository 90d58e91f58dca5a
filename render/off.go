package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/meshfair/halfedge"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOFF reads an ASCII Object File Format mesh. Polygons with more than
// three corners are fan triangulated. Comments starting with # are ignored.
func ReadOFF(r io.Reader) (*halfedge.Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	next := func() ([]string, error) {
		for sc.Scan() {
			line++
			text := sc.Text()
			if i := strings.IndexByte(text, '#'); i >= 0 {
				text = text[:i]
			}
			if fields := strings.Fields(text); len(fields) > 0 {
				return fields, nil
			}
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}

	fields, err := next()
	if err != nil {
		return nil, fmt.Errorf("render: OFF header: %w", err)
	}
	if fields[0] != "OFF" {
		if !strings.HasPrefix(fields[0], "OFF") {
			return nil, errors.New("render: missing OFF keyword")
		}
		return nil, fmt.Errorf("render: unsupported OFF variant %q", fields[0])
	}
	fields = fields[1:]
	if len(fields) == 0 {
		if fields, err = next(); err != nil {
			return nil, fmt.Errorf("render: OFF counts: %w", err)
		}
	}
	counts, err := atoiAll(fields, 2)
	if err != nil {
		return nil, fmt.Errorf("render: OFF counts line %d: %w", line, err)
	}
	nv, nf := counts[0], counts[1]
	if nv < 0 || nf < 0 {
		return nil, fmt.Errorf("render: negative OFF counts %d %d", nv, nf)
	}

	positions := make([]r3.Vec, nv)
	for i := range positions {
		if fields, err = next(); err != nil {
			return nil, fmt.Errorf("render: OFF vertex %d: %w", i, err)
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("render: OFF vertex %d on line %d has %d coordinates", i, line, len(fields))
		}
		var xyz [3]float64
		for k := range xyz {
			if xyz[k], err = strconv.ParseFloat(fields[k], 64); err != nil {
				return nil, fmt.Errorf("render: OFF vertex %d on line %d: %w", i, line, err)
			}
		}
		positions[i] = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}

	faces := make([][3]int, 0, nf)
	for i := 0; i < nf; i++ {
		if fields, err = next(); err != nil {
			return nil, fmt.Errorf("render: OFF face %d: %w", i, err)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 3 || len(fields) < n+1 {
			return nil, fmt.Errorf("render: malformed OFF face %d on line %d", i, line)
		}
		idx, err := atoiAll(fields[1:], n)
		if err != nil {
			return nil, fmt.Errorf("render: OFF face %d on line %d: %w", i, line, err)
		}
		for k := 1; k < n-1; k++ {
			faces = append(faces, [3]int{idx[0], idx[k], idx[k+1]})
		}
	}
	if len(faces) == 0 {
		return nil, ErrEmptyMesh
	}
	return halfedge.New(positions, faces)
}

// WriteOFF writes m in ASCII Object File Format.
func WriteOFF(w io.Writer, m *halfedge.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "OFF\n%d %d 0\n", m.NumVertices(), m.NumFaces())
	for v := range m.Vertices() {
		p := m.Position(v)
		bw.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(p.Z, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	for _, tri := range m.Triangles() {
		fmt.Fprintf(bw, "3 %d %d %d\n", tri[0], tri[1], tri[2])
	}
	return bw.Flush()
}

func atoiAll(fields []string, n int) ([]int, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d integers, got %d fields", n, len(fields))
	}
	out := make([]int, n)
	for i := range out {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
