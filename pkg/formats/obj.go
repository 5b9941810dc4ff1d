package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OBJ format errors.
var (
	ErrNoFaces            = errors.New("obj has no faces")
	ErrBadIndex           = errors.New("obj face index out of range")
	ErrMixedFaceAttribs   = errors.New("obj faces disagree on texcoord/normal presence")
	ErrTruncatedStatement = errors.New("obj statement has too few values")
)

// FaceVertex references one corner of a face. Indices are zero-based;
// -1 marks an absent texcoord or normal.
type FaceVertex struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJ holds the raw contents of a Wavefront OBJ file after triangulation.
type OBJ struct {
	Positions [][3]float32
	TexCoords [][2]float32
	Normals   [][3]float32

	// Corners lists triangle corners, three per triangle.
	Corners []FaceVertex
}

// LoadOBJ reads and parses an OBJ file from disk.
func LoadOBJ(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}
	return ParseOBJ(data)
}

// ParseOBJ parses OBJ text. Polygons are fan-triangulated; negative indices
// are resolved relative to the current end of each list. Unknown statements
// are ignored. Text is UTF-8 unless a byte order mark says UTF-16.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	text := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(text)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		ident, vals := fields[0], fields[1:]

		var err error
		switch ident {
		case "v":
			var v [3]float32
			err = parseFloats(vals, v[:])
			obj.Positions = append(obj.Positions, v)
		case "vn":
			var v [3]float32
			err = parseFloats(vals, v[:])
			obj.Normals = append(obj.Normals, v)
		case "vt":
			var v [2]float32
			err = parseFloats(vals, v[:])
			obj.TexCoords = append(obj.TexCoords, v)
		case "f":
			err = obj.parseFace(vals)
		}
		if err != nil {
			return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}
	if len(obj.Corners) == 0 {
		return nil, ErrNoFaces
	}
	return obj, nil
}

func parseFloats(vals []string, out []float32) error {
	if len(vals) < len(out) {
		return ErrTruncatedStatement
	}
	for i := range out {
		f, err := strconv.ParseFloat(vals[i], 32)
		if err != nil {
			return fmt.Errorf("parsing %q: %w", vals[i], err)
		}
		out[i] = float32(f)
	}
	return nil
}

func (o *OBJ) parseFace(vals []string) error {
	if len(vals) < 3 {
		return ErrTruncatedStatement
	}

	poly := make([]FaceVertex, 0, len(vals))
	for _, s := range vals {
		fv, err := o.parseCorner(s)
		if err != nil {
			return err
		}
		poly = append(poly, fv)
	}

	first := poly[0]
	if len(o.Corners) > 0 {
		first = o.Corners[0]
	}
	for _, fv := range poly {
		if (fv.TexCoord < 0) != (first.TexCoord < 0) || (fv.Normal < 0) != (first.Normal < 0) {
			return ErrMixedFaceAttribs
		}
	}

	// Fan around the first corner.
	for i := 1; i+1 < len(poly); i++ {
		o.Corners = append(o.Corners, poly[0], poly[i], poly[i+1])
	}
	return nil
}

func (o *OBJ) parseCorner(s string) (FaceVertex, error) {
	parts := strings.Split(s, "/")
	fv := FaceVertex{TexCoord: -1, Normal: -1}

	var err error
	if fv.Position, err = resolveIndex(parts[0], len(o.Positions)); err != nil {
		return fv, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if fv.TexCoord, err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
			return fv, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if fv.Normal, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
			return fv, err
		}
	}
	return fv, nil
}

// resolveIndex converts a one-based (or negative, relative) OBJ index into
// a zero-based index into a list of length n.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing index %q: %w", s, err)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	default:
		return 0, fmt.Errorf("%w: %d of %d", ErrBadIndex, i, n)
	}
}

// Texturable reports whether the faces carry texture coordinates.
func (o *OBJ) Texturable() bool {
	return len(o.Corners) > 0 && o.Corners[0].TexCoord >= 0
}

// HasNormals reports whether the faces carry normals.
func (o *OBJ) HasNormals() bool {
	return len(o.Corners) > 0 && o.Corners[0].Normal >= 0
}

// BuildMesh interleaves the triangulated corners into a vertex array laid
// out as position, texcoord (if any), normal (if any). Corners sharing the
// same position/texcoord/normal triple become a single vertex.
func (o *OBJ) BuildMesh() MeshData {
	mesh := MeshData{
		Texturable: o.Texturable(),
		HasNormals: o.HasNormals(),
	}

	seen := make(map[FaceVertex]uint32, len(o.Corners))
	mesh.Indices = make([]uint32, 0, len(o.Corners))
	for _, fv := range o.Corners {
		if idx, ok := seen[fv]; ok {
			mesh.Indices = append(mesh.Indices, idx)
			continue
		}
		idx := uint32(len(seen))
		seen[fv] = idx
		mesh.Indices = append(mesh.Indices, idx)

		p := o.Positions[fv.Position]
		mesh.Vertices = append(mesh.Vertices, p[0], p[1], p[2])
		if mesh.Texturable {
			t := o.TexCoords[fv.TexCoord]
			mesh.Vertices = append(mesh.Vertices, t[0], t[1])
		}
		if mesh.HasNormals {
			n := o.Normals[fv.Normal]
			mesh.Vertices = append(mesh.Vertices, n[0], n[1], n[2])
		}
	}

	mesh.Wide = len(mesh.Indices) > MaxShortIndex
	return mesh
}
