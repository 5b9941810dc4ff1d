// Package formats provides parsers for the asset formats the composer can
// import. Only Wavefront OBJ geometry is supported.
package formats

// MaxShortIndex is the largest index count that still fits 16-bit indices.
const MaxShortIndex = 65535

// MeshData is triangulated, interleaved vertex data ready for upload.
type MeshData struct {
	Vertices []float32
	Indices  []uint32

	// Wide is set when the index count exceeds MaxShortIndex and the mesh
	// needs 32-bit indices.
	Wide bool

	Texturable bool
	HasNormals bool
	HasColors  bool
}

// VertexCount returns the number of vertices given the floats per vertex.
func (m *MeshData) VertexCount(stride int) int {
	if stride == 0 {
		return 0
	}
	return len(m.Vertices) / stride
}
