// Package persist implements the on-disk layout of spec.md §4.7: one
// file per step per artifact (unitary<N> transformations, rho<N> and
// rhoFDM<N> density matrices) under a scratch working directory, plus
// the NRG_WORKDIR-driven scratch directory lifecycle of spec.md §9
// "Environment".
//
// The binary codec is grounded directly on the teacher's
// mat.Dense.MarshalBinary/UnmarshalBinary convention (mat/io.go): a
// fixed little-endian header followed by row-major float64 data. persist
// reuses that exact header shape for every matrix it writes, then wraps
// a count-prefixed sequence of (invariant.Label, matrix) pairs around it
// to represent the per-shell block maps spec.md §3 and §4.6 pass around
// in memory.
package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
)

// codecVersion is the on-disk format version for the matrix header,
// matching the teacher's "version" constant in mat/io.go.
const codecVersion uint64 = 0x1

// storage mirrors mat/io.go's header struct field-for-field so the
// emitted bytes are the same shape the teacher's own Dense codec
// produces for a dense, unit-stride, general matrix.
type storage struct {
	Version uint64
	Form    byte
	Packing byte
	Uplo    byte
	Unit    bool
	Rows    int64
	Cols    int64
	KU      int64
	KL      int64
}

var headerSize = binary.Size(storage{})

// marshalMatrix encodes m using the teacher's Dense binary layout:
// header, then row-major float64 elements.
func marshalMatrix(w io.Writer, m *mat.Dense) error {
	r, c := m.Dims()
	hdr := storage{
		Version: codecVersion,
		Form:    'G', Packing: 'F', Uplo: 'A',
		Rows: int64(r), Cols: int64(c),
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	var b [8]byte
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(m.At(i, j)))
			if _, err := w.Write(b[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

// unmarshalMatrix decodes a matrix written by marshalMatrix.
func unmarshalMatrix(r io.Reader) (*mat.Dense, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	var hdr storage
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.Version != codecVersion {
		return nil, fmt.Errorf("persist: incorrect matrix codec version: %d", hdr.Version)
	}
	if hdr.Form != 'G' || hdr.Packing != 'F' || hdr.Uplo != 'A' {
		return nil, fmt.Errorf("persist: unsupported matrix storage form %c%c%c", hdr.Form, hdr.Packing, hdr.Uplo)
	}
	if hdr.Rows < 0 || hdr.Cols < 0 {
		return nil, fmt.Errorf("persist: negative matrix dimension %d x %d", hdr.Rows, hdr.Cols)
	}
	rows, cols := int(hdr.Rows), int(hdr.Cols)
	data := make([]float64, rows*cols)
	raw := make([]byte, 8*len(data))
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i : 8*i+8]))
	}
	return mat.NewDense(rows, cols, data), nil
}
