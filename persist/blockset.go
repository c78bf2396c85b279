package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mihasalamun/nrgljubljana/invariant"
	"gonum.org/v1/gonum/mat"
)

// blockSetMagic distinguishes a block-set file from a bare matrix blob,
// written right before the entry count.
const blockSetMagic uint32 = 0x4e524742 // "NRGB"

func marshalLabel(w io.Writer, l invariant.Label) error {
	comps := l.Components()
	if err := binary.Write(w, binary.LittleEndian, int32(len(comps))); err != nil {
		return err
	}
	for _, c := range comps {
		if err := binary.Write(w, binary.LittleEndian, c); err != nil {
			return err
		}
	}
	return nil
}

func unmarshalLabel(r io.Reader) (invariant.Label, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return invariant.Label{}, err
	}
	comps := make([]int32, n)
	for i := range comps {
		if err := binary.Read(r, binary.LittleEndian, &comps[i]); err != nil {
			return invariant.Label{}, err
		}
	}
	return invariant.New(comps...), nil
}

// marshalBlockSet encodes a per-invariant map of dense matrices in
// deterministic label order (invariant.Sorted), so two writes of an
// identical map produce byte-identical output, per spec.md §8
// invariant 7's bit-for-bit round-trip requirement.
func marshalBlockSet(blocks map[invariant.Label]*mat.Dense) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, blockSetMagic); err != nil {
		return nil, err
	}
	labels := invariant.Sorted(blocks)
	if err := binary.Write(&buf, binary.LittleEndian, int64(len(labels))); err != nil {
		return nil, err
	}
	for _, l := range labels {
		if err := marshalLabel(&buf, l); err != nil {
			return nil, err
		}
		if err := marshalMatrix(&buf, blocks[l]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// unmarshalBlockSet decodes a byte stream written by marshalBlockSet.
func unmarshalBlockSet(data []byte) (map[invariant.Label]*mat.Dense, error) {
	r := bytes.NewReader(data)
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, err
	}
	if magic != blockSetMagic {
		return nil, fmt.Errorf("persist: bad block-set magic %#x", magic)
	}
	var count int64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	out := make(map[invariant.Label]*mat.Dense, count)
	for i := int64(0); i < count; i++ {
		label, err := unmarshalLabel(r)
		if err != nil {
			return nil, err
		}
		m, err := unmarshalMatrix(r)
		if err != nil {
			return nil, err
		}
		out[label] = m
	}
	return out, nil
}
