package ot

import (
	"encoding/binary"
)

// mvarValueRecord maps one metric value tag to an entry (outer and
// inner index) in the table's ItemVariationStore.
type mvarValueRecord struct {
	tag              Tag
	outerIndex       uint16
	innerIndex       uint16
}

// Mvar represents a parsed MVAR (Metrics Variations) table. It maps
// well-known metric tags (e.g. "hasc", "hdsc", "undo", "strs") to
// entries in an ItemVariationStore, letting variable fonts vary
// scalar font-wide metrics across the designspace.
type Mvar struct {
	data    []byte
	records []mvarValueRecord
	store   *ItemVariationStore
}

// ParseMvar parses an MVAR table.
func ParseMvar(data []byte) (*Mvar, error) {
	if len(data) < 12 {
		return nil, ErrInvalidTable
	}

	major := binary.BigEndian.Uint16(data[0:])
	minor := binary.BigEndian.Uint16(data[2:])
	if major != 1 || minor != 0 {
		return nil, ErrInvalidFormat
	}

	valueRecordSize := int(binary.BigEndian.Uint16(data[6:]))
	valueRecordCount := int(binary.BigEndian.Uint16(data[8:]))
	itemVariationStoreOffset := binary.BigEndian.Uint16(data[10:])

	m := &Mvar{data: data}

	recordsStart := 12
	if valueRecordSize >= 8 {
		for i := 0; i < valueRecordCount; i++ {
			off := recordsStart + i*valueRecordSize
			if off+8 > len(data) {
				break
			}
			m.records = append(m.records, mvarValueRecord{
				tag:        Tag(binary.BigEndian.Uint32(data[off:])),
				outerIndex: binary.BigEndian.Uint16(data[off+4:]),
				innerIndex: binary.BigEndian.Uint16(data[off+6:]),
			})
		}
	}

	if itemVariationStoreOffset != 0 && int(itemVariationStoreOffset) < len(data) {
		vs, err := parseItemVariationStore(data[itemVariationStoreOffset:])
		if err != nil {
			return nil, err
		}
		m.store = vs
	}

	return m, nil
}

// HasData returns true if the MVAR table declares any value records.
func (m *Mvar) HasData() bool {
	return m != nil && len(m.records) > 0
}

// GetDelta returns the variation delta for a metric tag at the given
// normalized coordinates, or 0 if the tag is not varied.
func (m *Mvar) GetDelta(tag Tag, normalizedCoords []int) float32 {
	if m == nil || m.store == nil {
		return 0
	}
	for _, r := range m.records {
		if r.tag == tag {
			varIdx := uint32(r.outerIndex)<<16 | uint32(r.innerIndex)
			return m.store.GetDelta(varIdx, normalizedCoords)
		}
	}
	return 0
}

// Tags returns the metric tags this table varies.
func (m *Mvar) Tags() []Tag {
	if m == nil {
		return nil
	}
	tags := make([]Tag, len(m.records))
	for i, r := range m.records {
		tags[i] = r.tag
	}
	return tags
}

// PeakTuples exposes the peak coordinates of every variation region
// backing this table, for masters discovery.
func (m *Mvar) PeakTuples() [][]int16 {
	if m == nil || m.store == nil || m.store.regions == nil {
		return nil
	}
	return m.store.regions.PeakTuples()
}

// Vvar represents a parsed VVAR (Vertical Metrics Variations) table.
// Its binary layout is identical to HVAR's, with offsets referring to
// vertical advance / TSB / BSB delta-set maps instead of horizontal
// ones, so it reuses the HVAR parser and accessors.
type Vvar = Hvar

// ParseVvar parses a VVAR table.
func ParseVvar(data []byte) (*Vvar, error) {
	return ParseHvar(data)
}
