package vm

import "fmt"

// A SegmentEntry describes one segment: its size in words and where its
// page table currently lives. The entry occupies two words of the reserved
// segment table region of physical memory.
type SegmentEntry struct {
	Size      int
	PageTable Location
}

// segmentWordPos locates one of the two table words of a segment inside the
// reserved frames.
func (m *Manager) segmentWordPos(segment, word int) (frame, offset int) {
	idx := 2*segment + word
	return idx / m.wordsPerFrame, idx % m.wordsPerFrame
}

// SegmentEntry reads the table entry of a segment. A segment outside the
// table range or one whose size word is still zero yields a segment fault.
func (m *Manager) SegmentEntry(segment int) (SegmentEntry, error) {
	if segment < 0 || segment >= m.segmentCount {
		return SegmentEntry{}, &Fault{Kind: FaultSegment, Segment: segment}
	}

	sizeFrame, sizeOffset := m.segmentWordPos(segment, 0)
	size := m.memory.ReadWord(sizeFrame, sizeOffset)
	if size == 0 {
		return SegmentEntry{}, &Fault{Kind: FaultSegment, Segment: segment}
	}

	locFrame, locOffset := m.segmentWordPos(segment, 1)
	loc := locationFromWord(m.memory.ReadWord(locFrame, locOffset))

	return SegmentEntry{Size: int(size), PageTable: loc}, nil
}

// InstallSegment writes a segment table entry. It is the ingestion contract
// for initialization records; a rejected record is an error the caller can
// report and skip.
func (m *Manager) InstallSegment(segment, size int, loc Location) error {
	if segment < 0 || segment >= m.segmentCount {
		return fmt.Errorf("segment %d outside table range [0, %d)",
			segment, m.segmentCount)
	}

	if size <= 0 || size > m.pagesPerSegment*m.wordsPerFrame {
		return fmt.Errorf("segment %d has invalid size %d", segment, size)
	}

	prev, prevErr := m.SegmentEntry(segment)

	switch loc.Kind() {
	case LocationResident:
		if err := m.claimFrame(loc.Frame(), ownerPageTable, segment, 0); err != nil {
			return err
		}
	case LocationArchived:
		if err := m.claimBlock(loc.Block()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("segment %d has no page table location", segment)
	}

	if prevErr == nil && prev.PageTable != loc {
		m.releaseLocation(prev.PageTable)
	}

	sizeFrame, sizeOffset := m.segmentWordPos(segment, 0)
	m.memory.WriteWord(sizeFrame, sizeOffset, int64(size))
	m.setSegmentLocation(segment, loc)

	return nil
}

// setSegmentLocation rewrites only the location word of a segment entry.
func (m *Manager) setSegmentLocation(segment int, loc Location) {
	locFrame, locOffset := m.segmentWordPos(segment, 1)
	m.memory.WriteWord(locFrame, locOffset, loc.word())
}

// PageEntry reads the page table entry of a page. If the segment's page
// table is not resident, the lookup cannot be served and a page-table fault
// is returned for the fault handler to resolve.
func (m *Manager) PageEntry(segment, page int) (Location, error) {
	entry, err := m.SegmentEntry(segment)
	if err != nil {
		return Location{}, err
	}

	if page < 0 || page >= m.pagesPerSegment {
		return Location{}, &Fault{
			Kind: FaultBounds, Segment: segment, Page: page,
		}
	}

	switch entry.PageTable.Kind() {
	case LocationResident:
		word := m.memory.ReadWord(entry.PageTable.Frame(), page)
		return locationFromWord(word), nil
	case LocationArchived:
		return Location{}, &Fault{
			Kind: FaultPageTable, Segment: segment, Page: page,
		}
	default:
		return Location{}, &IntegrityError{Segment: segment, Page: page}
	}
}

// InstallPage writes a page table entry, following the page table to its
// current residency: the word lands in the page table's frame, or in its
// disk block if the table is archived.
func (m *Manager) InstallPage(segment, page int, loc Location) error {
	entry, err := m.SegmentEntry(segment)
	if err != nil {
		return fmt.Errorf("segment %d is not installed", segment)
	}

	if page < 0 || page >= m.pagesPerSegment {
		return fmt.Errorf("page %d outside segment range [0, %d)",
			page, m.pagesPerSegment)
	}

	switch loc.Kind() {
	case LocationResident:
		if err := m.claimFrame(loc.Frame(), ownerPage, segment, page); err != nil {
			return err
		}
	case LocationArchived:
		if err := m.claimBlock(loc.Block()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("segment %d page %d has no location", segment, page)
	}

	if prev := m.readPageLocation(entry, page); prev != loc {
		m.releaseLocation(prev)
	}

	m.writePageLocation(entry, page, loc)

	return nil
}

// setPageLocation rewrites a page table entry wherever the page table
// currently lives. Used by the fault handler and the evictor, which must
// keep entries consistent even while the owning table moves.
func (m *Manager) setPageLocation(segment, page int, loc Location) {
	entry, err := m.SegmentEntry(segment)
	if err != nil {
		panic(fmt.Sprintf("segment %d vanished while updating page %d",
			segment, page))
	}

	m.writePageLocation(entry, page, loc)
}

func (m *Manager) writePageLocation(entry SegmentEntry, page int, loc Location) {
	switch entry.PageTable.Kind() {
	case LocationResident:
		m.memory.WriteWord(entry.PageTable.Frame(), page, loc.word())
	case LocationArchived:
		m.disk.WriteWord(entry.PageTable.Block(), page, loc.word())
	default:
		panic("page table has no location")
	}
}

// readPageLocation reads a page table entry wherever the page table
// currently lives.
func (m *Manager) readPageLocation(entry SegmentEntry, page int) Location {
	switch entry.PageTable.Kind() {
	case LocationResident:
		return locationFromWord(m.memory.ReadWord(entry.PageTable.Frame(), page))
	case LocationArchived:
		return locationFromWord(m.disk.ReadWord(entry.PageTable.Block(), page))
	default:
		panic("page table has no location")
	}
}

// claimFrame marks a frame as holding a table or page installed at
// initialization time.
func (m *Manager) claimFrame(frame int, owner ownerKind, segment, page int) error {
	if frame < m.reservedFrames || frame >= m.frameCount {
		return fmt.Errorf("frame %d outside usable range [%d, %d)",
			frame, m.reservedFrames, m.frameCount)
	}

	info := &m.frames[frame]
	if info.inUse &&
		(info.owner != owner || info.segment != segment || info.page != page) {
		return fmt.Errorf("frame %d already holds %s of segment %d",
			frame, info.owner, info.segment)
	}

	*info = frameInfo{inUse: true, owner: owner, segment: segment, page: page}

	return nil
}

// claimBlock marks a disk block as holding archived content installed at
// initialization time. Block 0 is rejected by the Location constructor, so
// only the upper bound needs checking here.
func (m *Manager) claimBlock(block int) error {
	if block >= m.blockCount {
		return fmt.Errorf("block %d outside usable range [1, %d)",
			block, m.blockCount)
	}

	m.blockInUse[block] = true

	return nil
}

// releaseLocation frees whatever a superseded table entry pointed at, so
// that overwriting an installed entry cannot leak its frame or block.
func (m *Manager) releaseLocation(loc Location) {
	switch loc.Kind() {
	case LocationResident:
		m.frames[loc.Frame()] = frameInfo{}
	case LocationArchived:
		m.blockInUse[loc.Block()] = false
	}
}
