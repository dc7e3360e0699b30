package vm

// splitAddress decomposes a raw virtual address into its segment, page, and
// offset fields. Field widths derive from the configured frame size and
// pages per segment.
func (m *Manager) splitAddress(va int) (segment, page, offset int) {
	offset = va & (m.wordsPerFrame - 1)
	page = (va >> m.offsetBits) & (m.pagesPerSegment - 1)
	segment = va >> (m.offsetBits + m.pageBits)

	return segment, page, offset
}

// Translate resolves a virtual address to a physical one, walking segment
// table, page table, and frame. Archived tables and pages are brought back
// in through the fault handler, evicting LFU frames when the pool is full.
// Recoverable faults come back as *Fault; a *IntegrityError means the
// initialization data itself is broken and the batch should stop.
func (m *Manager) Translate(va int) (int, error) {
	segment, page, offset := m.splitAddress(va)

	entry, err := m.SegmentEntry(segment)
	if err != nil {
		return 0, err
	}

	if page*m.wordsPerFrame+offset >= entry.Size {
		return 0, &Fault{Kind: FaultBounds, Segment: segment, Page: page}
	}

	ptFrame, err := m.pageTableFrame(segment, entry)
	if err != nil {
		return 0, err
	}
	m.frames[ptFrame].accessCount++

	frame, err := m.pageFrame(segment, page, ptFrame)
	if err != nil {
		return 0, err
	}
	m.frames[frame].accessCount++

	return frame*m.wordsPerFrame + offset, nil
}

// pageTableFrame returns the frame holding the segment's page table,
// restoring it from disk first if it is archived.
func (m *Manager) pageTableFrame(segment int, entry SegmentEntry) (int, error) {
	switch entry.PageTable.Kind() {
	case LocationResident:
		return entry.PageTable.Frame(), nil
	case LocationArchived:
		frame, err := m.resolvePageTableFault(segment, entry.PageTable.Block())
		if err == errNoFrame || err == errDiskFull {
			return 0, &Fault{Kind: FaultPageTable, Segment: segment}
		}
		if err != nil {
			return 0, err
		}

		return frame, nil
	default:
		return 0, &IntegrityError{Segment: segment}
	}
}

// pageFrame returns the frame holding the page, restoring it from disk
// first if it is archived. The page table is already resident in ptFrame.
func (m *Manager) pageFrame(segment, page, ptFrame int) (int, error) {
	loc := locationFromWord(m.memory.ReadWord(ptFrame, page))

	switch loc.Kind() {
	case LocationResident:
		return loc.Frame(), nil
	case LocationArchived:
		frame, err := m.resolvePageFault(segment, page, loc.Block())
		if err == errNoFrame || err == errDiskFull {
			return 0, &Fault{Kind: FaultPage, Segment: segment, Page: page}
		}
		if err != nil {
			return 0, err
		}

		return frame, nil
	default:
		return 0, &IntegrityError{Segment: segment, Page: page}
	}
}
