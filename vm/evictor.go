package vm

import (
	"errors"
	"log"
)

// errNoFrame reports that neither a free nor an evictable frame exists.
// Translation surfaces it as a fault; the allocator folds it into its own
// failure taxonomy.
var errNoFrame = errors.New("no free or evictable frame")

// errDiskFull reports that no free disk block is left to archive into.
var errDiskFull = errors.New("no free disk block")

// obtainFrame returns a frame that the caller may fill: the lowest-index
// free frame if one exists, otherwise the LFU victim after its content has
// been archived to disk.
func (m *Manager) obtainFrame() (int, error) {
	for f := m.reservedFrames; f < m.frameCount; f++ {
		if !m.frames[f].inUse {
			return f, nil
		}
	}

	victim, found := m.victimFrame()
	if !found {
		return 0, errNoFrame
	}

	if err := m.evictFrame(victim); err != nil {
		return 0, err
	}

	return victim, nil
}

// victimFrame selects the in-use frame with the smallest access count,
// lowest index on ties. Segment table frames and allocation frames are
// pinned and never considered.
func (m *Manager) victimFrame() (victim int, found bool) {
	var minCount uint64

	for f := m.reservedFrames; f < m.frameCount; f++ {
		info := m.frames[f]

		if !info.inUse {
			continue
		}

		if info.owner != ownerPage && info.owner != ownerPageTable {
			continue
		}

		if !found || info.accessCount < minCount {
			victim = f
			minCount = info.accessCount
			found = true
		}
	}

	return victim, found
}

// evictFrame archives the content of an in-use page or page-table frame to
// a fresh disk block, flips the owning table entry to the archived
// location, and releases the frame.
func (m *Manager) evictFrame(frame int) error {
	info := m.frames[frame]
	if !info.inUse {
		log.Panicf("frame %d is not in use", frame)
	}

	block, err := m.freeBlock()
	if err != nil {
		return err
	}

	copy(m.disk.blockWords(block), m.memory.frameWords(frame))
	m.blockInUse[block] = true

	switch info.owner {
	case ownerPageTable:
		m.setSegmentLocation(info.segment, Archived(block))
	case ownerPage:
		m.setPageLocation(info.segment, info.page, Archived(block))
	default:
		log.Panicf("frame %d holds %s and cannot be evicted",
			frame, info.owner)
	}

	m.frames[frame] = frameInfo{}

	if m.tracer != nil {
		m.tracer.TraceEviction(frame, block, info.owner.String())
	}

	return nil
}

// freeBlock returns the lowest-index unused disk block. Block 0 cannot be
// expressed in the archived-location encoding and is skipped.
func (m *Manager) freeBlock() (int, error) {
	for b := 1; b < m.blockCount; b++ {
		if !m.blockInUse[b] {
			return b, nil
		}
	}

	return 0, errDiskFull
}

// resolvePageTableFault brings an archived page table back into a frame and
// repoints the segment entry at it.
func (m *Manager) resolvePageTableFault(segment, block int) (int, error) {
	frame, err := m.restoreBlock(block, segment, 0)
	if err != nil {
		return 0, err
	}

	m.frames[frame] = frameInfo{
		inUse: true, owner: ownerPageTable, segment: segment,
	}
	m.setSegmentLocation(segment, Resident(frame))

	if m.tracer != nil {
		m.tracer.TraceFaultResolution("page table", segment, 0, frame)
	}

	return frame, nil
}

// resolvePageFault brings an archived page back into a frame and repoints
// the page table entry at it.
func (m *Manager) resolvePageFault(segment, page, block int) (int, error) {
	frame, err := m.restoreBlock(block, segment, page)
	if err != nil {
		return 0, err
	}

	m.frames[frame] = frameInfo{
		inUse: true, owner: ownerPage, segment: segment, page: page,
	}
	m.setPageLocation(segment, page, Resident(frame))

	if m.tracer != nil {
		m.tracer.TraceFaultResolution("page", segment, page, frame)
	}

	return frame, nil
}

// restoreBlock copies the content of a disk block into a newly obtained
// frame and releases the block. A block that was never given content means
// the initialization data promised something it did not deliver.
func (m *Manager) restoreBlock(block, segment, page int) (int, error) {
	if block <= 0 || block >= m.blockCount || !m.blockInUse[block] {
		return 0, &IntegrityError{Block: block, Segment: segment, Page: page}
	}

	frame, err := m.obtainFrame()
	if err != nil {
		return 0, err
	}

	copy(m.memory.frameWords(frame), m.disk.blockWords(block))
	m.blockInUse[block] = false

	return frame, nil
}
