// Package vm simulates a two-level paged virtual memory system. A Manager
// owns a physical frame pool, a simulated disk, a segment table kept in the
// reserved low frames, and one page table per segment. It translates virtual
// addresses, recovers page and page-table faults by restoring archived
// content from disk, evicts frames with an LFU policy, and serves contiguous
// malloc/free/realloc requests over the same frame pool.
package vm

import (
	"log"
	"math/bits"
	"sort"
)

// An ownerKind tells what a frame currently holds.
type ownerKind int

const (
	ownerNone ownerKind = iota
	ownerSegmentTable
	ownerPageTable
	ownerPage
	ownerAllocation
)

func (k ownerKind) String() string {
	switch k {
	case ownerSegmentTable:
		return "segment table"
	case ownerPageTable:
		return "page table"
	case ownerPage:
		return "page"
	case ownerAllocation:
		return "allocation"
	default:
		return "free"
	}
}

// frameInfo is the per-frame bookkeeping: occupancy, LFU access count, and
// the identity of the content the frame holds.
type frameInfo struct {
	inUse       bool
	accessCount uint64
	owner       ownerKind
	segment     int
	page        int
	allocBase   int
}

// An allocation is one contiguous run of frames handed out by Malloc.
type allocation struct {
	base      int
	frames    []int
	sizeWords int
}

// A Tracer observes the state transitions of a Manager. All methods are
// invoked synchronously from the operation that caused the transition.
type Tracer interface {
	// TraceEviction is called when a frame's content is archived to a disk
	// block to make the frame available.
	TraceEviction(frame, block int, owner string)

	// TraceFaultResolution is called when archived content is restored
	// into a frame.
	TraceFaultResolution(kind string, segment, page, frame int)

	// TraceAllocation is called after each malloc, free, or realloc.
	TraceAllocation(op string, base, sizeWords int, ok bool)
}

// A Manager is one independent virtual memory simulation instance. It is not
// safe for concurrent use; a single driving actor must serialize all
// operations.
type Manager struct {
	name string

	memory *PhysicalMemory
	disk   *Disk

	wordsPerFrame   int
	frameCount      int
	blockCount      int
	pagesPerSegment int
	segmentCount    int

	offsetBits uint
	pageBits   uint

	reservedFrames int

	frames      []frameInfo
	blockInUse  []bool
	allocations map[int]*allocation

	tracer Tracer
}

// A Builder configures and creates Managers. The defaults match the
// reference configuration: 512-word frames, 1024 frames, 1024 blocks, 512
// pages per segment, 512 segments, a 9/9/9 virtual address split.
type Builder struct {
	wordsPerFrame   int
	frameCount      int
	blockCount      int
	pagesPerSegment int
	segmentCount    int
}

// MakeBuilder returns a Builder with the reference configuration.
func MakeBuilder() Builder {
	return Builder{
		wordsPerFrame:   512,
		frameCount:      1024,
		blockCount:      1024,
		pagesPerSegment: 512,
		segmentCount:    512,
	}
}

// WithWordsPerFrame sets the words in each frame and disk block. The value
// must be a power of two.
func (b Builder) WithWordsPerFrame(n int) Builder {
	b.wordsPerFrame = n
	return b
}

// WithFrameCount sets the number of physical frames.
func (b Builder) WithFrameCount(n int) Builder {
	b.frameCount = n
	return b
}

// WithBlockCount sets the number of disk blocks.
func (b Builder) WithBlockCount(n int) Builder {
	b.blockCount = n
	return b
}

// WithPagesPerSegment sets the pages in each segment. The value must be a
// power of two.
func (b Builder) WithPagesPerSegment(n int) Builder {
	b.pagesPerSegment = n
	return b
}

// WithSegmentCount sets the number of segment table entries.
func (b Builder) WithSegmentCount(n int) Builder {
	b.segmentCount = n
	return b
}

// Build creates a Manager. The segment table claims the low frames; those
// frames are never evicted and never allocated.
func (b Builder) Build(name string) *Manager {
	mustBePowerOfTwo("words per frame", b.wordsPerFrame)
	mustBePowerOfTwo("pages per segment", b.pagesPerSegment)

	m := &Manager{
		name:            name,
		wordsPerFrame:   b.wordsPerFrame,
		frameCount:      b.frameCount,
		blockCount:      b.blockCount,
		pagesPerSegment: b.pagesPerSegment,
		segmentCount:    b.segmentCount,
		offsetBits:      uint(bits.TrailingZeros(uint(b.wordsPerFrame))),
		pageBits:        uint(bits.TrailingZeros(uint(b.pagesPerSegment))),
		memory:          NewPhysicalMemory(b.frameCount, b.wordsPerFrame),
		disk:            NewDisk(b.blockCount, b.wordsPerFrame),
		frames:          make([]frameInfo, b.frameCount),
		blockInUse:      make([]bool, b.blockCount),
		allocations:     make(map[int]*allocation),
	}

	segTableWords := 2 * b.segmentCount
	m.reservedFrames = (segTableWords + b.wordsPerFrame - 1) / b.wordsPerFrame

	if m.reservedFrames >= b.frameCount {
		log.Panicf("segment table needs %d of %d frames",
			m.reservedFrames, b.frameCount)
	}

	for f := 0; f < m.reservedFrames; f++ {
		m.frames[f] = frameInfo{inUse: true, owner: ownerSegmentTable}
	}

	return m
}

func mustBePowerOfTwo(what string, n int) {
	if n <= 0 || bits.OnesCount(uint(n)) != 1 {
		log.Panicf("%s must be a power of two, got %d", what, n)
	}
}

// Name returns the name of the manager.
func (m *Manager) Name() string {
	return m.name
}

// AttachTracer registers a tracer that observes evictions, fault
// resolutions, and allocator operations.
func (m *Manager) AttachTracer(t Tracer) {
	m.tracer = t
}

// WordsPerFrame returns the configured frame size in words.
func (m *Manager) WordsPerFrame() int {
	return m.wordsPerFrame
}

// PagesPerSegment returns the configured pages per segment.
func (m *Manager) PagesPerSegment() int {
	return m.pagesPerSegment
}

// Memory returns the physical memory of the simulation.
func (m *Manager) Memory() *PhysicalMemory {
	return m.memory
}

// DiskStore returns the simulated disk of the simulation.
func (m *Manager) DiskStore() *Disk {
	return m.disk
}

// A FrameStat is a read-only view of one frame's bookkeeping.
type FrameStat struct {
	Frame       int    `json:"frame"`
	InUse       bool   `json:"in_use"`
	AccessCount uint64 `json:"access_count"`
	Owner       string `json:"owner"`
	Segment     int    `json:"segment"`
	Page        int    `json:"page"`
}

// FrameStats returns a snapshot of the frame bookkeeping.
func (m *Manager) FrameStats() []FrameStat {
	stats := make([]FrameStat, m.frameCount)

	for f, info := range m.frames {
		stats[f] = FrameStat{
			Frame:       f,
			InUse:       info.inUse,
			AccessCount: info.accessCount,
			Owner:       info.owner.String(),
			Segment:     info.segment,
			Page:        info.page,
		}
	}

	return stats
}

// A SegmentStat is a read-only view of one installed segment.
type SegmentStat struct {
	Segment   int    `json:"segment"`
	Size      int    `json:"size"`
	PageTable string `json:"page_table"`
}

// SegmentStats returns a snapshot of the installed segments.
func (m *Manager) SegmentStats() []SegmentStat {
	var stats []SegmentStat

	for s := 0; s < m.segmentCount; s++ {
		entry, err := m.SegmentEntry(s)
		if err != nil {
			continue
		}

		stats = append(stats, SegmentStat{
			Segment:   s,
			Size:      entry.Size,
			PageTable: entry.PageTable.String(),
		})
	}

	return stats
}

// An AllocationStat is a read-only view of one live allocation.
type AllocationStat struct {
	Base      int   `json:"base"`
	SizeWords int   `json:"size_words"`
	Frames    []int `json:"frames"`
}

// AllocationStats returns a snapshot of the live allocations.
func (m *Manager) AllocationStats() []AllocationStat {
	var stats []AllocationStat

	for _, a := range m.allocations {
		frames := make([]int, len(a.frames))
		copy(frames, a.frames)

		stats = append(stats, AllocationStat{
			Base:      a.base,
			SizeWords: a.sizeWords,
			Frames:    frames,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Base < stats[j].Base
	})

	return stats
}
