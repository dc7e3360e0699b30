package vm

import "log"

// A PhysicalMemory is a fixed pool of frames, each holding a fixed number of
// integer words. Out-of-range indices are programming errors, not simulated
// faults, so the accessors panic on them.
type PhysicalMemory struct {
	frameCount    int
	wordsPerFrame int
	words         []int64
}

// NewPhysicalMemory creates a zero-filled physical memory.
func NewPhysicalMemory(frameCount, wordsPerFrame int) *PhysicalMemory {
	return &PhysicalMemory{
		frameCount:    frameCount,
		wordsPerFrame: wordsPerFrame,
		words:         make([]int64, frameCount*wordsPerFrame),
	}
}

// FrameCount returns the number of frames.
func (m *PhysicalMemory) FrameCount() int {
	return m.frameCount
}

// WordsPerFrame returns the number of words in each frame.
func (m *PhysicalMemory) WordsPerFrame() int {
	return m.wordsPerFrame
}

// ReadWord returns one word of a frame.
func (m *PhysicalMemory) ReadWord(frame, offset int) int64 {
	m.mustBeInRange(frame, offset)
	return m.words[frame*m.wordsPerFrame+offset]
}

// WriteWord sets one word of a frame.
func (m *PhysicalMemory) WriteWord(frame, offset int, word int64) {
	m.mustBeInRange(frame, offset)
	m.words[frame*m.wordsPerFrame+offset] = word
}

// frameWords returns the backing slice of one frame.
func (m *PhysicalMemory) frameWords(frame int) []int64 {
	m.mustBeInRange(frame, 0)
	start := frame * m.wordsPerFrame
	return m.words[start : start+m.wordsPerFrame]
}

func (m *PhysicalMemory) mustBeInRange(frame, offset int) {
	if frame < 0 || frame >= m.frameCount {
		log.Panicf("frame %d out of range [0, %d)", frame, m.frameCount)
	}

	if offset < 0 || offset >= m.wordsPerFrame {
		log.Panicf("offset %d out of range [0, %d)", offset, m.wordsPerFrame)
	}
}

// A Disk is a fixed pool of blocks. A block holds exactly as many words as a
// frame, so frames and blocks exchange content with plain word copies.
type Disk struct {
	blockCount    int
	wordsPerBlock int
	words         []int64
}

// NewDisk creates a zero-filled disk.
func NewDisk(blockCount, wordsPerBlock int) *Disk {
	return &Disk{
		blockCount:    blockCount,
		wordsPerBlock: wordsPerBlock,
		words:         make([]int64, blockCount*wordsPerBlock),
	}
}

// BlockCount returns the number of blocks.
func (d *Disk) BlockCount() int {
	return d.blockCount
}

// ReadWord returns one word of a block.
func (d *Disk) ReadWord(block, offset int) int64 {
	d.mustBeInRange(block, offset)
	return d.words[block*d.wordsPerBlock+offset]
}

// WriteWord sets one word of a block.
func (d *Disk) WriteWord(block, offset int, word int64) {
	d.mustBeInRange(block, offset)
	d.words[block*d.wordsPerBlock+offset] = word
}

// blockWords returns the backing slice of one block.
func (d *Disk) blockWords(block int) []int64 {
	d.mustBeInRange(block, 0)
	start := block * d.wordsPerBlock
	return d.words[start : start+d.wordsPerBlock]
}

func (d *Disk) mustBeInRange(block, offset int) {
	if block < 0 || block >= d.blockCount {
		log.Panicf("block %d out of range [0, %d)", block, d.blockCount)
	}

	if offset < 0 || offset >= d.wordsPerBlock {
		log.Panicf("offset %d out of range [0, %d)", offset, d.wordsPerBlock)
	}
}
