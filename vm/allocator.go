package vm

import "log"

// Malloc reserves a contiguous run of frames covering sizeWords words and
// returns the base physical address of the run. When no free run is long
// enough, the allocator evicts the least-frequently-used window of frames
// to create one. Failure is reported as *AllocError: Fragmentation when the
// free frames would suffice in aggregate, OutOfMemory when they would not.
func (m *Manager) Malloc(sizeWords int) (int, error) {
	if sizeWords <= 0 {
		log.Panicf("allocation size must be positive, got %d", sizeWords)
	}

	framesNeeded := (sizeWords + m.wordsPerFrame - 1) / m.wordsPerFrame

	start, found := m.findFreeRun(framesNeeded)
	if !found {
		var err error
		start, err = m.evictForRun(framesNeeded)
		if err != nil {
			m.traceAlloc("malloc", 0, sizeWords, false)
			return 0, err
		}
	}

	a := &allocation{
		base:      start * m.wordsPerFrame,
		sizeWords: sizeWords,
	}

	for f := start; f < start+framesNeeded; f++ {
		m.frames[f] = frameInfo{
			inUse: true, owner: ownerAllocation, allocBase: a.base,
		}
		a.frames = append(a.frames, f)
	}

	m.allocations[a.base] = a

	m.traceAlloc("malloc", a.base, sizeWords, true)

	return a.base, nil
}

// Free releases the allocation whose base address is given. An address with
// no active allocation is an InvalidAddress error and changes nothing.
func (m *Manager) Free(base int) error {
	a, ok := m.allocations[base]
	if !ok {
		m.traceAlloc("free", base, 0, false)
		return &AllocError{Kind: ErrInvalidAddress, Base: base}
	}

	for _, f := range a.frames {
		m.frames[f] = frameInfo{}
	}

	delete(m.allocations, base)

	m.traceAlloc("free", base, a.sizeWords, true)

	return nil
}

// Realloc resizes an allocation. A request that fits the already-held run
// keeps the base and releases any frames beyond the new need. A larger
// request allocates a new run, copies the lesser of the two sizes, and
// frees the old run; if the new run cannot be obtained, the old allocation
// stays untouched.
func (m *Manager) Realloc(base, newSizeWords int) (int, error) {
	if newSizeWords <= 0 {
		log.Panicf("allocation size must be positive, got %d", newSizeWords)
	}

	a, ok := m.allocations[base]
	if !ok {
		m.traceAlloc("realloc", base, newSizeWords, false)
		return 0, &AllocError{Kind: ErrInvalidAddress, Base: base}
	}

	framesNeeded := (newSizeWords + m.wordsPerFrame - 1) / m.wordsPerFrame

	if framesNeeded <= len(a.frames) {
		for _, f := range a.frames[framesNeeded:] {
			m.frames[f] = frameInfo{}
		}
		a.frames = a.frames[:framesNeeded]
		a.sizeWords = newSizeWords

		m.traceAlloc("realloc", base, newSizeWords, true)

		return base, nil
	}

	newBase, err := m.Malloc(newSizeWords)
	if err != nil {
		m.traceAlloc("realloc", base, newSizeWords, false)
		return 0, err
	}

	copyWords := a.sizeWords
	if newSizeWords < copyWords {
		copyWords = newSizeWords
	}
	m.copyWords(base, newBase, copyWords)

	if err := m.Free(base); err != nil {
		panic(err)
	}

	m.traceAlloc("realloc", newBase, newSizeWords, true)

	return newBase, nil
}

// copyWords moves words between two allocated regions through the physical
// word accessors.
func (m *Manager) copyWords(srcBase, dstBase, n int) {
	for i := 0; i < n; i++ {
		src := srcBase + i
		dst := dstBase + i
		word := m.memory.ReadWord(src/m.wordsPerFrame, src%m.wordsPerFrame)
		m.memory.WriteWord(dst/m.wordsPerFrame, dst%m.wordsPerFrame, word)
	}
}

// findFreeRun scans for the first run of n consecutive free frames.
func (m *Manager) findFreeRun(n int) (start int, found bool) {
	runStart := -1

	for f := m.reservedFrames; f < m.frameCount; f++ {
		if m.frames[f].inUse {
			runStart = -1
			continue
		}

		if runStart < 0 {
			runStart = f
		}

		if f-runStart+1 == n {
			return runStart, true
		}
	}

	return 0, false
}

// evictForRun creates a run of n frames by eviction. It slides a window of
// n frames across the pool; windows touching pinned frames (segment table,
// allocations) are disqualified. Among the rest it evicts the window with
// the smallest aggregate access count, lowest start on ties. With no
// qualifying window the request is unsatisfiable: Fragmentation if the
// aggregate free frames would cover it, OutOfMemory otherwise.
func (m *Manager) evictForRun(n int) (int, error) {
	bestStart := -1
	var bestScore uint64

	for start := m.reservedFrames; start+n <= m.frameCount; start++ {
		score, ok := m.windowScore(start, n)
		if !ok {
			continue
		}

		if bestStart < 0 || score < bestScore {
			bestStart = start
			bestScore = score
		}
	}

	if bestStart < 0 {
		return 0, m.allocFailure(n)
	}

	evictions := 0
	for f := bestStart; f < bestStart+n; f++ {
		if m.frames[f].inUse {
			evictions++
		}
	}

	// The window is only usable if the disk can take every eviction it
	// needs; checking up front keeps the pool untouched on failure.
	if m.freeBlockCount() < evictions {
		return 0, m.allocFailure(n)
	}

	for f := bestStart; f < bestStart+n; f++ {
		if !m.frames[f].inUse {
			continue
		}

		if err := m.evictFrame(f); err != nil {
			return 0, &AllocError{
				Kind: ErrOutOfMemory, SizeWords: n * m.wordsPerFrame,
			}
		}
	}

	return bestStart, nil
}

// windowScore sums the access counts of the in-use frames of a window. The
// window qualifies only if every in-use frame in it is evictable.
func (m *Manager) windowScore(start, n int) (score uint64, ok bool) {
	for f := start; f < start+n; f++ {
		info := m.frames[f]

		if !info.inUse {
			continue
		}

		if info.owner != ownerPage && info.owner != ownerPageTable {
			return 0, false
		}

		score += info.accessCount
	}

	return score, true
}

func (m *Manager) freeFrameCount() int {
	count := 0

	for f := m.reservedFrames; f < m.frameCount; f++ {
		if !m.frames[f].inUse {
			count++
		}
	}

	return count
}

func (m *Manager) freeBlockCount() int {
	count := 0

	for b := 1; b < m.blockCount; b++ {
		if !m.blockInUse[b] {
			count++
		}
	}

	return count
}

// allocFailure classifies an unsatisfiable request: Fragmentation when the
// free frames would suffice in aggregate, OutOfMemory when they would not.
func (m *Manager) allocFailure(n int) *AllocError {
	kind := ErrOutOfMemory
	if m.freeFrameCount() >= n {
		kind = ErrFragmentation
	}

	return &AllocError{Kind: kind, SizeWords: n * m.wordsPerFrame}
}

func (m *Manager) traceAlloc(op string, base, sizeWords int, ok bool) {
	if m.tracer != nil {
		m.tracer.TraceAllocation(op, base, sizeWords, ok)
	}
}
