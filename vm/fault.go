package vm

import "fmt"

// A FaultKind classifies the recoverable translation faults.
type FaultKind int

// The translation fault kinds.
const (
	// FaultSegment marks a segment index outside the table or an
	// uninitialized segment entry.
	FaultSegment FaultKind = iota

	// FaultBounds marks an offset beyond the declared segment size.
	FaultBounds

	// FaultPageTable marks a page table that is archived on disk.
	FaultPageTable

	// FaultPage marks a page that is archived on disk.
	FaultPage
)

func (k FaultKind) String() string {
	switch k {
	case FaultSegment:
		return "segment"
	case FaultBounds:
		return "bounds"
	case FaultPageTable:
		return "page table"
	case FaultPage:
		return "page"
	default:
		return "unknown"
	}
}

// A Fault is a recoverable translation failure. Translation callers report
// it as a -1 result; it never aborts a batch.
type Fault struct {
	Kind    FaultKind
	Segment int
	Page    int
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault, segment %d page %d",
		f.Kind, f.Segment, f.Page)
}

// An AllocErrorKind classifies allocator failures.
type AllocErrorKind int

// The allocator failure kinds.
const (
	// ErrFragmentation means enough free frames exist in aggregate, but no
	// contiguous run of the required length can be formed even after
	// maximal eviction.
	ErrFragmentation AllocErrorKind = iota

	// ErrOutOfMemory means the aggregate free frames do not cover the
	// request.
	ErrOutOfMemory

	// ErrInvalidAddress means free or realloc named an address with no
	// active allocation.
	ErrInvalidAddress
)

func (k AllocErrorKind) String() string {
	switch k {
	case ErrFragmentation:
		return "fragmentation"
	case ErrOutOfMemory:
		return "out of memory"
	case ErrInvalidAddress:
		return "invalid address"
	default:
		return "unknown"
	}
}

// An AllocError is a failed allocator operation. The allocator state is
// unchanged when one is returned.
type AllocError struct {
	Kind      AllocErrorKind
	SizeWords int
	Base      int
}

func (e *AllocError) Error() string {
	switch e.Kind {
	case ErrInvalidAddress:
		return fmt.Sprintf("%s: no allocation at %d", e.Kind, e.Base)
	default:
		return fmt.Sprintf("%s: cannot allocate %d words", e.Kind, e.SizeWords)
	}
}

// An IntegrityError reports a non-resident table entry whose disk block was
// never given content. The simulation input promises backing content for
// every archived entry, so this is an initialization-data error that aborts
// the run after being reported once.
type IntegrityError struct {
	Block   int
	Segment int
	Page    int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"no backing content on block %d for segment %d page %d",
		e.Block, e.Segment, e.Page)
}
