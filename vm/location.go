package vm

import "fmt"

// A LocationKind tells whether a table or a page currently lives in a
// physical frame, on a disk block, or nowhere at all.
type LocationKind int

// The three residency states of a table or page.
const (
	LocationUnset LocationKind = iota
	LocationResident
	LocationArchived
)

// A Location identifies where a page table or a page payload currently
// lives. It replaces the signed-word encoding of the table words (positive =
// frame, negative = block, zero = unset) with an explicit tagged value. The
// signed encoding survives only where table words are read from or written
// to storage.
type Location struct {
	kind  LocationKind
	index int
}

// Resident returns a Location that points to a physical frame.
func Resident(frame int) Location {
	return Location{kind: LocationResident, index: frame}
}

// Archived returns a Location that points to a disk block. Block 0 cannot
// be encoded as a table word and is therefore rejected.
func Archived(block int) Location {
	if block <= 0 {
		panic(fmt.Sprintf("block %d cannot hold archived content", block))
	}

	return Location{kind: LocationArchived, index: block}
}

// Kind returns the residency state of the location.
func (l Location) Kind() LocationKind {
	return l.kind
}

// IsResident returns true if the location points to a frame.
func (l Location) IsResident() bool {
	return l.kind == LocationResident
}

// IsArchived returns true if the location points to a disk block.
func (l Location) IsArchived() bool {
	return l.kind == LocationArchived
}

// Frame returns the frame index of a resident location.
func (l Location) Frame() int {
	if l.kind != LocationResident {
		panic("location is not resident")
	}

	return l.index
}

// Block returns the block index of an archived location.
func (l Location) Block() int {
	if l.kind != LocationArchived {
		panic("location is not archived")
	}

	return l.index
}

func (l Location) String() string {
	switch l.kind {
	case LocationResident:
		return fmt.Sprintf("frame %d", l.index)
	case LocationArchived:
		return fmt.Sprintf("block %d", l.index)
	default:
		return "unset"
	}
}

// word encodes the location as a signed table word.
func (l Location) word() int64 {
	switch l.kind {
	case LocationResident:
		return int64(l.index)
	case LocationArchived:
		return -int64(l.index)
	default:
		return 0
	}
}

// locationFromWord decodes a signed table word.
func locationFromWord(w int64) Location {
	switch {
	case w > 0:
		return Location{kind: LocationResident, index: int(w)}
	case w < 0:
		return Location{kind: LocationArchived, index: int(-w)}
	default:
		return Location{}
	}
}
