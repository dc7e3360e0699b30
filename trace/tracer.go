// Package trace records the state transitions of a virtual memory
// simulation into a database: one table each for translations, evictions,
// fault resolutions, and allocator operations.
package trace

import (
	"github.com/sarchlab/vmsim/datarecording"
)

// translationEntry represents one translated address in the database.
type translationEntry struct {
	Seq   int    `sim_data:"unique"`
	VAddr int    `sim_data:"index"`
	PAddr int    `sim_data:"index"`
	Fault string `sim_data:"index"`
}

// evictionEntry represents one archived frame in the database.
type evictionEntry struct {
	Frame int `sim_data:"index"`
	Block int
	Owner string
}

// resolutionEntry represents one restored table or page in the database.
type resolutionEntry struct {
	Kind    string `sim_data:"index"`
	Segment int
	Page    int
	Frame   int
}

// allocationEntry represents one allocator operation in the database.
type allocationEntry struct {
	Op        string `sim_data:"index"`
	Base      int
	SizeWords int
	OK        bool
}

// A DBTracer records simulation events through a DataRecorder. It
// implements vm.Tracer and the batch package's TranslationTracer.
type DBTracer struct {
	recorder datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer and its tables.
func NewDBTracer(recorder datarecording.DataRecorder) *DBTracer {
	recorder.CreateTable("translations", translationEntry{})
	recorder.CreateTable("evictions", evictionEntry{})
	recorder.CreateTable("resolutions", resolutionEntry{})
	recorder.CreateTable("allocations", allocationEntry{})

	return &DBTracer{recorder: recorder}
}

// TraceTranslation records one completed address translation.
func (t *DBTracer) TraceTranslation(seq, vAddr, pAddr int, fault string) {
	t.recorder.InsertData("translations", translationEntry{
		Seq:   seq,
		VAddr: vAddr,
		PAddr: pAddr,
		Fault: fault,
	})
}

// TraceEviction records one frame archival.
func (t *DBTracer) TraceEviction(frame, block int, owner string) {
	t.recorder.InsertData("evictions", evictionEntry{
		Frame: frame,
		Block: block,
		Owner: owner,
	})
}

// TraceFaultResolution records one restored table or page.
func (t *DBTracer) TraceFaultResolution(kind string, segment, page, frame int) {
	t.recorder.InsertData("resolutions", resolutionEntry{
		Kind:    kind,
		Segment: segment,
		Page:    page,
		Frame:   frame,
	})
}

// TraceAllocation records one allocator operation.
func (t *DBTracer) TraceAllocation(op string, base, sizeWords int, ok bool) {
	t.recorder.InsertData("allocations", allocationEntry{
		Op:        op,
		Base:      base,
		SizeWords: sizeWords,
		OK:        ok,
	})
}
