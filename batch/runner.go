// Package batch drives a virtual memory simulation with an ordered address
// stream. The Runner is the single actor of the system: it feeds every
// address through the manager, writes exactly one result line per address,
// and stops only on an initialization-data integrity error.
package batch

import (
	"fmt"
	"log"

	"github.com/sarchlab/vmsim/loader"
	"github.com/sarchlab/vmsim/vm"
)

// TranslationTracer observes each completed translation. It extends
// vm.Tracer with the per-address outcome that only the batch layer sees.
type TranslationTracer interface {
	TraceTranslation(seq, vAddr, pAddr int, fault string)
}

// Stats summarizes one batch run.
type Stats struct {
	Translated int
	Faulted    int
	FaultKinds map[string]int
}

// A Runner connects an address source, a manager, and a result sink.
type Runner struct {
	manager *vm.Manager
	source  loader.AddressSource
	sink    loader.ResultSink
	tracer  TranslationTracer
}

// A Builder creates Runners.
type Builder struct {
	manager *vm.Manager
	source  loader.AddressSource
	sink    loader.ResultSink
	tracer  TranslationTracer
}

// MakeBuilder returns a Builder without defaults; manager, source, and sink
// are all required.
func MakeBuilder() Builder {
	return Builder{}
}

// WithManager sets the manager to drive.
func (b Builder) WithManager(m *vm.Manager) Builder {
	b.manager = m
	return b
}

// WithSource sets the address stream.
func (b Builder) WithSource(s loader.AddressSource) Builder {
	b.source = s
	return b
}

// WithSink sets the result sink.
func (b Builder) WithSink(s loader.ResultSink) Builder {
	b.sink = s
	return b
}

// WithTracer sets an optional per-translation tracer.
func (b Builder) WithTracer(t TranslationTracer) Builder {
	b.tracer = t
	return b
}

// Build creates the Runner.
func (b Builder) Build() *Runner {
	if b.manager == nil || b.source == nil || b.sink == nil {
		log.Panic("runner needs a manager, a source, and a sink")
	}

	return &Runner{
		manager: b.manager,
		source:  b.source,
		sink:    b.sink,
		tracer:  b.tracer,
	}
}

// Run processes the whole address stream. Every recoverable fault becomes a
// -1 result line; an integrity error is reported once and aborts the run.
func (r *Runner) Run() (Stats, error) {
	stats := Stats{FaultKinds: make(map[string]int)}
	seq := 0

	for {
		va, ok := r.source.Next()
		if !ok {
			break
		}

		pa, err := r.manager.Translate(va)
		if err != nil {
			if integrity, fatal := err.(*vm.IntegrityError); fatal {
				return stats, fmt.Errorf("address %d: %w", va, integrity)
			}

			r.recordFault(&stats, err)
			pa = -1
		} else {
			stats.Translated++
		}

		if r.tracer != nil {
			r.tracer.TraceTranslation(seq, va, pa, faultName(err))
		}

		if err := r.sink.WriteResult(pa); err != nil {
			return stats, fmt.Errorf("writing result: %w", err)
		}

		seq++
	}

	if err := r.source.Err(); err != nil {
		return stats, fmt.Errorf("reading addresses: %w", err)
	}

	if err := r.sink.Flush(); err != nil {
		return stats, fmt.Errorf("flushing results: %w", err)
	}

	return stats, nil
}

func (r *Runner) recordFault(stats *Stats, err error) {
	stats.Faulted++

	if fault, ok := err.(*vm.Fault); ok {
		stats.FaultKinds[fault.Kind.String()]++
	}
}

func faultName(err error) string {
	if err == nil {
		return ""
	}

	if fault, ok := err.(*vm.Fault); ok {
		return fault.Kind.String()
	}

	return "error"
}
