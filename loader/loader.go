// Package loader holds the format adapters around the virtual memory core:
// parsing of initialization records, the virtual address stream, and the
// result sink. The formats follow the original batch tooling: one line of
// segment triples, one line of page triples, and a whitespace-separated
// address list.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/sarchlab/vmsim/vm"
)

// LoadInit reads the two-line initialization format and installs the
// records into the manager. Line 1 holds `segment size location` triples,
// line 2 holds `segment page location` triples. A malformed or conflicting
// record is reported and skipped; an unreadable stream is an error.
func LoadInit(r io.Reader, m *vm.Manager) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	segmentLine, err := readLine(scanner)
	if err != nil {
		return fmt.Errorf("segment table records: %w", err)
	}

	pageLine, err := readLine(scanner)
	if err != nil {
		return fmt.Errorf("page table records: %w", err)
	}

	loadSegmentRecords(segmentLine, m)
	loadPageRecords(pageLine, m)

	return nil
}

func readLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}

	return scanner.Text(), nil
}

func loadSegmentRecords(line string, m *vm.Manager) {
	sizes := make(map[int]int)

	forEachTriple(line, "segment", func(segment, size, locWord int) {
		if prev, seen := sizes[segment]; seen && prev != size {
			log.Printf("skipping segment %d: size %d conflicts with %d",
				segment, size, prev)
			return
		}

		loc, err := locationFromRecord(locWord)
		if err != nil {
			log.Printf("skipping segment %d: %s", segment, err)
			return
		}

		if err := m.InstallSegment(segment, size, loc); err != nil {
			log.Printf("skipping segment %d: %s", segment, err)
			return
		}

		sizes[segment] = size
	})
}

func loadPageRecords(line string, m *vm.Manager) {
	forEachTriple(line, "page", func(segment, page, locWord int) {
		loc, err := locationFromRecord(locWord)
		if err != nil {
			log.Printf("skipping segment %d page %d: %s", segment, page, err)
			return
		}

		if err := m.InstallPage(segment, page, loc); err != nil {
			log.Printf("skipping segment %d page %d: %s", segment, page, err)
		}
	})
}

// forEachTriple parses whitespace-separated integer triples. A trailing
// partial triple or an unparsable field drops that record only.
func forEachTriple(line, what string, fn func(a, b, c int)) {
	fields := strings.Fields(line)

	for i := 0; i+3 <= len(fields); i += 3 {
		a, errA := strconv.Atoi(fields[i])
		b, errB := strconv.Atoi(fields[i+1])
		c, errC := strconv.Atoi(fields[i+2])

		if errA != nil || errB != nil || errC != nil {
			log.Printf("skipping malformed %s record %q",
				what, strings.Join(fields[i:i+3], " "))
			continue
		}

		fn(a, b, c)
	}

	if len(fields)%3 != 0 {
		log.Printf("ignoring trailing fields in %s records", what)
	}
}

// locationFromRecord maps the signed location field of an initialization
// record to a Location: positive = resident frame, negative = archived
// block, zero is not a valid initial location.
func locationFromRecord(word int) (vm.Location, error) {
	switch {
	case word > 0:
		return vm.Resident(word), nil
	case word < 0:
		return vm.Archived(-word), nil
	default:
		return vm.Location{}, fmt.Errorf("location field is zero")
	}
}

// An AddressSource streams the virtual addresses of a batch in order.
type AddressSource interface {
	// Next returns the next address. The second return value is false when
	// the stream ends.
	Next() (int, bool)

	// Err reports a read failure after Next has returned false.
	Err() error
}

// NewAddressSource streams whitespace-separated non-negative integers from
// a reader. A token that is not a non-negative integer stops the stream
// with an error.
func NewAddressSource(r io.Reader) AddressSource {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	return &scannerSource{scanner: scanner}
}

type scannerSource struct {
	scanner *bufio.Scanner
	err     error
}

func (s *scannerSource) Next() (int, bool) {
	if s.err != nil {
		return 0, false
	}

	if !s.scanner.Scan() {
		s.err = s.scanner.Err()
		return 0, false
	}

	va, err := strconv.Atoi(s.scanner.Text())
	if err != nil || va < 0 {
		s.err = fmt.Errorf("invalid virtual address %q", s.scanner.Text())
		return 0, false
	}

	return va, true
}

func (s *scannerSource) Err() error {
	return s.err
}

// A ResultSink receives one translation result per input address, in input
// order.
type ResultSink interface {
	// WriteResult emits one result line: the physical address, or -1 for a
	// fault.
	WriteResult(pa int) error

	// Flush forces buffered results out.
	Flush() error
}

// NewResultSink writes one result per line to a writer.
func NewResultSink(w io.Writer) ResultSink {
	return &lineSink{w: bufio.NewWriter(w)}
}

type lineSink struct {
	w *bufio.Writer
}

func (s *lineSink) WriteResult(pa int) error {
	_, err := fmt.Fprintf(s.w, "%d\n", pa)
	return err
}

func (s *lineSink) Flush() error {
	return s.w.Flush()
}
