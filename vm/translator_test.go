package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Translator", func() {

	var m *Manager

	BeforeEach(func() {
		m = MakeBuilder().Build("VMM")
	})

	It("should translate a resident page", func() {
		Expect(m.InstallSegment(0, 1024, Resident(5))).To(Succeed())
		Expect(m.InstallPage(0, 0, Resident(10))).To(Succeed())

		pa, err := m.Translate(37)

		Expect(err).ToNot(HaveOccurred())
		Expect(pa).To(Equal(10*512 + 37))

		stats := m.FrameStats()
		Expect(stats[10].Owner).To(Equal("page"))
		Expect(stats[10].Segment).To(Equal(0))
		Expect(stats[10].Page).To(Equal(0))
		Expect(stats[10].AccessCount).To(Equal(uint64(1)))
		Expect(stats[5].AccessCount).To(Equal(uint64(1)))
	})

	It("should fault on a segment outside the table range", func() {
		before := m.FrameStats()

		pa, err := m.Translate(600 << 18)

		Expect(pa).To(Equal(0))
		fault, ok := err.(*Fault)
		Expect(ok).To(BeTrue())
		Expect(fault.Kind).To(Equal(FaultSegment))
		Expect(m.FrameStats()).To(Equal(before))
	})

	It("should fault on an offset beyond the segment size", func() {
		Expect(m.InstallSegment(0, 1024, Resident(5))).To(Succeed())
		Expect(m.InstallPage(0, 0, Resident(10))).To(Succeed())

		_, err := m.Translate(2 * 512)

		fault, ok := err.(*Fault)
		Expect(ok).To(BeTrue())
		Expect(fault.Kind).To(Equal(FaultBounds))
	})

	It("should resolve a page fault once and then hit", func() {
		Expect(m.InstallSegment(0, 1024, Resident(5))).To(Succeed())
		Expect(m.InstallPage(0, 0, Resident(10))).To(Succeed())
		Expect(m.InstallPage(0, 1, Archived(3))).To(Succeed())

		va := 1*512 + 7

		pa, err := m.Translate(va)
		Expect(err).ToNot(HaveOccurred())

		// Lowest free frame after the two reserved segment-table frames.
		Expect(pa).To(Equal(2*512 + 7))

		again, err := m.Translate(va)
		Expect(err).ToNot(HaveOccurred())
		Expect(again).To(Equal(pa))

		loc, err := m.PageEntry(0, 1)
		Expect(err).ToNot(HaveOccurred())
		Expect(loc).To(Equal(Resident(2)))
	})

	It("should resolve a page-table fault before walking the table", func() {
		Expect(m.InstallSegment(1, 1024, Archived(4))).To(Succeed())
		Expect(m.InstallPage(1, 0, Resident(12))).To(Succeed())

		va := 1<<18 + 3

		pa, err := m.Translate(va)

		Expect(err).ToNot(HaveOccurred())
		Expect(pa).To(Equal(12*512 + 3))

		entry, err := m.SegmentEntry(1)
		Expect(err).ToNot(HaveOccurred())
		Expect(entry.PageTable).To(Equal(Resident(2)))
	})

	It("should report missing backing content as an integrity error", func() {
		Expect(m.InstallSegment(0, 1024, Resident(5))).To(Succeed())

		// A page entry pointing at a block that was never given content.
		m.Memory().WriteWord(5, 0, -7)

		_, err := m.Translate(0)

		integrity, ok := err.(*IntegrityError)
		Expect(ok).To(BeTrue())
		Expect(integrity.Block).To(Equal(7))
	})

	It("should split addresses by the configured field widths", func() {
		s, p, w := m.splitAddress(3<<18 + 2<<9 + 17)

		Expect(s).To(Equal(3))
		Expect(p).To(Equal(2))
		Expect(w).To(Equal(17))
	})
})
