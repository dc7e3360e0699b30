package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Table Manager", func() {

	var m *Manager

	BeforeEach(func() {
		m = MakeBuilder().
			WithWordsPerFrame(8).
			WithFrameCount(8).
			WithBlockCount(8).
			WithPagesPerSegment(8).
			WithSegmentCount(4).
			Build("VMM")
	})

	It("should read back an installed segment", func() {
		err := m.InstallSegment(1, 40, Resident(2))
		Expect(err).ToNot(HaveOccurred())

		entry, err := m.SegmentEntry(1)
		Expect(err).ToNot(HaveOccurred())
		Expect(entry.Size).To(Equal(40))
		Expect(entry.PageTable).To(Equal(Resident(2)))
	})

	It("should fault on a segment outside the table range", func() {
		_, err := m.SegmentEntry(4)

		fault, ok := err.(*Fault)
		Expect(ok).To(BeTrue())
		Expect(fault.Kind).To(Equal(FaultSegment))
	})

	It("should fault on an uninitialized segment", func() {
		_, err := m.SegmentEntry(2)

		fault, ok := err.(*Fault)
		Expect(ok).To(BeTrue())
		Expect(fault.Kind).To(Equal(FaultSegment))
	})

	It("should reject a segment record with an invalid size", func() {
		err := m.InstallSegment(1, 0, Resident(2))
		Expect(err).To(HaveOccurred())

		err = m.InstallSegment(1, 65, Resident(2))
		Expect(err).To(HaveOccurred())
	})

	It("should reject a page table archived on a block outside the disk", func() {
		err := m.InstallSegment(0, 40, Archived(2000))
		Expect(err).To(HaveOccurred())

		_, err = m.SegmentEntry(0)
		Expect(err).To(HaveOccurred())
	})

	It("should release the old page table when a record relocates it", func() {
		Expect(m.InstallSegment(0, 40, Resident(2))).To(Succeed())
		Expect(m.InstallSegment(0, 40, Resident(3))).To(Succeed())

		Expect(m.frames[2].inUse).To(BeFalse())
		Expect(m.frames[3].owner).To(Equal(ownerPageTable))

		entry, err := m.SegmentEntry(0)
		Expect(err).ToNot(HaveOccurred())
		Expect(entry.PageTable).To(Equal(Resident(3)))
	})

	It("should reject a page table frame that is already taken", func() {
		err := m.InstallSegment(0, 40, Resident(2))
		Expect(err).ToNot(HaveOccurred())

		err = m.InstallSegment(1, 40, Resident(2))
		Expect(err).To(HaveOccurred())
	})

	It("should read back an installed page", func() {
		Expect(m.InstallSegment(0, 40, Resident(2))).To(Succeed())
		Expect(m.InstallPage(0, 3, Resident(5))).To(Succeed())

		loc, err := m.PageEntry(0, 3)
		Expect(err).ToNot(HaveOccurred())
		Expect(loc).To(Equal(Resident(5)))
	})

	It("should signal a page-table fault when the table is archived", func() {
		Expect(m.InstallSegment(0, 40, Archived(3))).To(Succeed())

		_, err := m.PageEntry(0, 0)

		fault, ok := err.(*Fault)
		Expect(ok).To(BeTrue())
		Expect(fault.Kind).To(Equal(FaultPageTable))
	})

	It("should install pages of an archived table on its disk block", func() {
		Expect(m.InstallSegment(0, 40, Archived(3))).To(Succeed())
		Expect(m.InstallPage(0, 2, Resident(5))).To(Succeed())

		Expect(m.DiskStore().ReadWord(3, 2)).To(Equal(int64(5)))
	})

	It("should reject a page archived on a block outside the disk", func() {
		Expect(m.InstallSegment(0, 40, Resident(2))).To(Succeed())

		err := m.InstallPage(0, 1, Archived(2000))
		Expect(err).To(HaveOccurred())

		loc, err := m.PageEntry(0, 1)
		Expect(err).ToNot(HaveOccurred())
		Expect(loc).To(Equal(Location{}))
	})

	It("should release the old page frame when a record relocates it", func() {
		Expect(m.InstallSegment(0, 40, Resident(2))).To(Succeed())
		Expect(m.InstallPage(0, 1, Resident(4))).To(Succeed())
		Expect(m.InstallPage(0, 1, Resident(5))).To(Succeed())

		Expect(m.frames[4].inUse).To(BeFalse())
		Expect(m.frames[5].owner).To(Equal(ownerPage))
	})

	It("should release the old block when a page record moves into a frame", func() {
		Expect(m.InstallSegment(0, 40, Resident(2))).To(Succeed())
		Expect(m.InstallPage(0, 1, Archived(3))).To(Succeed())
		Expect(m.InstallPage(0, 1, Resident(5))).To(Succeed())

		Expect(m.blockInUse[3]).To(BeFalse())

		loc, err := m.PageEntry(0, 1)
		Expect(err).ToNot(HaveOccurred())
		Expect(loc).To(Equal(Resident(5)))
	})

	It("should reject a page for a segment that is not installed", func() {
		err := m.InstallPage(2, 0, Resident(5))

		Expect(err).To(HaveOccurred())
	})
})
