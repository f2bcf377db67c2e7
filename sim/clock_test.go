package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Clock", func() {
	It("should halt at the iteration cap", func() {
		c := NewClock(2)

		c.Advance()
		Expect(c.Running()).To(BeTrue())
		Expect(c.Now()).To(Equal(1))

		c.Advance()
		Expect(c.Running()).To(BeFalse())
		Expect(c.Reason()).To(Equal(HaltIterationCap))
		Expect(c.Now()).To(Equal(2))
	})

	It("should keep the first halt reason", func() {
		c := NewClock(1)

		Expect(c.Halt(HaltCompleted)).To(BeTrue())
		c.Advance()

		Expect(c.Halt(HaltNoProgress)).To(BeFalse())
		Expect(c.Reason()).To(Equal(HaltCompleted))
		Expect(c.Now()).To(Equal(1))
	})

	It("should not run without iterations", func() {
		c := NewClock(0)

		Expect(c.Running()).To(BeFalse())
		Expect(c.Reason()).To(Equal(HaltIterationCap))
	})
})
