package scoreboard_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

var _ = Describe("Perform", func() {
	var sb *scoreboard.Scoreboard

	BeforeEach(func() {
		sb = scoreboard.New()
		load(sb, classicProgram...)
		Expect(sb.StartSimulation()).To(Succeed())
	})

	issue := func(i int) scoreboard.Action {
		return scoreboard.Action{Stage: scoreboard.StageIssue, Index: i}
	}

	It("should apply a legal action and describe it", func() {
		outcome, err := sb.Perform(issue(0))
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Success).To(BeTrue())
		Expect(outcome.Message).To(Equal("Successfully issued LD F6, 34(R2) in cycle 1."))
		Expect(statusOf(sb, 0).Cycle(scoreboard.StageIssue)).To(Equal(uint64(1)))
	})

	It("should explain a hazard with the validator message", func() {
		outcome, err := sb.Perform(issue(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Success).To(BeFalse())
		Expect(outcome.Message).To(ContainSubstring("Cannot issue out of order"))
	})

	It("should report a stage that was already reached", func() {
		_, err := sb.Perform(issue(0))
		Expect(err).NotTo(HaveOccurred())

		outcome, err := sb.Perform(issue(0))
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Message).To(Equal("This operation was already completed in cycle 1."))
	})

	It("should refuse an action the validator allows but the cycle has not scheduled", func() {
		advanceTo(sb, 4)
		Expect(sb.WriteResult(0)).To(BeTrue())

		outcome, err := sb.Perform(issue(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(outcome.Success).To(BeFalse())
		Expect(outcome.Message).To(Equal("This action cannot be performed in the current cycle 4."))
	})

	It("should return an error for an unknown instruction", func() {
		_, err := sb.Perform(issue(42))
		Expect(err).To(MatchError(scoreboard.ErrIndexOutOfRange))
	})
})
