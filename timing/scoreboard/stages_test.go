package scoreboard_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/scoreboard/insts"
	"github.com/sarchlab/scoreboard/timing/latency"
	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

var _ = Describe("Stage transitions", func() {
	var sb *scoreboard.Scoreboard

	BeforeEach(func() {
		sb = scoreboard.New()
	})

	Describe("A single load", func() {
		BeforeEach(func() {
			load(sb, "LD F6, 34(R2)")
			Expect(sb.StartSimulation()).To(Succeed())
		})

		It("should issue, read, complete and write in cycles 1 to 4", func() {
			Expect(sb.Issue(0)).To(BeTrue())

			u := unitNamed(sb, "Integer")
			Expect(u.Busy).To(BeTrue())
			Expect(u.Op).To(Equal(insts.OpLD))
			Expect(u.Fi).To(Equal("F6"))
			Expect(u.Fj).To(Equal("R2"))
			Expect(u.Fk).To(BeEmpty())
			Expect(u.Qj).To(BeEmpty())
			Expect(u.Rj).To(BeTrue())
			Expect(u.Rk).To(BeTrue())
			Expect(u.CyclesRemaining).To(Equal(uint64(1)))
			Expect(sb.Snapshot().Registers.Owner("F6")).To(Equal("Integer"))

			Expect(sb.AdvanceCycle().Success).To(BeTrue())
			Expect(sb.ReadOperands(0)).To(BeTrue())
			u = unitNamed(sb, "Integer")
			Expect(u.Rj).To(BeFalse())
			Expect(u.Rk).To(BeFalse())
			Expect(u.CyclesRemaining).To(Equal(uint64(1)))

			Expect(sb.AdvanceCycle().Success).To(BeTrue())
			Expect(unitNamed(sb, "Integer").CyclesRemaining).To(BeZero())
			Expect(sb.CompleteExecution(0)).To(BeTrue())

			Expect(sb.AdvanceCycle().Success).To(BeTrue())
			Expect(sb.WriteResult(0)).To(BeTrue())

			Expect(statusOf(sb, 0)).To(Equal(scoreboard.Status{1, 2, 3, 4}))
			u = unitNamed(sb, "Integer")
			Expect(u.Busy).To(BeFalse())
			Expect(u.Fi).To(BeEmpty())
			Expect(u.Rj).To(BeTrue())
			Expect(u.Inst).To(Equal(-1))
			Expect(sb.Snapshot().Registers.Claimed("F6")).To(BeFalse())
			Expect(sb.Done()).To(BeTrue())
		})

		It("should not read operands in the issue cycle", func() {
			Expect(sb.Issue(0)).To(BeTrue())
			Expect(sb.ReadOperands(0)).To(BeFalse())
			Expect(statusOf(sb, 0).Reached(scoreboard.StageReadOperands)).To(BeFalse())
		})

		It("should not issue twice", func() {
			Expect(sb.Issue(0)).To(BeTrue())
			Expect(sb.Issue(0)).To(BeFalse())
		})

		It("should not complete execution in the read cycle", func() {
			Expect(sb.Issue(0)).To(BeTrue())
			Expect(sb.AdvanceCycle().Success).To(BeTrue())
			Expect(sb.ReadOperands(0)).To(BeTrue())
			Expect(sb.CompleteExecution(0)).To(BeFalse())
		})

		It("should not count down latency before operands are read", func() {
			Expect(sb.Issue(0)).To(BeTrue())
			Expect(sb.AdvanceCycle().Success).To(BeTrue())
			Expect(unitNamed(sb, "Integer").CyclesRemaining).To(Equal(uint64(1)))
		})

		It("should panic on an index that does not exist", func() {
			Expect(func() { sb.Issue(5) }).To(PanicWith(BeAssignableToTypeOf(&scoreboard.ContractError{})))
		})
	})

	Describe("AdvanceCycle", func() {
		It("should fail while actions are pending", func() {
			load(sb, "LD F6, 34(R2)")
			Expect(sb.StartSimulation()).To(Succeed())

			result := sb.AdvanceCycle()
			Expect(result.Success).To(BeFalse())
			Expect(result.Message).To(ContainSubstring("1 pending actions"))
			Expect(sb.Cycle()).To(Equal(uint64(1)))
		})

		It("should fail before the simulation starts", func() {
			Expect(sb.AdvanceCycle().Success).To(BeFalse())
		})

		It("should report the new cycle", func() {
			load(sb, "LD F6, 34(R2)")
			Expect(sb.StartSimulation()).To(Succeed())
			Expect(sb.Issue(0)).To(BeTrue())

			result := sb.AdvanceCycle()
			Expect(result.Success).To(BeTrue())
			Expect(result.Message).To(Equal("Advanced to cycle 2"))
		})

		It("should decrement only units that have read operands", func() {
			load(sb, "MULTD F0, F2, F4", "DIVD F10, F0, F6")
			Expect(sb.StartSimulation()).To(Succeed())
			advanceTo(sb, 3)

			Expect(statusOf(sb, 0).Cycle(scoreboard.StageReadOperands)).To(Equal(uint64(2)))
			Expect(unitNamed(sb, "FP Multiplier").CyclesRemaining).To(Equal(uint64(9)))
			Expect(unitNamed(sb, "FP Divider").CyclesRemaining).To(Equal(uint64(40)))
		})

		It("should hold the countdown at zero while a write waits", func() {
			load(sb, classicProgram...)
			Expect(sb.StartSimulation()).To(Succeed())
			advanceTo(sb, 18)

			adder := unitNamed(sb, "FP Adder")
			Expect(adder.Busy).To(BeTrue())
			Expect(adder.CyclesRemaining).To(BeZero())

			advance(sb)
			Expect(unitNamed(sb, "FP Adder").CyclesRemaining).To(BeZero())
		})
	})

	Describe("WAW hazard", func() {
		It("should refuse to issue into a claimed destination", func() {
			load(sb, "MULTD F0, F2, F4", "DIVD F0, F6, F8")
			Expect(sb.StartSimulation()).To(Succeed())
			Expect(sb.Issue(0)).To(BeTrue())

			verdict := sb.Validator().CanIssue(1)
			Expect(verdict.Valid).To(BeFalse())
			Expect(verdict.Hazard).To(Equal(scoreboard.HazardWAW))
			Expect(verdict.Message).To(ContainSubstring("F0"))
			Expect(verdict.Message).To(ContainSubstring("WAW hazard"))
			Expect(sb.Issue(1)).To(BeFalse())
		})

		It("should issue the second writer the cycle after the first writes", func() {
			load(sb, "MULTD F0, F2, F4", "DIVD F0, F6, F8")
			Expect(sb.StartSimulation()).To(Succeed())
			advanceTo(sb, 15)

			Expect(statusOf(sb, 0)).To(Equal(scoreboard.Status{1, 2, 12, 13}))
			Expect(statusOf(sb, 1).Cycle(scoreboard.StageIssue)).To(Equal(uint64(14)))
		})
	})

	Describe("RAW hazard", func() {
		BeforeEach(func() {
			load(sb, "LD F2, 45(R3)", "MULTD F0, F2, F4")
			Expect(sb.StartSimulation()).To(Succeed())
			advanceTo(sb, 3)
		})

		It("should record the producer in Qj", func() {
			u := unitNamed(sb, "FP Multiplier")
			Expect(u.Qj).To(Equal("Integer"))
			Expect(u.Rj).To(BeFalse())
			Expect(u.Qk).To(BeEmpty())
			Expect(u.Rk).To(BeTrue())
			Expect(sb.ReadOperands(1)).To(BeFalse())
		})

		It("should release the consumer when the producer writes", func() {
			advanceTo(sb, 4)
			Expect(sb.WriteResult(0)).To(BeTrue())

			u := unitNamed(sb, "FP Multiplier")
			Expect(u.Qj).To(BeEmpty())
			Expect(u.Rj).To(BeTrue())

			// The release is visible to the validator at once, but the read
			// is only scheduled from the next cycle.
			Expect(sb.Validator().CanReadOperands(1).Valid).To(BeTrue())
			Expect(sb.ReadOperands(1)).To(BeFalse())

			Expect(sb.AdvanceCycle().Success).To(BeTrue())
			Expect(sb.ReadOperands(1)).To(BeTrue())
			Expect(statusOf(sb, 1).Cycle(scoreboard.StageReadOperands)).To(Equal(uint64(5)))
		})
	})

	Describe("Structural hazard", func() {
		It("should wait for the unit to be freed", func() {
			load(sb, "LD F6, 34(R2)", "LD F2, 45(R3)")
			Expect(sb.StartSimulation()).To(Succeed())
			advanceTo(sb, 2)

			Expect(sb.PendingActions().Has(scoreboard.Action{Stage: scoreboard.StageIssue, Index: 1})).To(BeFalse())
			Expect(sb.Issue(1)).To(BeFalse())

			advanceTo(sb, 6)
			Expect(statusOf(sb, 1).Cycle(scoreboard.StageIssue)).To(Equal(uint64(5)))
		})

		It("should issue back to back with a second unit", func() {
			sb = scoreboard.New(scoreboard.WithUnits(insts.UnitInteger, 2))
			load(sb, "LD F6, 34(R2)", "LD F2, 45(R3)")
			Expect(sb.StartSimulation()).To(Succeed())
			advanceTo(sb, 3)

			Expect(statusOf(sb, 1).Cycle(scoreboard.StageIssue)).To(Equal(uint64(2)))
			Expect(unitNamed(sb, "Integer 2").Fi).To(Equal("F2"))
		})
	})

	Describe("In-order single issue", func() {
		It("should issue at most one instruction per cycle", func() {
			load(sb, "LD F6, 34(R2)", "MULTD F0, F2, F4")
			Expect(sb.StartSimulation()).To(Succeed())
			Expect(sb.Issue(0)).To(BeTrue())
			Expect(sb.Issue(1)).To(BeFalse())

			Expect(sb.AdvanceCycle().Success).To(BeTrue())
			Expect(sb.Issue(1)).To(BeTrue())
		})

		It("should not issue past an unissued instruction", func() {
			load(sb, "LD F6, 34(R2)", "MULTD F0, F2, F4")
			Expect(sb.StartSimulation()).To(Succeed())
			Expect(sb.Issue(1)).To(BeFalse())
		})
	})

	Describe("Custom latencies", func() {
		It("should use the latency table at issue", func() {
			config := latency.DefaultTimingConfig()
			config.FPMultiplyLatency = 3
			sb = scoreboard.New(scoreboard.WithLatencyTable(latency.NewTableWithConfig(config)))
			load(sb, "MULTD F0, F2, F4")
			Expect(sb.StartSimulation()).To(Succeed())
			advanceTo(sb, 7)

			Expect(statusOf(sb, 0)).To(Equal(scoreboard.Status{1, 2, 5, 6}))
		})
	})

	Describe("The classic example", func() {
		BeforeEach(func() {
			load(sb, classicProgram...)
			Expect(sb.StartSimulation()).To(Succeed())
		})

		It("should reproduce the textbook timing", func() {
			for i := 0; i < 100 && !sb.Done(); i++ {
				advance(sb)
			}
			Expect(sb.Done()).To(BeTrue())

			expected := []scoreboard.Status{
				{1, 2, 3, 4},
				{5, 6, 7, 8},
				{6, 9, 19, 20},
				{7, 9, 11, 12},
				{8, 21, 61, 62},
				{13, 14, 16, 22},
			}
			for i, want := range expected {
				Expect(statusOf(sb, i)).To(Equal(want), "instruction %d", i+1)
			}

			stats := sb.Stats()
			Expect(stats.Issued).To(Equal(uint64(6)))
			Expect(stats.Completed).To(Equal(uint64(6)))
			Expect(stats.StructuralStalls).To(BeNumerically(">", 0))
			Expect(stats.RAWStalls).To(BeNumerically(">", 0))
			Expect(stats.WARStalls).To(BeNumerically(">", 0))
		})

		It("should hold ADDD's write back until DIVD reads F6", func() {
			advanceTo(sb, 17)

			verdict := sb.Validator().CanWriteResult(5)
			Expect(verdict.Valid).To(BeFalse())
			Expect(verdict.Hazard).To(Equal(scoreboard.HazardWAR))
			Expect(verdict.Message).To(ContainSubstring("Register F6 is needed as operand 2 by instruction 5 (DIVD)"))
			Expect(sb.WriteResult(5)).To(BeFalse())
		})
	})
})
