package core_test

import (
	"strings"

	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/scoreboard/insts"
	"github.com/sarchlab/scoreboard/timing/core"
	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

var classicProgram = []string{
	"LD F6, 34(R2)",
	"LD F2, 45(R3)",
	"MULTD F0, F2, F4",
	"SUBD F8, F6, F2",
	"DIVD F10, F0, F6",
	"ADDD F6, F8, F2",
}

func newScoreboard(lines ...string) *scoreboard.Scoreboard {
	sb := scoreboard.New()
	decoder := insts.NewDecoder()
	for _, line := range lines {
		inst, err := decoder.Decode(line)
		Expect(err).NotTo(HaveOccurred())
		_, err = sb.AddInstruction(*inst)
		Expect(err).NotTo(HaveOccurred())
	}
	return sb
}

var _ = Describe("Core", func() {
	var (
		sb *scoreboard.Scoreboard
		c  *core.Core
	)

	BeforeEach(func() {
		sb = newScoreboard(classicProgram...)
		c = core.NewCore(sb)
	})

	It("should not tick before the simulation starts", func() {
		Expect(c.Halted()).To(BeTrue())
		Expect(c.Tick()).To(BeFalse())
		Expect(sb.Cycle()).To(BeZero())
	})

	It("should run the classic example to completion", func() {
		stats, err := c.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(sb.Done()).To(BeTrue())
		Expect(stats.Cycles).To(Equal(uint64(62)))
		Expect(stats.Actions).To(Equal(uint64(24)))
		Expect(stats.Completed).To(Equal(uint64(6)))
		Expect(c.Halted()).To(BeTrue())
	})

	It("should run a bounded number of cycles", func() {
		Expect(c.Start()).To(Succeed())
		Expect(c.RunCycles(5)).To(BeTrue())
		Expect(sb.Cycle()).To(Equal(uint64(6)))

		inst, _ := sb.Instruction(1)
		Expect(inst.Status.Cycle(scoreboard.StageIssue)).To(Equal(uint64(5)))
	})

	It("should stop at the cycle limit", func() {
		c = core.NewCore(sb, core.WithMaxCycles(10))
		_, err := c.Run()
		Expect(err).To(MatchError(core.ErrCycleLimit))
		Expect(sb.Cycle()).To(Equal(uint64(10)))
	})

	It("should fail to run an empty program", func() {
		c = core.NewCore(scoreboard.New())
		_, err := c.Run()
		Expect(err).To(MatchError(scoreboard.ErrNoInstructions))
	})

	It("should reset to edit mode", func() {
		_, err := c.Run()
		Expect(err).NotTo(HaveOccurred())

		c.Reset()
		Expect(sb.Started()).To(BeFalse())
		Expect(sb.Len()).To(Equal(len(classicProgram)))
		Expect(c.Stats().Actions).To(BeZero())
	})

	It("should log completion", func() {
		var lines []string
		logger := funcr.New(func(prefix, args string) {
			lines = append(lines, args)
		}, funcr.Options{Verbosity: 1})

		c = core.NewCore(sb, core.WithLogger(logger))
		_, err := c.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Join(lines, "\n")).To(ContainSubstring(`"msg"="program complete"`))
	})
})

var _ = Describe("Component", func() {
	It("should drive the core on an akita engine", func() {
		sb := newScoreboard(classicProgram...)
		c := core.NewCore(sb)

		now, err := core.RunOnEngine(c, 1*sim.GHz)
		Expect(err).NotTo(HaveOccurred())
		Expect(sb.Done()).To(BeTrue())
		Expect(sb.Cycle()).To(Equal(uint64(62)))
		Expect(float64(now)).To(BeNumerically(">", 0))
	})

	It("should expose the wrapped core", func() {
		engine := sim.NewSerialEngine()
		c := core.NewCore(newScoreboard("LD F6, 34(R2)"))
		comp := core.NewComponent("Scoreboard", engine, 1*sim.GHz, c)
		Expect(comp.Core()).To(BeIdenticalTo(c))
		Expect(comp.Name()).To(Equal("Scoreboard"))
	})
})
