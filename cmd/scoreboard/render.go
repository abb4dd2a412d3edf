package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sarchlab/scoreboard/insts"
	"github.com/sarchlab/scoreboard/timing/core"
	"github.com/sarchlab/scoreboard/timing/latency"
	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func cycleCell(st scoreboard.Status, stage scoreboard.Stage) string {
	if !st.Reached(stage) {
		return "-"
	}
	return strconv.FormatUint(st.Cycle(stage), 10)
}

func boolCell(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func textCell(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderInstructionStatus(w io.Writer, snap scoreboard.Snapshot) {
	tw := newTable(w)
	header := []string{"#", "Instruction"}
	for _, stage := range scoreboard.Stages() {
		header = append(header, stage.String())
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for i, inst := range snap.Instructions {
		row := []string{strconv.Itoa(i + 1), inst.Instruction.String()}
		for _, stage := range scoreboard.Stages() {
			row = append(row, cycleCell(inst.Status, stage))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func renderFunctionalUnits(w io.Writer, snap scoreboard.Snapshot) {
	tw := newTable(w)
	fmt.Fprintln(tw, "Unit\tBusy\tOp\tFi\tFj\tFk\tQj\tQk\tRj\tRk\tCycles")
	for _, u := range snap.Units {
		if !u.Busy {
			fmt.Fprintf(tw, "%s\tNo\t-\t-\t-\t-\t-\t-\t-\t-\t-\n", u.Name)
			continue
		}
		fmt.Fprintf(tw, "%s\tYes\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			u.Name, u.Op, textCell(u.Fi), textCell(u.Fj), textCell(u.Fk),
			textCell(u.Qj), textCell(u.Qk), boolCell(u.Rj), boolCell(u.Rk),
			u.CyclesRemaining)
	}
	_ = tw.Flush()
}

func renderRegisters(w io.Writer, snap scoreboard.Snapshot) {
	tw := newTable(w)
	claimed := 0
	for _, reg := range insts.Registers() {
		if owner := snap.Registers.Owner(reg); owner != "" {
			if claimed == 0 {
				fmt.Fprintln(tw, "Register\tUnit")
			}
			fmt.Fprintf(tw, "%s\t%s\n", reg, owner)
			claimed++
		}
	}
	if claimed == 0 {
		fmt.Fprintln(tw, "No registers awaiting results.")
	}
	_ = tw.Flush()
}

func renderPending(w io.Writer, snap scoreboard.Snapshot) {
	if len(snap.Pending) == 0 {
		fmt.Fprintln(w, "Pending actions: none")
		return
	}
	names := make([]string, 0, len(snap.Pending))
	for _, a := range snap.Pending {
		names = append(names, fmt.Sprintf("%s %d", a.Stage.Token(), a.Index+1))
	}
	fmt.Fprintf(w, "Pending actions: %s\n", strings.Join(names, ", "))
}

func renderState(w io.Writer, snap scoreboard.Snapshot) {
	fmt.Fprintf(w, "Cycle %d\n\n", snap.Cycle)
	renderInstructionStatus(w, snap)
	fmt.Fprintln(w)
	renderFunctionalUnits(w, snap)
	fmt.Fprintln(w)
	renderRegisters(w, snap)
	fmt.Fprintln(w)
	renderPending(w, snap)
}

func renderStats(w io.Writer, stats core.Stats) {
	fmt.Fprintf(w, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(w, "Instructions Completed: %d\n", stats.Completed)
	fmt.Fprintf(w, "Stage Transitions: %d\n", stats.Actions)
	fmt.Fprintf(w, "\nStalls:\n")
	fmt.Fprintf(w, "  Structural: %d\n", stats.StructuralStalls)
	fmt.Fprintf(w, "  WAW:        %d\n", stats.WAWStalls)
	fmt.Fprintf(w, "  RAW:        %d\n", stats.RAWStalls)
	fmt.Fprintf(w, "  WAR:        %d\n", stats.WARStalls)
}

func renderCatalog(w io.Writer, table *latency.Table) {
	tw := newTable(w)
	fmt.Fprintln(tw, "Op\tUnit\tLatency")
	for _, op := range insts.AllOps() {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", op, op.Unit(), table.GetLatency(op))
	}
	_ = tw.Flush()
}
