// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package emit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/livetrainmap/LiveTrainMap/timetable_generator/synth"
	"github.com/livetrainmap/LiveTrainMap/timetable_generator/util/time2"
)

const startTimesPerLine = 12

// WriteHeader renders the table as a C++ header for the display firmware:
// a TrainRoute subclass per route and a getAllRoutes() registry.
func (t *Table) WriteHeader(w io.Writer) error {
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "// Generated by ltm-generate from block statistics. DO NOT EDIT.\n")
	fmt.Fprintf(b, "// Version: %s, routes: %d, ~%d bytes\n", t.Version, len(t.Routes), t.Size())

	for _, r := range t.Routes {
		writeRouteClass(b, r)
	}

	b.WriteString("// === Global List of Routes ===\n")
	b.WriteString("inline const std::vector<const TrainRoute*> getAllRoutes() {\n")
	b.WriteString("\tstatic const std::vector<const TrainRoute*> routes = {\n")
	for _, class := range t.Registry() {
		fmt.Fprintf(b, "\t\tnew %s(),\n", class)
	}
	b.WriteString("\t};\n")
	b.WriteString("\treturn routes;\n")
	b.WriteString("}\n")

	return b.Flush()
}

func writeRouteClass(b *bufio.Writer, r *Route) {
	fmt.Fprintf(b, "\nclass %s : public TrainRoute {\n", r.Class)
	b.WriteString("  public:\n")
	b.WriteString("\tconst std::vector<TimetableEntry>& getEntries() const override {\n")
	b.WriteString("\t\treturn timetable;\n")
	b.WriteString("\t}\n\n")

	b.WriteString("\tCRGB getColor() const override {\n")
	fmt.Fprintf(b, "\t\treturn CRGB(%d, %d, %d);\n", r.Color.R, r.Color.G, r.Color.B)
	b.WriteString("\t}\n\n")

	b.WriteString("\tconst std::vector<uint32_t>& getStartTimes() const override {\n")
	b.WriteString("\t\tstatic const std::vector<uint32_t> startTimes = {")
	writeStartTimes(b, r.StartTimes)
	b.WriteString("};\n")
	b.WriteString("\t\treturn startTimes;\n")
	b.WriteString("\t}\n\n")

	b.WriteString("  private:\n")
	b.WriteString("\tstatic const inline std::vector<TimetableEntry> timetable = {")
	if len(r.StartTimes) > 0 {
		fmt.Fprintf(b, "  // First departure: %s", time2.Time(r.StartTimes[0]))
		if len(r.StartTimes) > 1 {
			fmt.Fprintf(b, ", interval ~%ds", r.StartTimes[1]-r.StartTimes[0])
		}
	}
	b.WriteString("\n")

	if r.synthesized != nil {
		for _, step := range r.synthesized.Trace {
			writeStep(b, step)
		}
	} else {
		for _, row := range r.Timetable[:len(r.Timetable)-1] {
			fmt.Fprintf(b, "\t\t{ %d, %d },\n", row.Offset, row.Block)
		}
	}

	terminal := r.Timetable[len(r.Timetable)-1]
	fmt.Fprintf(b, "\t\t{ %d, %d }\n", terminal.Offset, terminal.Block)
	b.WriteString("\t};\n")
	b.WriteString("};\n")
}

func writeStartTimes(b *bufio.Writer, startTimes []int) {
	if len(startTimes) <= startTimesPerLine {
		fmt.Fprintf(b, " %s ", joinInts(startTimes))
		return
	}

	b.WriteString("\n")
	for i := 0; i < len(startTimes); i += startTimesPerLine {
		end := min(i+startTimesPerLine, len(startTimes))
		b.WriteString("\t\t\t")
		b.WriteString(joinInts(startTimes[i:end]))
		if end < len(startTimes) {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("\t\t")
}

// writeStep renders a single sweep decision. Dropped entries stay in the
// output as comments, so that the synthesized table can be reviewed by hand.
func writeStep(b *bufio.Writer, s synth.Step) {
	raw := int(s.Raw)
	switch s.Action {
	case synth.Kept:
		fmt.Fprintf(b, "\t\t{ %d, %d },\n", raw, s.Block)
	case synth.Repaired:
		fmt.Fprintf(b, "\t\t{ %d, %d }, // Was: %d\n", int(s.Time), s.Block, raw)
	case synth.Excluded:
		fmt.Fprintf(b, "\t\t//{ %d, %d }, Excluded block\n", raw, s.Block)
	case synth.Outlier:
		fmt.Fprintf(b, "\t\t//{ %d, %d }, Outlier\n", raw, s.Block)
	case synth.RepairFailed:
		fmt.Fprintf(b, "\t\t//{ %d, %d }, Failed to adjust: %d\n", raw, s.Block, int(s.Time))
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
