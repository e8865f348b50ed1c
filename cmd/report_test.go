package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kforcodeai/ADU-Analysis/permits"
)

func TestWriteReport(t *testing.T) {
	agg := permits.Aggregate(permits.Sample())
	out := filepath.Join(t.TempDir(), "report.pdf")

	if err := writeReport(out, agg); err != nil {
		t.Fatalf("writeReport: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("report PDF is empty")
	}
}

func TestYearTicks(t *testing.T) {
	ticks := yearTicks{"2020", "2021", "2022"}.Ticks(0, 2)
	if len(ticks) != 3 {
		t.Fatalf("got %d ticks, want 3", len(ticks))
	}
	if ticks[1].Value != 1 || ticks[1].Label != "2021" {
		t.Errorf("middle tick = %+v", ticks[1])
	}
}
