package cmd

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kforcodeai/ADU-Analysis/permits"
)

var validViews = []string{
	"counts", "percentage", "top-counties", "value-share",
	"avg-value", "top-county-value", "avg-adu-value",
}

// Summary implements the "summary" subcommand: aggregate a permit CSV and
// print the derived views as terminal tables.
func Summary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	data := fs.String("data", "permits.csv", "permit CSV file")
	view := fs.String("view", "", "single view to print (default: all)")
	sample := fs.Bool("sample", false, "use the embedded sample dataset")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: adu-analysis summary [file] [flags]

Print permit aggregate views as tables.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nViews: %s\n\nExamples:\n  adu-analysis summary ./permits.csv\n  adu-analysis summary --sample --view top-counties\n", strings.Join(validViews, ", "))
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*data = fs.Arg(0)
	}
	if *view != "" && !contains(validViews, *view) {
		fmt.Fprintf(os.Stderr, "invalid --view %q; valid options: %s\n", *view, strings.Join(validViews, ", "))
		os.Exit(1)
	}

	records := loadInput(*data, *sample)
	agg := permits.Aggregate(records)

	all := *view == ""
	if all || *view == "counts" {
		printCounts(agg.CountsByYear)
	}
	if all || *view == "percentage" {
		printPercentage(agg.PercentageByYear)
	}
	if all || *view == "top-counties" {
		printTopCounties(agg.TopJurisdictionsByADUCount)
	}
	if all || *view == "value-share" {
		printValueShare(agg.ValueShareByYear)
	}
	if all || *view == "avg-value" {
		printAvgValue(agg.AverageValueByTypeAndYear)
	}
	if all || *view == "top-county-value" {
		printTopCountyValue(agg.TopJurisdictionsByAvgADUValue)
	}
	if all || *view == "avg-adu-value" {
		printAvgADUValue(agg.AverageADUValueByYear)
	}
}

func newTable(title string) table.Writer {
	fmt.Printf("\n%s\n", title)
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = true
	return tbl
}

func printCounts(counts []permits.YearCounts) {
	tbl := newTable("Permit counts by year")
	tbl.AppendHeader(table.Row{"Year", "ADU", "Non-ADU", "Potential Conversion", "Total"})
	for _, c := range counts {
		total := c.ADU + c.NonADU + c.PotentialADUConversion
		tbl.AppendRow(table.Row{c.Year, c.ADU, c.NonADU, c.PotentialADUConversion, total})
	}
	fmt.Println(tbl.Render())
}

func printPercentage(shares []permits.YearADUShare) {
	tbl := newTable("ADU share of permits by year")
	tbl.AppendHeader(table.Row{"Year", "ADU", "Total", "ADU %"})
	vals := make([]float64, len(shares))
	for i, s := range shares {
		vals[i] = float64(s.ADUPercentage)
		tbl.AppendRow(table.Row{s.Year, s.ADUCount, s.Total, fmt.Sprintf("%d%%", s.ADUPercentage)})
	}
	fmt.Println(tbl.Render())
	if len(vals) > 1 {
		fmt.Printf("Trend: %s\n", sparkline(vals))
	}
}

func printTopCounties(counties []permits.CountyADUCount) {
	tbl := newTable("Top jurisdictions by ADU permits")
	tbl.AppendHeader(table.Row{"County", "ADU", "All Permits"})
	for _, c := range counties {
		tbl.AppendRow(table.Row{c.County, humanize.Comma(int64(c.ADUCount)), humanize.Comma(int64(c.Total))})
	}
	fmt.Println(tbl.Render())
}

func printValueShare(shares []permits.YearValueShare) {
	tbl := newTable("ADU share of permit value by year")
	tbl.AppendHeader(table.Row{"Year", "ADU Value", "Total Value", "ADU %"})
	for _, s := range shares {
		tbl.AppendRow(table.Row{
			s.Year,
			"$" + humanize.Commaf(s.ADUJobValue),
			"$" + humanize.Commaf(s.TotalJobValue),
			fmt.Sprintf("%d%%", s.ADUJobValuePercentage),
		})
	}
	fmt.Println(tbl.Render())
}

func printAvgValue(avgs []permits.YearTypeAverages) {
	tbl := newTable("Average permit value by type and year")
	tbl.AppendHeader(table.Row{"Year", "ADU", "Non-ADU", "Potential Conversion"})
	for _, a := range avgs {
		tbl.AppendRow(table.Row{a.Year, dollars(a.ADU), dollars(a.NonADU), dollars(a.PotentialADUConversion)})
	}
	fmt.Println(tbl.Render())
}

func printTopCountyValue(counties []permits.CountyAvgValue) {
	tbl := newTable("Top jurisdictions by average ADU value")
	tbl.AppendHeader(table.Row{"County", "Avg Value ($k)", "Permits"})
	for _, c := range counties {
		tbl.AppendRow(table.Row{c.County, humanize.Comma(int64(c.AvgValue)), c.Count})
	}
	fmt.Println(tbl.Render())
}

func printAvgADUValue(avgs []permits.YearAvgADUValue) {
	tbl := newTable("Average ADU value by year")
	tbl.AppendHeader(table.Row{"Year", "Avg Value ($k)", "Permits"})
	vals := make([]float64, len(avgs))
	for i, a := range avgs {
		vals[i] = float64(a.AvgADUValue)
		tbl.AppendRow(table.Row{a.Year, humanize.Comma(int64(a.AvgADUValue)), a.Count})
	}
	fmt.Println(tbl.Render())
	if len(vals) > 1 {
		fmt.Printf("Trend: %s\n", sparkline(vals))
	}
}

func dollars(v int) string {
	if v == 0 {
		return "- -"
	}
	return "$" + humanize.Comma(int64(v))
}

// sparkline renders values as a row of block characters scaled to the
// min/max of the series.
func sparkline(values []float64) string {
	blocks := []rune("▁▂▃▄▅▆▇█")
	n := len(blocks)

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return ""
	}

	spread := max - min
	var sb strings.Builder
	for _, v := range values {
		idx := n / 2
		if spread > 0 {
			idx = int((v - min) / spread * float64(n-1))
			if idx >= n {
				idx = n - 1
			}
		}
		sb.WriteRune(blocks[idx])
	}
	return sb.String()
}

// formatCompact abbreviates large values for chart axis labels.
func formatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 0, 64) + "k"
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}
