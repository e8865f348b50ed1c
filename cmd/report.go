package cmd

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/kforcodeai/ADU-Analysis/permits"
)

const (
	pageWidth  = 11 * vg.Inch
	pageHeight = 8.5 * vg.Inch
	pdfMargin  = 0.75 * vg.Inch
)

var (
	chartBlue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	chartOrange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	chartGreen  = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// Report implements the "report" subcommand: render every aggregate view as
// a chart page and merge the pages into a single PDF.
func Report(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	data := fs.String("data", "permits.csv", "permit CSV file")
	out := fs.String("o", "adu-report.pdf", "output PDF file path")
	sample := fs.Bool("sample", false, "use the embedded sample dataset")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: adu-analysis report [file] [-o report.pdf]\n\nWrite all aggregate views as chart pages in one PDF.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*data = fs.Arg(0)
	}

	records := loadInput(*data, *sample)
	agg := permits.Aggregate(records)

	if err := writeReport(*out, agg); err != nil {
		fmt.Fprintf(os.Stderr, "error writing report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

// writeReport renders each view to its own single-page PDF in a scratch
// directory, then merges the pages into path with pdfcpu.
func writeReport(path string, agg permits.Aggregates) error {
	tmpDir, err := os.MkdirTemp("", "adu-report-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	pages := []struct {
		name  string
		build func() (*plot.Plot, error)
	}{
		{"counts", func() (*plot.Plot, error) { return countsChart(agg.CountsByYear) }},
		{"percentage", func() (*plot.Plot, error) { return percentageChart(agg.PercentageByYear) }},
		{"top-counties", func() (*plot.Plot, error) { return topCountiesChart(agg.TopJurisdictionsByADUCount) }},
		{"value-share", func() (*plot.Plot, error) { return valueShareChart(agg.ValueShareByYear) }},
		{"avg-value", func() (*plot.Plot, error) { return avgValueChart(agg.AverageValueByTypeAndYear) }},
		{"top-county-value", func() (*plot.Plot, error) { return topCountyValueChart(agg.TopJurisdictionsByAvgADUValue) }},
		{"avg-adu-value", func() (*plot.Plot, error) { return avgADUValueChart(agg.AverageADUValueByYear) }},
	}

	var files []string
	for _, page := range pages {
		p, err := page.build()
		if err != nil {
			return fmt.Errorf("%s chart: %w", page.name, err)
		}
		out := filepath.Join(tmpDir, page.name+".pdf")
		if err := writePlotPDF(p, out); err != nil {
			return fmt.Errorf("%s page: %w", page.name, err)
		}
		files = append(files, out)
	}

	return api.MergeCreateFile(files, path, false, nil)
}

// writePlotPDF draws a plot onto a letter-landscape vgpdf canvas with page
// margins and writes it to path.
func writePlotPDF(p *plot.Plot, path string) error {
	c := vgpdf.New(pageWidth, pageHeight)

	dc := draw.New(c)
	area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
	p.Draw(area)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newChart(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.BackgroundColor = color.White
	p.Add(plotter.NewGrid())
	return p
}

func countsChart(counts []permits.YearCounts) (*plot.Plot, error) {
	p := newChart("Permit Counts by Year")
	p.Y.Label.Text = "Permits"

	years := make([]string, len(counts))
	adu := make(plotter.Values, len(counts))
	nonADU := make(plotter.Values, len(counts))
	potential := make(plotter.Values, len(counts))
	for i, c := range counts {
		years[i] = c.Year
		adu[i] = float64(c.ADU)
		nonADU[i] = float64(c.NonADU)
		potential[i] = float64(c.PotentialADUConversion)
	}

	if err := addGroupedBars(p, years, []barGroup{
		{"ADU", adu, chartBlue},
		{"Non-ADU", nonADU, chartOrange},
		{"Potential Conversion", potential, chartGreen},
	}); err != nil {
		return nil, err
	}
	return p, nil
}

func percentageChart(shares []permits.YearADUShare) (*plot.Plot, error) {
	p := newChart("ADU Share of Permits by Year")
	p.Y.Label.Text = "ADU %"
	p.Y.Min = 0
	p.Y.Max = 100

	years := make([]string, len(shares))
	pts := make(plotter.XYs, len(shares))
	for i, s := range shares {
		years[i] = s.Year
		pts[i] = plotter.XY{X: float64(i), Y: float64(s.ADUPercentage)}
	}
	if err := addLineScatter(p, pts, chartBlue); err != nil {
		return nil, err
	}
	setYearTicks(p, years)
	return p, nil
}

func topCountiesChart(counties []permits.CountyADUCount) (*plot.Plot, error) {
	p := newChart("Top Jurisdictions by ADU Permits")
	p.Y.Label.Text = "ADU Permits"

	names := make([]string, len(counties))
	vals := make(plotter.Values, len(counties))
	for i, c := range counties {
		names[i] = c.County
		vals[i] = float64(c.ADUCount)
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(24))
	if err != nil {
		return nil, err
	}
	bars.Color = chartBlue
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

func valueShareChart(shares []permits.YearValueShare) (*plot.Plot, error) {
	p := newChart("Permit Value by Year")
	p.Y.Label.Text = "Job Value"
	p.Y.Tick.Marker = compactTicks{}

	years := make([]string, len(shares))
	total := make(plotter.XYs, len(shares))
	adu := make(plotter.XYs, len(shares))
	for i, s := range shares {
		years[i] = s.Year
		total[i] = plotter.XY{X: float64(i), Y: s.TotalJobValue}
		adu[i] = plotter.XY{X: float64(i), Y: s.ADUJobValue}
	}

	totalLine, err := plotter.NewLine(total)
	if err != nil {
		return nil, err
	}
	totalLine.Color = chartOrange
	totalLine.Width = vg.Points(2)

	aduLine, err := plotter.NewLine(adu)
	if err != nil {
		return nil, err
	}
	aduLine.Color = chartBlue
	aduLine.Width = vg.Points(2)

	p.Add(totalLine, aduLine)
	p.Legend.Add("All permits", totalLine)
	p.Legend.Add("ADU", aduLine)
	p.Legend.Top = true
	setYearTicks(p, years)
	return p, nil
}

func avgValueChart(avgs []permits.YearTypeAverages) (*plot.Plot, error) {
	p := newChart("Average Permit Value by Type and Year")
	p.Y.Label.Text = "Average Job Value"
	p.Y.Tick.Marker = compactTicks{}

	years := make([]string, len(avgs))
	adu := make(plotter.Values, len(avgs))
	nonADU := make(plotter.Values, len(avgs))
	potential := make(plotter.Values, len(avgs))
	for i, a := range avgs {
		years[i] = a.Year
		adu[i] = float64(a.ADU)
		nonADU[i] = float64(a.NonADU)
		potential[i] = float64(a.PotentialADUConversion)
	}

	if err := addGroupedBars(p, years, []barGroup{
		{"ADU", adu, chartBlue},
		{"Non-ADU", nonADU, chartOrange},
		{"Potential Conversion", potential, chartGreen},
	}); err != nil {
		return nil, err
	}
	return p, nil
}

func topCountyValueChart(counties []permits.CountyAvgValue) (*plot.Plot, error) {
	p := newChart("Top Jurisdictions by Average ADU Value")
	p.Y.Label.Text = "Average Value ($k)"

	names := make([]string, len(counties))
	vals := make(plotter.Values, len(counties))
	for i, c := range counties {
		names[i] = c.County
		vals[i] = float64(c.AvgValue)
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(24))
	if err != nil {
		return nil, err
	}
	bars.Color = chartGreen
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

func avgADUValueChart(avgs []permits.YearAvgADUValue) (*plot.Plot, error) {
	p := newChart("Average ADU Value by Year")
	p.Y.Label.Text = "Average Value ($k)"

	years := make([]string, len(avgs))
	pts := make(plotter.XYs, len(avgs))
	for i, a := range avgs {
		years[i] = a.Year
		pts[i] = plotter.XY{X: float64(i), Y: float64(a.AvgADUValue)}
	}
	if err := addLineScatter(p, pts, chartBlue); err != nil {
		return nil, err
	}
	setYearTicks(p, years)
	return p, nil
}

type barGroup struct {
	name   string
	values plotter.Values
	color  color.Color
}

// addGroupedBars places one bar chart per group side by side on a shared
// nominal X axis.
func addGroupedBars(p *plot.Plot, labels []string, groups []barGroup) error {
	w := vg.Points(14)
	offset := -w * vg.Length(len(groups)-1) / 2
	for _, g := range groups {
		bars, err := plotter.NewBarChart(g.values, w)
		if err != nil {
			return err
		}
		bars.Color = g.color
		bars.LineStyle.Width = 0
		bars.Offset = offset
		offset += w
		p.Add(bars)
		p.Legend.Add(g.name, bars)
	}
	p.Legend.Top = true
	p.NominalX(labels...)
	return nil
}

func addLineScatter(p *plot.Plot, pts plotter.XYs, clr color.Color) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = clr
	line.Width = vg.Points(2)

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.Color = clr
	scatter.Radius = vg.Points(3)
	scatter.Shape = draw.CircleGlyph{}

	p.Add(line, scatter)
	return nil
}

// setYearTicks labels integer X positions with year strings.
func setYearTicks(p *plot.Plot, years []string) {
	p.X.Tick.Marker = yearTicks(years)
	p.X.Min = -0.5
	p.X.Max = float64(len(years)) - 0.5
}

type yearTicks []string

func (yt yearTicks) Ticks(min, max float64) []plot.Tick {
	ticks := make([]plot.Tick, 0, len(yt))
	for i, label := range yt {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: label})
	}
	return ticks
}

// compactTicks abbreviates the default tick labels (1.2M, 450k).
type compactTicks struct{}

func (compactTicks) Ticks(min, max float64) []plot.Tick {
	t := plot.DefaultTicks{}
	ticks := t.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatCompact(ticks[i].Value)
		}
	}
	return ticks
}
