package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kforcodeai/ADU-Analysis/permits"
)

// dashboard holds the currently served dataset. The aggregation pipeline is
// pure; this is the only place state lives, and reloads swap the whole
// bundle under the lock rather than mutating views in place.
type dashboard struct {
	mu      sync.RWMutex
	records []permits.PermitRecord
	agg     permits.Aggregates
}

func newDashboard(records []permits.PermitRecord) *dashboard {
	return &dashboard{records: records, agg: permits.Aggregate(records)}
}

func (d *dashboard) replace(records []permits.PermitRecord) {
	agg := permits.Aggregate(records)
	d.mu.Lock()
	d.records = records
	d.agg = agg
	d.mu.Unlock()
}

func (d *dashboard) snapshot() ([]permits.PermitRecord, permits.Aggregates) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.records, d.agg
}

// Web implements the "web" subcommand: serve an interactive dashboard of
// all aggregate views plus a JSON API.
func Web(args []string) {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	data := fs.String("data", "permits.csv", "permit CSV file")
	port := fs.String("port", "8080", "HTTP server port")
	sample := fs.Bool("sample", false, "use the embedded sample dataset")
	watch := fs.Bool("watch", false, "reload when the CSV file changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: adu-analysis web [file] [--port 8080] [--watch]\n\nStart an interactive permit dashboard.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*data = fs.Arg(0)
	}

	d := newDashboard(loadInput(*data, *sample))

	if *watch && !*sample {
		if err := d.watchFile(*data); err != nil {
			fmt.Fprintf(os.Stderr, "error starting watcher: %v\n", err)
			os.Exit(1)
		}
	}

	addr := ":" + *port
	fmt.Printf("serving on http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, d.routes()); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// watchFile reloads the dataset whenever the CSV is rewritten. Watching the
// directory rather than the file survives editors and jobs that replace the
// file instead of writing in place.
func (d *dashboard) watchFile(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				result, err := permits.LoadFile(target)
				if err != nil {
					fmt.Fprintf(os.Stderr, "reload error: %v\n", err)
					continue
				}
				d.replace(result.Records)
				fmt.Fprintf(os.Stderr, "reloaded %s: %d records (%d quarantined)\n", target, len(result.Records), result.Skipped)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "watcher error: %v\n", err)
			}
		}
	}()

	return watcher.Add(filepath.Dir(target))
}

func (d *dashboard) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.handleIndex)
	mux.HandleFunc("/api/aggregates", d.handleAggregates)
	mux.HandleFunc("/api/metadata", d.handleMetadata)
	return mux
}

func (d *dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	_, agg := d.snapshot()

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.PageTitle = "ADU Permit Dashboard"
	page.AddCharts(
		countsBar(agg.CountsByYear),
		percentageLine(agg.PercentageByYear),
		topCountiesBar(agg.TopJurisdictionsByADUCount),
		valueShareLine(agg.ValueShareByYear),
		avgValueBar(agg.AverageValueByTypeAndYear),
		topCountyValueBar(agg.TopJurisdictionsByAvgADUValue),
		avgADUValueLine(agg.AverageADUValueByYear),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		fmt.Fprintf(os.Stderr, "render error: %v\n", err)
	}
}

// handleAggregates returns the fixed-shape bundle of all seven views.
func (d *dashboard) handleAggregates(w http.ResponseWriter, r *http.Request) {
	_, agg := d.snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(agg)
}

type metadata struct {
	Years           []string `json:"years"`
	Counties        []string `json:"counties"`
	Classifications []string `json:"classifications"`
	RecordCount     int      `json:"recordCount"`
}

func (d *dashboard) handleMetadata(w http.ResponseWriter, r *http.Request) {
	records, agg := d.snapshot()

	countySet := make(map[string]bool)
	for _, rec := range records {
		countySet[rec.County] = true
	}
	counties := make([]string, 0, len(countySet))
	for c := range countySet {
		counties = append(counties, c)
	}
	sort.Strings(counties)

	years := make([]string, len(agg.CountsByYear))
	for i, c := range agg.CountsByYear {
		years[i] = c.Year
	}

	classes := make([]string, len(permits.Classifications))
	for i, c := range permits.Classifications {
		classes[i] = string(c)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metadata{
		Years:           years,
		Counties:        counties,
		Classifications: classes,
		RecordCount:     len(records),
	})
}

func chartBase(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: "620px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Bottom: "0"}),
	}
}

func countsBar(counts []permits.YearCounts) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(chartBase("Permit Counts by Year", "stacked by classification")...)

	years := make([]string, len(counts))
	adu := make([]opts.BarData, len(counts))
	nonADU := make([]opts.BarData, len(counts))
	potential := make([]opts.BarData, len(counts))
	for i, c := range counts {
		years[i] = c.Year
		adu[i] = opts.BarData{Value: c.ADU}
		nonADU[i] = opts.BarData{Value: c.NonADU}
		potential[i] = opts.BarData{Value: c.PotentialADUConversion}
	}

	bar.SetXAxis(years).
		AddSeries("ADU", adu, charts.WithBarChartOpts(opts.BarChart{Stack: "total"})).
		AddSeries("Non-ADU", nonADU, charts.WithBarChartOpts(opts.BarChart{Stack: "total"})).
		AddSeries("Potential Conversion", potential, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	return bar
}

func percentageLine(shares []permits.YearADUShare) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(chartBase("ADU Share of Permits", "percent of all permits per year")...)

	years := make([]string, len(shares))
	data := make([]opts.LineData, len(shares))
	for i, s := range shares {
		years[i] = s.Year
		data[i] = opts.LineData{Value: s.ADUPercentage}
	}

	line.SetXAxis(years).
		AddSeries("ADU %", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

func topCountiesBar(counties []permits.CountyADUCount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(chartBase("Top Jurisdictions by ADU Permits", "top 8 by ADU count")...)

	names := make([]string, len(counties))
	adu := make([]opts.BarData, len(counties))
	total := make([]opts.BarData, len(counties))
	for i, c := range counties {
		names[i] = c.County
		adu[i] = opts.BarData{Value: c.ADUCount}
		total[i] = opts.BarData{Value: c.Total}
	}

	bar.SetXAxis(names).
		AddSeries("ADU", adu).
		AddSeries("All permits", total)
	return bar
}

func valueShareLine(shares []permits.YearValueShare) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(chartBase("Permit Value by Year", "total vs. ADU job value")...)

	years := make([]string, len(shares))
	total := make([]opts.LineData, len(shares))
	adu := make([]opts.LineData, len(shares))
	for i, s := range shares {
		years[i] = s.Year
		total[i] = opts.LineData{Value: s.TotalJobValue}
		adu[i] = opts.LineData{Value: s.ADUJobValue}
	}

	line.SetXAxis(years).
		AddSeries("All permits", total).
		AddSeries("ADU", adu)
	return line
}

func avgValueBar(avgs []permits.YearTypeAverages) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(chartBase("Average Permit Value by Type", "raw dollars per year")...)

	years := make([]string, len(avgs))
	adu := make([]opts.BarData, len(avgs))
	nonADU := make([]opts.BarData, len(avgs))
	potential := make([]opts.BarData, len(avgs))
	for i, a := range avgs {
		years[i] = a.Year
		adu[i] = opts.BarData{Value: a.ADU}
		nonADU[i] = opts.BarData{Value: a.NonADU}
		potential[i] = opts.BarData{Value: a.PotentialADUConversion}
	}

	bar.SetXAxis(years).
		AddSeries("ADU", adu).
		AddSeries("Non-ADU", nonADU).
		AddSeries("Potential Conversion", potential)
	return bar
}

func topCountyValueBar(counties []permits.CountyAvgValue) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(chartBase("Top Jurisdictions by Average ADU Value", "thousands of dollars")...)

	names := make([]string, len(counties))
	vals := make([]opts.BarData, len(counties))
	for i, c := range counties {
		names[i] = c.County
		vals[i] = opts.BarData{Value: c.AvgValue}
	}

	bar.SetXAxis(names).AddSeries("Avg value ($k)", vals)
	return bar
}

func avgADUValueLine(avgs []permits.YearAvgADUValue) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(chartBase("Average ADU Value by Year", "thousands of dollars")...)

	years := make([]string, len(avgs))
	data := make([]opts.LineData, len(avgs))
	for i, a := range avgs {
		years[i] = a.Year
		data[i] = opts.LineData{Value: a.AvgADUValue}
	}

	line.SetXAxis(years).
		AddSeries("Avg value ($k)", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}
