package permits

import (
	"math"
	"sort"
	"strconv"
)

// topJurisdictions is how many counties the ranked views keep.
const topJurisdictions = 8

// YearCounts holds per-year permit counts broken out by classification.
// Every year present in the input carries all three keys, zero-filled.
type YearCounts struct {
	Year                   string `json:"year"`
	ADU                    int    `json:"ADU"`
	NonADU                 int    `json:"NON_ADU"`
	PotentialADUConversion int    `json:"POTENTIAL_ADU_CONVERSION"`
}

// YearADUShare holds the ADU share of permit counts for one year.
type YearADUShare struct {
	Year          string `json:"year"`
	ADUCount      int    `json:"aduCount"`
	Total         int    `json:"total"`
	ADUPercentage int    `json:"aduPercentage"`
}

// CountyADUCount holds per-county record totals and ADU-only counts.
type CountyADUCount struct {
	County   string `json:"county"`
	Total    int    `json:"total"`
	ADUCount int    `json:"aduCount"`
}

// YearValueShare holds the ADU share of permit job value for one year.
type YearValueShare struct {
	Year                  string  `json:"year"`
	TotalJobValue         float64 `json:"totalJobValue"`
	ADUJobValue           float64 `json:"aduJobValue"`
	ADUJobValuePercentage int     `json:"aduJobValuePercentage"`
}

// YearTypeAverages holds per-year mean job value per classification, in raw
// dollars rounded to the nearest integer. A classification with no valued
// records that year reports 0.
type YearTypeAverages struct {
	Year                   string `json:"year"`
	ADU                    int    `json:"ADU"`
	NonADU                 int    `json:"NON_ADU"`
	PotentialADUConversion int    `json:"POTENTIAL_ADU_CONVERSION"`
}

// CountyAvgValue holds a county's mean ADU job value in thousands of
// dollars plus the count of valued ADU records behind the mean.
type CountyAvgValue struct {
	County   string `json:"county"`
	AvgValue int    `json:"avgValue"`
	Count    int    `json:"count"`
}

// YearAvgADUValue holds a year's mean ADU job value in thousands of dollars
// plus the count of valued ADU records behind the mean.
type YearAvgADUValue struct {
	Year        string `json:"year"`
	AvgADUValue int    `json:"avgAduValue"`
	Count       int    `json:"count"`
}

// Aggregates bundles the seven derived views. Each view is an independent
// pass over the same input; only PercentageByYear depends on another view
// (CountsByYear). All year-keyed views are sorted ascending by year, so
// charts read left-to-right in time.
type Aggregates struct {
	CountsByYear                  []YearCounts       `json:"countsByYear"`
	PercentageByYear              []YearADUShare     `json:"percentageByYear"`
	TopJurisdictionsByADUCount    []CountyADUCount   `json:"topJurisdictionsByAduCount"`
	ValueShareByYear              []YearValueShare   `json:"valueShareByYear"`
	AverageValueByTypeAndYear     []YearTypeAverages `json:"averageValueByTypeAndYear"`
	TopJurisdictionsByAvgADUValue []CountyAvgValue   `json:"topJurisdictionsByAvgAduValue"`
	AverageADUValueByYear         []YearAvgADUValue  `json:"averageAduValueByYear"`
}

// Aggregate derives all seven views from records. It is a pure function:
// no I/O, no retained state, and calling it twice on the same input yields
// identical output. Records with an unrecognized classification are ignored
// entirely.
func Aggregate(records []PermitRecord) Aggregates {
	counts := countsByYear(records)
	return Aggregates{
		CountsByYear:                  counts,
		PercentageByYear:              percentageByYear(counts),
		TopJurisdictionsByADUCount:    topJurisdictionsByADUCount(records),
		ValueShareByYear:              valueShareByYear(records),
		AverageValueByTypeAndYear:     averageValueByTypeAndYear(records),
		TopJurisdictionsByAvgADUValue: topJurisdictionsByAvgADUValue(records),
		AverageADUValueByYear:         averageADUValueByYear(records),
	}
}

// sortedYears returns the distinct years among valid records, ascending.
func sortedYears(records []PermitRecord) []int {
	seen := make(map[int]bool)
	for _, r := range records {
		if r.Classification.Valid() {
			seen[r.Year] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func yearKey(year int) string {
	return strconv.Itoa(year)
}

// roundPct computes round(100 * num / den). A zero denominator yields 0 by
// policy, not as an error fallback.
func roundPct(num, den float64) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(100 * num / den))
}

// roundMean computes round(sum / count), with 0 for an empty group.
func roundMean(sum float64, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(sum / float64(count)))
}

// roundMeanThousands computes round(sum / count / 1000), with 0 for an
// empty group.
func roundMeanThousands(sum float64, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(sum / float64(count) / 1000))
}

func countsByYear(records []PermitRecord) []YearCounts {
	type tally struct {
		adu, nonADU, potential int
	}
	byYear := make(map[int]*tally)
	for _, r := range records {
		if !r.Classification.Valid() {
			continue
		}
		t, ok := byYear[r.Year]
		if !ok {
			t = &tally{}
			byYear[r.Year] = t
		}
		switch r.Classification {
		case ADU:
			t.adu++
		case NonADU:
			t.nonADU++
		case PotentialADUConversion:
			t.potential++
		}
	}

	out := make([]YearCounts, 0, len(byYear))
	for _, y := range sortedYears(records) {
		t := byYear[y]
		out = append(out, YearCounts{
			Year:                   yearKey(y),
			ADU:                    t.adu,
			NonADU:                 t.nonADU,
			PotentialADUConversion: t.potential,
		})
	}
	return out
}

// percentageByYear is a thin transform of the counts view.
func percentageByYear(counts []YearCounts) []YearADUShare {
	out := make([]YearADUShare, 0, len(counts))
	for _, c := range counts {
		total := c.ADU + c.NonADU + c.PotentialADUConversion
		out = append(out, YearADUShare{
			Year:          c.Year,
			ADUCount:      c.ADU,
			Total:         total,
			ADUPercentage: roundPct(float64(c.ADU), float64(total)),
		})
	}
	return out
}

func topJurisdictionsByADUCount(records []PermitRecord) []CountyADUCount {
	idx := make(map[string]int)
	var counties []CountyADUCount
	for _, r := range records {
		if !r.Classification.Valid() {
			continue
		}
		i, ok := idx[r.County]
		if !ok {
			i = len(counties)
			idx[r.County] = i
			counties = append(counties, CountyADUCount{County: r.County})
		}
		counties[i].Total++
		if r.Classification == ADU {
			counties[i].ADUCount++
		}
	}

	// Stable sort keeps first-appearance order for equal ADU counts. That
	// tie order is an artifact of input order, not a contract.
	sort.SliceStable(counties, func(i, j int) bool {
		return counties[i].ADUCount > counties[j].ADUCount
	})
	if len(counties) > topJurisdictions {
		counties = counties[:topJurisdictions]
	}
	return counties
}

func valueShareByYear(records []PermitRecord) []YearValueShare {
	type sums struct {
		total, adu float64
	}
	byYear := make(map[int]*sums)
	for _, r := range records {
		if !r.Classification.Valid() {
			continue
		}
		s, ok := byYear[r.Year]
		if !ok {
			s = &sums{}
			byYear[r.Year] = s
		}
		if r.JobValue <= 0 {
			continue
		}
		s.total += r.JobValue
		if r.Classification == ADU {
			s.adu += r.JobValue
		}
	}

	out := make([]YearValueShare, 0, len(byYear))
	for _, y := range sortedYears(records) {
		s := byYear[y]
		out = append(out, YearValueShare{
			Year:                  yearKey(y),
			TotalJobValue:         s.total,
			ADUJobValue:           s.adu,
			ADUJobValuePercentage: roundPct(s.adu, s.total),
		})
	}
	return out
}

func averageValueByTypeAndYear(records []PermitRecord) []YearTypeAverages {
	type sums struct {
		sum   map[Classification]float64
		count map[Classification]int
	}
	byYear := make(map[int]*sums)
	for _, r := range records {
		if !r.Classification.Valid() {
			continue
		}
		s, ok := byYear[r.Year]
		if !ok {
			s = &sums{
				sum:   make(map[Classification]float64),
				count: make(map[Classification]int),
			}
			byYear[r.Year] = s
		}
		if r.JobValue <= 0 {
			continue
		}
		s.sum[r.Classification] += r.JobValue
		s.count[r.Classification]++
	}

	out := make([]YearTypeAverages, 0, len(byYear))
	for _, y := range sortedYears(records) {
		s := byYear[y]
		out = append(out, YearTypeAverages{
			Year:                   yearKey(y),
			ADU:                    roundMean(s.sum[ADU], s.count[ADU]),
			NonADU:                 roundMean(s.sum[NonADU], s.count[NonADU]),
			PotentialADUConversion: roundMean(s.sum[PotentialADUConversion], s.count[PotentialADUConversion]),
		})
	}
	return out
}

func topJurisdictionsByAvgADUValue(records []PermitRecord) []CountyAvgValue {
	type sums struct {
		sum   float64
		count int
	}
	idx := make(map[string]int)
	var order []string
	byCounty := make(map[string]*sums)
	for _, r := range records {
		if r.Classification != ADU || r.JobValue <= 0 {
			continue
		}
		if _, ok := idx[r.County]; !ok {
			idx[r.County] = len(order)
			order = append(order, r.County)
			byCounty[r.County] = &sums{}
		}
		byCounty[r.County].sum += r.JobValue
		byCounty[r.County].count++
	}

	// Counties with no valued ADU records are excluded, not zero-filled.
	out := make([]CountyAvgValue, 0, len(order))
	for _, county := range order {
		s := byCounty[county]
		out = append(out, CountyAvgValue{
			County:   county,
			AvgValue: roundMeanThousands(s.sum, s.count),
			Count:    s.count,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgValue > out[j].AvgValue
	})
	if len(out) > topJurisdictions {
		out = out[:topJurisdictions]
	}
	return out
}

func averageADUValueByYear(records []PermitRecord) []YearAvgADUValue {
	type sums struct {
		sum   float64
		count int
	}
	byYear := make(map[int]*sums)
	for _, r := range records {
		if !r.Classification.Valid() {
			continue
		}
		s, ok := byYear[r.Year]
		if !ok {
			s = &sums{}
			byYear[r.Year] = s
		}
		if r.Classification == ADU && r.JobValue > 0 {
			s.sum += r.JobValue
			s.count++
		}
	}

	out := make([]YearAvgADUValue, 0, len(byYear))
	for _, y := range sortedYears(records) {
		s := byYear[y]
		out = append(out, YearAvgADUValue{
			Year:        yearKey(y),
			AvgADUValue: roundMeanThousands(s.sum, s.count),
			Count:       s.count,
		})
	}
	return out
}
