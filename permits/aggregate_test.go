package permits

import (
	"reflect"
	"testing"
)

func rec(year int, county string, class Classification, value float64) PermitRecord {
	return PermitRecord{Year: year, County: county, Classification: class, JobValue: value}
}

func TestAggregateBasicScenario(t *testing.T) {
	records := []PermitRecord{
		rec(2020, "Alameda", ADU, 200000),
		rec(2020, "Alameda", NonADU, 400000),
		rec(2021, "Alameda", ADU, 300000),
	}
	got := Aggregate(records)

	wantCounts := []YearCounts{
		{Year: "2020", ADU: 1, NonADU: 1, PotentialADUConversion: 0},
		{Year: "2021", ADU: 1, NonADU: 0, PotentialADUConversion: 0},
	}
	if !reflect.DeepEqual(got.CountsByYear, wantCounts) {
		t.Errorf("CountsByYear:\ngot  %+v\nwant %+v", got.CountsByYear, wantCounts)
	}

	wantPct := []YearADUShare{
		{Year: "2020", ADUCount: 1, Total: 2, ADUPercentage: 50},
		{Year: "2021", ADUCount: 1, Total: 1, ADUPercentage: 100},
	}
	if !reflect.DeepEqual(got.PercentageByYear, wantPct) {
		t.Errorf("PercentageByYear:\ngot  %+v\nwant %+v", got.PercentageByYear, wantPct)
	}

	// Averages in thousands.
	wantAvg := []YearAvgADUValue{
		{Year: "2020", AvgADUValue: 200, Count: 1},
		{Year: "2021", AvgADUValue: 300, Count: 1},
	}
	if !reflect.DeepEqual(got.AverageADUValueByYear, wantAvg) {
		t.Errorf("AverageADUValueByYear:\ngot  %+v\nwant %+v", got.AverageADUValueByYear, wantAvg)
	}
}

func TestCountsByYearSumMatchesRecordCount(t *testing.T) {
	records := Sample()
	perYear := make(map[string]int)
	for _, r := range records {
		perYear[yearKey(r.Year)]++
	}

	for _, c := range Aggregate(records).CountsByYear {
		sum := c.ADU + c.NonADU + c.PotentialADUConversion
		if sum != perYear[c.Year] {
			t.Errorf("year %s: classification sum %d, want %d records", c.Year, sum, perYear[c.Year])
		}
	}
}

func TestCountsByYearSortedAscending(t *testing.T) {
	records := []PermitRecord{
		rec(2022, "Orange", ADU, 0),
		rec(2018, "Orange", NonADU, 0),
		rec(2020, "Orange", ADU, 0),
	}
	got := Aggregate(records).CountsByYear
	want := []string{"2018", "2020", "2022"}
	for i, c := range got {
		if c.Year != want[i] {
			t.Fatalf("year order: got %v at %d, want %v", c.Year, i, want[i])
		}
	}
}

func TestPercentageByYearRounding(t *testing.T) {
	tests := []struct {
		name    string
		adu     int
		nonADU  int
		wantPct int
	}{
		{"thirty percent", 30, 70, 30},
		{"one third", 1, 2, 33},
		{"half rounds up", 3, 5, 38},
		{"two thirds", 2, 1, 67},
		{"all adu", 4, 0, 100},
		{"no adu", 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []PermitRecord
			for i := 0; i < tt.adu; i++ {
				records = append(records, rec(2020, "Alameda", ADU, 0))
			}
			for i := 0; i < tt.nonADU; i++ {
				records = append(records, rec(2020, "Alameda", NonADU, 0))
			}
			got := Aggregate(records).PercentageByYear
			if len(got) != 1 || got[0].ADUPercentage != tt.wantPct {
				t.Errorf("got %+v, want percentage %d", got, tt.wantPct)
			}
		})
	}
}

func TestTopJurisdictionsByADUCount(t *testing.T) {
	counties := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	var records []PermitRecord
	for i, county := range counties {
		for j := 0; j <= i; j++ {
			records = append(records, rec(2020, county, ADU, 0))
		}
		records = append(records, rec(2020, county, NonADU, 0))
	}

	got := Aggregate(records).TopJurisdictionsByADUCount
	if len(got) != 8 {
		t.Fatalf("got %d entries, want 8", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].ADUCount > got[i-1].ADUCount {
			t.Errorf("not sorted descending at %d: %+v", i, got)
		}
	}
	// J has 10 ADU records plus 1 NON_ADU.
	if got[0].County != "J" || got[0].ADUCount != 10 || got[0].Total != 11 {
		t.Errorf("top entry: got %+v", got[0])
	}
	// A and B (1 and 2 ADU) fall off the top 8.
	for _, e := range got {
		if e.County == "A" || e.County == "B" {
			t.Errorf("county %s should be truncated: %+v", e.County, got)
		}
	}
}

func TestTopJurisdictionsTieKeepsFirstAppearance(t *testing.T) {
	records := []PermitRecord{
		rec(2020, "Sonoma", ADU, 0),
		rec(2020, "Fresno", ADU, 0),
		rec(2020, "Marin", ADU, 0),
	}
	got := Aggregate(records).TopJurisdictionsByADUCount
	want := []string{"Sonoma", "Fresno", "Marin"}
	for i, e := range got {
		if e.County != want[i] {
			t.Fatalf("tie order: got %v, want %v", got, want)
		}
	}
}

func TestTopJurisdictionsFewerThanEight(t *testing.T) {
	records := []PermitRecord{
		rec(2020, "Alameda", ADU, 0),
		rec(2020, "Orange", ADU, 0),
	}
	got := Aggregate(records).TopJurisdictionsByADUCount
	if len(got) != 2 {
		t.Fatalf("got %d entries, want all 2 counties", len(got))
	}
}

func TestValueShareByYear(t *testing.T) {
	records := []PermitRecord{
		rec(2020, "Alameda", ADU, 250000),
		rec(2020, "Alameda", NonADU, 750000),
		// Zero-value records are excluded from value sums.
		rec(2020, "Alameda", ADU, 0),
		// A year where every record has zero value yields 0, not NaN.
		rec(2021, "Alameda", ADU, 0),
		rec(2021, "Alameda", NonADU, 0),
	}
	got := Aggregate(records).ValueShareByYear
	want := []YearValueShare{
		{Year: "2020", TotalJobValue: 1000000, ADUJobValue: 250000, ADUJobValuePercentage: 25},
		{Year: "2021", TotalJobValue: 0, ADUJobValue: 0, ADUJobValuePercentage: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got  %+v\nwant %+v", got, want)
	}
}

func TestAverageValueByTypeAndYear(t *testing.T) {
	records := []PermitRecord{
		rec(2020, "Alameda", ADU, 100000),
		rec(2020, "Alameda", ADU, 150001),
		rec(2020, "Alameda", NonADU, 400000),
		// No valued POTENTIAL_ADU_CONVERSION records: average reports 0.
		rec(2020, "Alameda", PotentialADUConversion, 0),
	}
	got := Aggregate(records).AverageValueByTypeAndYear
	// Raw dollars, rounded: (100000+150001)/2 = 125000.5 -> 125001.
	want := []YearTypeAverages{
		{Year: "2020", ADU: 125001, NonADU: 400000, PotentialADUConversion: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got  %+v\nwant %+v", got, want)
	}
}

func TestTopJurisdictionsByAvgADUValue(t *testing.T) {
	records := []PermitRecord{
		rec(2020, "Alameda", ADU, 100000),
		rec(2020, "Alameda", ADU, 200000),
		rec(2021, "Orange", ADU, 400000),
		// Valueless ADU and non-ADU records never qualify a county.
		rec(2020, "Fresno", ADU, 0),
		rec(2020, "Marin", NonADU, 900000),
	}
	got := Aggregate(records).TopJurisdictionsByAvgADUValue
	want := []CountyAvgValue{
		{County: "Orange", AvgValue: 400, Count: 1},
		{County: "Alameda", AvgValue: 150, Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got  %+v\nwant %+v", got, want)
	}
}

func TestUnknownClassificationIgnored(t *testing.T) {
	records := []PermitRecord{
		rec(2020, "Alameda", ADU, 100000),
		rec(2020, "Alameda", Classification("JADU"), 500000),
	}
	got := Aggregate(records)
	if got.CountsByYear[0].ADU != 1 {
		t.Errorf("ADU count: got %d, want 1", got.CountsByYear[0].ADU)
	}
	total := got.CountsByYear[0].ADU + got.CountsByYear[0].NonADU + got.CountsByYear[0].PotentialADUConversion
	if total != 1 {
		t.Errorf("unknown classification leaked into counts: %+v", got.CountsByYear[0])
	}
	if got.ValueShareByYear[0].TotalJobValue != 100000 {
		t.Errorf("unknown classification leaked into value sums: %+v", got.ValueShareByYear[0])
	}
	if got.TopJurisdictionsByADUCount[0].Total != 1 {
		t.Errorf("unknown classification leaked into county totals: %+v", got.TopJurisdictionsByADUCount[0])
	}
}

func TestCountyNamesAreExactStrings(t *testing.T) {
	records := []PermitRecord{
		rec(2020, "Orange", ADU, 0),
		rec(2020, "orange ", ADU, 0),
	}
	got := Aggregate(records).TopJurisdictionsByADUCount
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct counties, got %+v", got)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	got := Aggregate(nil)
	if len(got.CountsByYear) != 0 || len(got.PercentageByYear) != 0 ||
		len(got.TopJurisdictionsByADUCount) != 0 || len(got.ValueShareByYear) != 0 ||
		len(got.AverageValueByTypeAndYear) != 0 || len(got.TopJurisdictionsByAvgADUValue) != 0 ||
		len(got.AverageADUValueByYear) != 0 {
		t.Errorf("empty input should produce empty views: %+v", got)
	}
}

func TestAggregateIsPure(t *testing.T) {
	records := Sample()
	first := Aggregate(records)
	second := Aggregate(records)
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same input differ")
	}
}
