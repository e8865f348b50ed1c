package permits

import (
	"reflect"
	"strings"
	"testing"
)

func TestReadRecords(t *testing.T) {
	input := `year,county,classification,job_value,permit_id
2020,Alameda,ADU,"125,000",P-001
2021,Orange,NON_ADU,$410000,P-002
2021,Orange,POTENTIAL_ADU_CONVERSION,,P-003
`
	result, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	want := []PermitRecord{
		{Year: 2020, County: "Alameda", Classification: ADU, JobValue: 125000},
		{Year: 2021, County: "Orange", Classification: NonADU, JobValue: 410000},
		{Year: 2021, County: "Orange", Classification: PotentialADUConversion, JobValue: 0},
	}
	if !reflect.DeepEqual(result.Records, want) {
		t.Errorf("got  %+v\nwant %+v", result.Records, want)
	}
	if result.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", result.Skipped)
	}
}

func TestReadRecordsHeaderAliases(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"canonical", "year,county,classification,job_value"},
		{"uppercase", "YEAR,COUNTY,CLASSIFICATION,JOB_VALUE"},
		{"aliases", "permit_year,jurisdiction,adu_type,permit_value"},
		{"reordered", "job_value,classification,county,year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row string
			switch tt.name {
			case "reordered":
				row = "98000,ADU,Sonoma,2022"
			default:
				row = "2022,Sonoma,ADU,98000"
			}
			result, err := ReadRecords(strings.NewReader(tt.header + "\n" + row + "\n"))
			if err != nil {
				t.Fatalf("ReadRecords: %v", err)
			}
			want := PermitRecord{Year: 2022, County: "Sonoma", Classification: ADU, JobValue: 98000}
			if len(result.Records) != 1 || result.Records[0] != want {
				t.Errorf("got %+v, want [%+v]", result.Records, want)
			}
		})
	}
}

func TestReadRecordsQuarantinesBadRows(t *testing.T) {
	input := `year,county,classification,job_value
2020,Alameda,ADU,125000
,Alameda,ADU,100000
nineteen,Alameda,ADU,100000
2020,,ADU,100000
2020,Alameda,GARAGE,100000
2020,Alameda,ADU,not-a-number
2020,Alameda,ADU,-5
2021,Orange,NON_ADU,300000
`
	result, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("got %d records, want 2: %+v", len(result.Records), result.Records)
	}
	if result.Skipped != 6 {
		t.Errorf("skipped = %d, want 6", result.Skipped)
	}
}

func TestReadRecordsMissingColumns(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("year,county\n2020,Alameda\n"))
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	if !strings.Contains(err.Error(), "classification") || !strings.Contains(err.Error(), "job_value") {
		t.Errorf("error should name the missing columns: %v", err)
	}
}

func TestReadRecordsEmptyInput(t *testing.T) {
	if _, err := ReadRecords(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"125000", 125000, true},
		{"125,000.50", 125000.50, true},
		{"$98,000", 98000, true},
		{"", 0, true},
		{"  ", 0, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseValue(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseValue(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSampleDataset(t *testing.T) {
	records := Sample()
	if len(records) == 0 {
		t.Fatal("sample dataset is empty")
	}
	for i, r := range records {
		if !r.Classification.Valid() {
			t.Errorf("record %d: invalid classification %q", i, r.Classification)
		}
		if r.Year < 2000 || r.Year > 2100 {
			t.Errorf("record %d: implausible year %d", i, r.Year)
		}
	}
	// The sample must exercise every view, so it needs multiple years,
	// more than eight counties, and all three classifications.
	agg := Aggregate(records)
	if len(agg.CountsByYear) < 2 {
		t.Error("sample should span multiple years")
	}
	if len(agg.TopJurisdictionsByADUCount) != 8 {
		t.Errorf("sample should overflow the top-8 view, got %d counties", len(agg.TopJurisdictionsByADUCount))
	}
	for _, c := range agg.CountsByYear {
		if c.ADU+c.NonADU+c.PotentialADUConversion == 0 {
			t.Errorf("year %s has no records", c.Year)
		}
	}
}
