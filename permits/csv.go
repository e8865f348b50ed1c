package permits

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

//go:embed sample.csv
var sampleData embed.FS

// columnAliases maps normalized header names to the record field they feed.
// Permit exports differ between jurisdictions; anything not listed here is
// carried as a passthrough column and ignored.
var columnAliases = map[string]string{
	"year":           "year",
	"permit_year":    "year",
	"county":         "county",
	"jurisdiction":   "county",
	"classification": "classification",
	"adu_type":       "classification",
	"job_value":      "value",
	"jobvalue":       "value",
	"permit_value":   "value",
}

// LoadResult is the outcome of reading one CSV source. Skipped counts rows
// that were quarantined: missing or non-numeric year, unrecognized
// classification, or an unparseable value. Quarantined rows never reach the
// aggregation pipeline.
type LoadResult struct {
	Records []PermitRecord
	Skipped int
}

// ReadRecords parses permit records from a CSV stream. The first row must
// be a header containing the year, county, classification, and job value
// columns (matched case-insensitively against a small alias set).
func ReadRecords(r io.Reader) (LoadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return LoadResult{}, fmt.Errorf("empty input")
	}
	if err != nil {
		return LoadResult{}, fmt.Errorf("read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return LoadResult{}, err
	}

	var result LoadResult
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read row: %w", err)
		}
		rec, ok := parseRow(row, cols)
		if !ok {
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// LoadFile reads permit records from a CSV file on disk.
func LoadFile(path string) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, err
	}
	defer f.Close()

	result, err := ReadRecords(f)
	if err != nil {
		return result, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// Sample returns the embedded sample dataset. Presentation commands fall
// back to it when no real export is available; the pipeline itself has no
// notion of sample versus real data.
func Sample() []PermitRecord {
	f, err := sampleData.Open("sample.csv")
	if err != nil {
		panic("permits: embedded sample.csv missing: " + err.Error())
	}
	defer f.Close()

	result, err := ReadRecords(f)
	if err != nil {
		panic("permits: embedded sample.csv invalid: " + err.Error())
	}
	return result.Records
}

type columnIndex struct {
	year, county, classification, value int
}

func mapColumns(header []string) (columnIndex, error) {
	cols := columnIndex{year: -1, county: -1, classification: -1, value: -1}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		switch columnAliases[key] {
		case "year":
			cols.year = i
		case "county":
			cols.county = i
		case "classification":
			cols.classification = i
		case "value":
			cols.value = i
		}
	}

	var missing []string
	if cols.year < 0 {
		missing = append(missing, "year")
	}
	if cols.county < 0 {
		missing = append(missing, "county")
	}
	if cols.classification < 0 {
		missing = append(missing, "classification")
	}
	if cols.value < 0 {
		missing = append(missing, "job_value")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// parseRow converts one CSV row into a record. It reports false for rows
// that should be quarantined rather than aggregated.
func parseRow(row []string, cols columnIndex) (PermitRecord, bool) {
	max := cols.year
	for _, i := range []int{cols.county, cols.classification, cols.value} {
		if i > max {
			max = i
		}
	}
	if len(row) <= max {
		return PermitRecord{}, false
	}

	year, err := strconv.Atoi(strings.TrimSpace(row[cols.year]))
	if err != nil || year <= 0 {
		return PermitRecord{}, false
	}

	// County names are deliberately taken verbatim; see the check command
	// for auditing spelling variants.
	county := row[cols.county]
	if strings.TrimSpace(county) == "" {
		return PermitRecord{}, false
	}

	class := Classification(strings.TrimSpace(row[cols.classification]))
	if !class.Valid() {
		return PermitRecord{}, false
	}

	value, ok := parseValue(row[cols.value])
	if !ok {
		return PermitRecord{}, false
	}

	return PermitRecord{
		Year:           year,
		County:         county,
		Classification: class,
		JobValue:       value,
	}, true
}

// parseValue reads a job value that may carry "$", commas, or be empty.
// An empty value is a valid zero (the record then counts toward counts but
// not value aggregations); garbage or negative values are not.
func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
