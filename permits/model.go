// Package permits holds the permit record model, CSV loading, and the
// aggregation pipeline that derives the dashboard views.
package permits

// Classification is the category assigned to a permit record. Exactly three
// values are recognized; records carrying anything else are ignored by the
// aggregation pipeline.
type Classification string

const (
	ADU                    Classification = "ADU"
	NonADU                 Classification = "NON_ADU"
	PotentialADUConversion Classification = "POTENTIAL_ADU_CONVERSION"
)

// Classifications lists the three recognized categories in display order.
var Classifications = []Classification{ADU, NonADU, PotentialADUConversion}

// Valid reports whether c is one of the three recognized classifications.
func (c Classification) Valid() bool {
	switch c {
	case ADU, NonADU, PotentialADUConversion:
		return true
	}
	return false
}

// PermitRecord is one permit row. County names are exact strings: no
// trimming or case folding is applied, so "Orange" and "orange " are
// distinct jurisdictions. JobValue may be zero, in which case value-based
// aggregations exclude the record.
type PermitRecord struct {
	Year           int            `json:"year"`
	County         string         `json:"county"`
	Classification Classification `json:"classification"`
	JobValue       float64        `json:"jobValue"`
}
