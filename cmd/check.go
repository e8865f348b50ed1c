package cmd

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kforcodeai/ADU-Analysis/permits"
)

// Check implements the "check" subcommand: report county name variants that
// the pipeline will treat as distinct jurisdictions. County matching is
// exact-string by contract, so this only reports -- it never merges.
func Check(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	data := fs.String("data", "permits.csv", "permit CSV file")
	sample := fs.Bool("sample", false, "use the embedded sample dataset")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: adu-analysis check [file]\n\nAudit county spellings for variants that aggregate separately.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*data = fs.Arg(0)
	}

	records := loadInput(*data, *sample)
	variants := findCountyVariants(records)

	if len(variants) == 0 {
		fmt.Fprintf(os.Stderr, "no county spelling variants found\n")
		return
	}

	for _, v := range variants {
		fmt.Fprintf(os.Stderr, "\nLikely the same jurisdiction:\n")
		for _, name := range v.names {
			fmt.Fprintf(os.Stderr, "  %-30q %d record(s)\n", name, v.counts[name])
		}
	}
	fmt.Fprintf(os.Stderr, "\n%d variant group(s); these aggregate as separate counties\n", len(variants))
	os.Exit(1)
}

type countyVariants struct {
	names  []string
	counts map[string]int
}

// normalizeCounty is only used for variant detection. The aggregation
// pipeline itself never normalizes.
func normalizeCounty(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), " ")
}

// findCountyVariants groups county names by a case- and whitespace-folded
// key and returns the groups containing more than one distinct spelling.
func findCountyVariants(records []permits.PermitRecord) []countyVariants {
	groups := make(map[string]map[string]int)
	for _, r := range records {
		key := normalizeCounty(r.County)
		if groups[key] == nil {
			groups[key] = make(map[string]int)
		}
		groups[key][r.County]++
	}

	var out []countyVariants
	for _, nameCounts := range groups {
		if len(nameCounts) < 2 {
			continue
		}
		names := make([]string, 0, len(nameCounts))
		for n := range nameCounts {
			names = append(names, n)
		}
		sort.Strings(names)
		out = append(out, countyVariants{names: names, counts: nameCounts})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].names[0] < out[j].names[0]
	})
	return out
}
