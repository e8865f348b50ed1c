package cmd

import (
	"fmt"
	"os"

	"github.com/kforcodeai/ADU-Analysis/permits"
)

// loadInput reads permit records for a presentation command. When the CSV
// cannot be read, it falls back to the embedded sample dataset with a
// non-fatal notice rather than aborting, so charts still render. The
// aggregation pipeline itself never knows which dataset it was fed.
func loadInput(path string, sampleOnly bool) []permits.PermitRecord {
	if sampleOnly {
		fmt.Fprintf(os.Stderr, "using embedded sample dataset\n")
		return permits.Sample()
	}

	result, err := permits.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; falling back to sample dataset\n", err)
		return permits.Sample()
	}
	if result.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "%s: quarantined %d malformed row(s)\n", path, result.Skipped)
	}
	if len(result.Records) == 0 {
		fmt.Fprintf(os.Stderr, "warning: %s has no usable rows; falling back to sample dataset\n", path)
		return permits.Sample()
	}
	return result.Records
}
