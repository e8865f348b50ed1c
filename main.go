package main

import (
	"fmt"
	"os"

	"github.com/kforcodeai/ADU-Analysis/cmd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "download":
		cmd.Download(os.Args[2:])
	case "summary":
		cmd.Summary(os.Args[2:])
	case "report":
		cmd.Report(os.Args[2:])
	case "web":
		cmd.Web(os.Args[2:])
	case "check":
		cmd.Check(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: adu-analysis <command>\n\nCommands:\n  download   Download permit CSV exports\n  summary    Print aggregate views as terminal tables\n  report     Write aggregate charts to a PDF report\n  web        Start an interactive web dashboard\n  check      Audit county name spellings\n")
}
