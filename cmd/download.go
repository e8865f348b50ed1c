package cmd

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Download implements the "download" subcommand: fetch permit CSV exports
// from the given URLs into a local data directory.
func Download(args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	dir := fs.String("dir", ".", "output directory for downloaded CSV files")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: adu-analysis download [-dir path] <url> [url...]\n\nDownload permit CSV exports. Files that already exist are skipped.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output directory: %v\n", err)
		os.Exit(1)
	}

	var downloaded, skipped, failed int
	for _, rawURL := range fs.Args() {
		outName, err := csvFileName(rawURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", rawURL, err)
			failed++
			continue
		}
		outPath := filepath.Join(*dir, outName)

		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(os.Stderr, "skip %s (already exists)\n", outName)
			skipped++
			continue
		}

		fmt.Fprintf(os.Stderr, "downloading %s -> %s\n", rawURL, outName)
		if err := downloadFile(rawURL, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "error downloading %s: %v\n", rawURL, err)
			failed++
			continue
		}
		downloaded++
	}

	fmt.Fprintf(os.Stderr, "Done: %d downloaded, %d skipped, %d failed\n", downloaded, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// csvFileName derives a local file name from the export URL.
func csvFileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("no file name in URL path")
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return name, nil
}

func downloadFile(url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}
