package retrieve

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileDate is one query file's modification date, day granularity.
type FileDate struct {
	Path string
	Date string
}

// FileDates stats every path and reports whether all modification dates
// fall on the same day. Out-of-sync extracts usually mean a partial
// upload, which is worth a warning but not fatal.
func FileDates(paths []string) ([]FileDate, bool, error) {
	dates := make([]FileDate, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, false, fmt.Errorf("stat %s: %w", p, err)
		}
		dates = append(dates, FileDate{Path: p, Date: info.ModTime().Format("2006-01-02")})
	}

	consistent := true
	for _, d := range dates[1:] {
		if d.Date != dates[0].Date {
			consistent = false
			break
		}
	}
	return dates, consistent, nil
}

// Promote moves downloaded files from the incoming directory into the
// latest-queries directory, replacing prior copies.
func Promote(incomingDir, latestDir string, names []string) error {
	if err := os.MkdirAll(latestDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", latestDir, err)
	}
	for _, name := range names {
		src := filepath.Join(incomingDir, name)
		dst := filepath.Join(latestDir, name)
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("promoting %s: %w", name, err)
		}
	}
	return nil
}
