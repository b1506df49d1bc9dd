package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hqwei/stockdash/internal/extract"
)

// ErrNoCSVFound is returned when no usable export file could be located.
var ErrNoCSVFound = errors.New("no csv export found")

const csvFilePrefix = "stockperformance-"

// Column headers expected in any real export, used to validate candidates
// before committing to them.
var validationMarkers = []string{extract.MarkerHoldingsHeader, "中文名", "持仓数量"}

// Detector locates the newest portfolio export. This is deliberate
// guesswork over file names and dates, isolated here so it can be replaced
// without touching the load pipeline.
type Detector struct {
	dataDir  string
	explicit string // configured source, skips detection entirely
	now      func() time.Time
	log      zerolog.Logger
}

// NewDetector creates a detector over the given data directory. When
// explicit is non-empty it is returned as-is by Resolve.
func NewDetector(dataDir, explicit string, log zerolog.Logger) *Detector {
	return &Detector{
		dataDir:  dataDir,
		explicit: explicit,
		now:      time.Now,
		log:      log.With().Str("component", "detector").Logger(),
	}
}

// Resolve returns the path (or URL) of the export to load. Strategy order:
// the configured source, the newest matching file in the data directory,
// then generated date-stamped candidates for today and yesterday.
func (d *Detector) Resolve() (string, error) {
	if d.explicit != "" {
		return d.explicit, nil
	}

	if path, ok := d.newestInDataDir(); ok {
		d.log.Debug().Str("path", path).Msg("Found newest export in data dir")
		return path, nil
	}

	for _, candidate := range d.candidatePaths() {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if !d.ValidateCSV(candidate) {
			d.log.Warn().Str("path", candidate).Msg("Candidate exists but does not look like an export")
			continue
		}
		d.log.Debug().Str("path", candidate).Msg("Found export by date pattern")
		return candidate, nil
	}

	return "", ErrNoCSVFound
}

// newestInDataDir scans the data directory for export files and returns the
// most recently modified valid one.
func (d *Detector) newestInDataDir() (string, bool) {
	entries, err := os.ReadDir(d.dataDir)
	if err != nil {
		return "", false
	}

	type candidate struct {
		path    string
		modTime time.Time
	}

	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, csvFilePrefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(d.dataDir, name),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})

	for _, c := range candidates {
		if d.ValidateCSV(c.path) {
			return c.path, true
		}
		d.log.Warn().Str("path", c.path).Msg("Skipping file without expected headers")
	}

	return "", false
}

// candidatePaths generates date-stamped file names for today and yesterday
// across the known base directories, e.g. stockperformance-9.22.csv.
func (d *Detector) candidatePaths() []string {
	today := d.now()
	yesterday := today.AddDate(0, 0, -1)

	dates := []string{
		formatMonthDay(today, false),
		formatMonthDay(yesterday, false),
		formatMonthDay(today, true),
		formatMonthDay(yesterday, true),
	}

	baseDirs := []string{d.dataDir, "."}

	var paths []string
	seen := make(map[string]bool)
	for _, dir := range baseDirs {
		for _, date := range dates {
			p := filepath.Join(dir, fmt.Sprintf("%s%s.csv", csvFilePrefix, date))
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}

	return paths
}

// ValidateCSV reports whether the file carries the expected holdings table
// headers.
func (d *Detector) ValidateCSV(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	text := string(data)
	for _, marker := range validationMarkers {
		if !strings.Contains(text, marker) {
			return false
		}
	}
	return true
}

// formatMonthDay renders "9.2" or, with a padded day, "9.02".
func formatMonthDay(t time.Time, padDay bool) string {
	if padDay {
		return fmt.Sprintf("%d.%02d", int(t.Month()), t.Day())
	}
	return fmt.Sprintf("%d.%d", int(t.Month()), t.Day())
}
