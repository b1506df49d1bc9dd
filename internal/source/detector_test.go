package source

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hqwei/stockdash/pkg/logger"
)

const validExportHeader = "代码,中文名,英文名,持仓数量,成本价,收盘价,市值,持仓占比,昨收价,当日盈亏,总盈亏\n"

func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestDetector(dataDir, explicit string) *Detector {
	return NewDetector(dataDir, explicit, logger.New(logger.Config{Level: "error"}))
}

func TestDetectorResolve(t *testing.T) {
	t.Run("explicit source skips detection", func(t *testing.T) {
		d := newTestDetector(t.TempDir(), "https://example.com/export.csv")
		path, err := d.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/export.csv", path)
	})

	t.Run("newest valid file in data dir wins", func(t *testing.T) {
		dir := t.TempDir()
		older := writeExport(t, dir, "stockperformance-9.20.csv", validExportHeader)
		newer := writeExport(t, dir, "stockperformance-9.21.csv", validExportHeader)

		base := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(older, base, base))
		require.NoError(t, os.Chtimes(newer, base.Add(time.Minute), base.Add(time.Minute)))

		d := newTestDetector(dir, "")
		path, err := d.Resolve()
		require.NoError(t, err)
		assert.Equal(t, newer, path)
	})

	t.Run("files without expected headers are skipped", func(t *testing.T) {
		dir := t.TempDir()
		valid := writeExport(t, dir, "stockperformance-9.20.csv", validExportHeader)
		bogus := writeExport(t, dir, "stockperformance-9.21.csv", "just,some,cells\n")

		base := time.Now().Add(-time.Hour)
		require.NoError(t, os.Chtimes(valid, base, base))
		require.NoError(t, os.Chtimes(bogus, base.Add(time.Minute), base.Add(time.Minute)))

		d := newTestDetector(dir, "")
		path, err := d.Resolve()
		require.NoError(t, err)
		assert.Equal(t, valid, path)
	})

	t.Run("non-export file names are ignored", func(t *testing.T) {
		dir := t.TempDir()
		writeExport(t, dir, "notes.csv", validExportHeader)
		writeExport(t, dir, "stockperformance-9.21.txt", validExportHeader)

		d := newTestDetector(dir, "")
		_, err := d.Resolve()
		assert.ErrorIs(t, err, ErrNoCSVFound)
	})

	t.Run("date-stamped candidates cover yesterday in cwd", func(t *testing.T) {
		workDir := t.TempDir()
		prev, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(workDir))
		t.Cleanup(func() { _ = os.Chdir(prev) })

		name := fmt.Sprintf("stockperformance-%d.%d.csv", 9, 21)
		writeExport(t, workDir, name, validExportHeader)

		d := newTestDetector(t.TempDir(), "")
		d.now = func() time.Time { return time.Date(2026, 9, 22, 10, 0, 0, 0, time.UTC) }

		path, err := d.Resolve()
		require.NoError(t, err)
		assert.Equal(t, name, path)
	})

	t.Run("empty data dir yields ErrNoCSVFound", func(t *testing.T) {
		d := newTestDetector(t.TempDir(), "")
		_, err := d.Resolve()
		assert.ErrorIs(t, err, ErrNoCSVFound)
	})
}

func TestValidateCSV(t *testing.T) {
	dir := t.TempDir()
	d := newTestDetector(dir, "")

	valid := writeExport(t, dir, "valid.csv", validExportHeader+"AAPL,苹果,Apple,100\n")
	assert.True(t, d.ValidateCSV(valid))

	invalid := writeExport(t, dir, "invalid.csv", "代码,中文名\n")
	assert.False(t, d.ValidateCSV(invalid), "missing 持仓数量 header")

	assert.False(t, d.ValidateCSV(filepath.Join(dir, "missing.csv")))
}

func TestFormatMonthDay(t *testing.T) {
	d := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "9.2", formatMonthDay(d, false))
	assert.Equal(t, "9.02", formatMonthDay(d, true))
}
