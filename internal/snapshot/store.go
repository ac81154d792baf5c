// Package snapshot persists the daily consensus table as one CSV file
// per calendar date and resolves the previous trading day's table for
// diffing.
package snapshot

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"active-etf-analyzer/internal/interfaces"
	"active-etf-analyzer/internal/logger"
	"active-etf-analyzer/internal/types"
)

var _ interfaces.SnapshotStore = (*Store)(nil)

// utf8BOM is prepended on write so non-Latin stock names survive tools
// that expect a signature, matching the upstream feed's encoding.
const utf8BOM = "\ufeff"

var header = []string{"StockName", "TotalWeight", "AvgWeight", "ETF_Count", "Rank"}

// Store reads and writes per-date consensus snapshots under one
// directory. Files are named YYYYMMDD.csv and never mutated after
// write.
type Store struct {
	dir string
}

// NewStore creates a snapshot store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// PreviousBusinessDay steps back one calendar day at a time from date
// until a non-weekend day is reached. Holidays are not modeled: a
// Monday run resolves to Friday, but a post-holiday Tuesday still
// resolves to Monday.
func PreviousBusinessDay(date string) (string, error) {
	t, err := time.Parse(types.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("snapshot: invalid date %q: %w", date, err)
	}
	t = t.AddDate(0, 0, -1)
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format(types.DateLayout), nil
}

// Load returns the snapshot for the previous business day relative to
// date. Exactly one candidate date is probed; a missing or malformed
// file reports ok=false (normal first-run condition). Only an invalid
// date argument is an error.
func (s *Store) Load(date string) ([]types.ConsensusRow, bool, error) {
	prevDate, err := PreviousBusinessDay(date)
	if err != nil {
		return nil, false, err
	}

	path := s.pathFor(prevDate)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("snapshot: read %s: %w", path, err)
	}

	rows, err := parse(data)
	if err != nil {
		logger.Warn(context.Background(), "Ignoring malformed snapshot", "path", path, "error", err)
		return nil, false, nil
	}
	return rows, true, nil
}

// Save writes the consensus table under the date key, replacing any
// existing snapshot for that date. The write is temp-file-then-rename
// so readers never observe a partial file.
func (s *Store) Save(rows []types.ConsensusRow, date string) (string, error) {
	if _, err := time.Parse(types.DateLayout, date); err != nil {
		return "", fmt.Errorf("snapshot: invalid date %q: %w", date, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot: create dir %s: %w", s.dir, err)
	}

	var sb strings.Builder
	sb.WriteString(utf8BOM)
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("snapshot: write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.StockName,
			strconv.FormatFloat(r.TotalWeight, 'f', 4, 64),
			strconv.FormatFloat(r.AvgWeight, 'f', 4, 64),
			strconv.Itoa(r.ETFCount),
			strconv.Itoa(r.Rank),
		}
		if err := w.Write(rec); err != nil {
			return "", fmt.Errorf("snapshot: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("snapshot: flush: %w", err)
	}

	path := s.pathFor(date)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("snapshot: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("snapshot: replace %s: %w", path, err)
	}
	return path, nil
}

func (s *Store) pathFor(date string) string {
	return filepath.Join(s.dir, date+".csv")
}

func parse(data []byte) ([]types.ConsensusRow, error) {
	text := strings.TrimPrefix(string(data), utf8BOM)
	r := csv.NewReader(strings.NewReader(text))
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("empty snapshot")
	}
	if len(recs[0]) < len(header) {
		return nil, fmt.Errorf("unexpected header %v", recs[0])
	}

	rows := make([]types.ConsensusRow, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		if len(rec) < len(header) {
			return nil, fmt.Errorf("short record %v", rec)
		}
		total, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, err
		}
		avg, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, err
		}
		count, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, err
		}
		rank, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, err
		}
		rows = append(rows, types.ConsensusRow{
			StockName:   rec[0],
			TotalWeight: total,
			AvgWeight:   avg,
			ETFCount:    count,
			Rank:        rank,
		})
	}
	return rows, nil
}
