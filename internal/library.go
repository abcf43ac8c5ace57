package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// MonthStats summarises one YYYY/MM Month folder.
type MonthStats struct {
	Year  string `json:"year" yaml:"year"`
	Month string `json:"month" yaml:"month"`
	Files int    `json:"files" yaml:"files"`
	Bytes int64  `json:"size_bytes" yaml:"size_bytes"`
}

// DuplicateSet is a group of files with equal content in one month folder.
// An organized library has none; they appear when files are dropped in by
// hand.
type DuplicateSet struct {
	Folder string   `json:"folder" yaml:"folder"`
	Hash   string   `json:"hash" yaml:"hash"`
	Files  []string `json:"files" yaml:"files"`
	Size   int64    `json:"size_bytes" yaml:"size_bytes"`
}

// LibraryStats describes an organized destination tree.
type LibraryStats struct {
	Root         string         `json:"root" yaml:"root"`
	TotalFiles   int            `json:"total_files" yaml:"total_files"`
	TotalBytes   int64          `json:"total_size_bytes" yaml:"total_size_bytes"`
	Months       []MonthStats   `json:"months" yaml:"months"`
	Stray        []string       `json:"stray,omitempty" yaml:"stray,omitempty"`
	Duplicates   []DuplicateSet `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	ScanDuration time.Duration  `json:"scan_duration" yaml:"scan_duration"`
}

// SurveyLibrary walks root and buckets files by their year/month folder.
// Files that do not sit exactly at YYYY/MM Month/<name> are listed as stray.
// Dot-directories (run manifests among them) are skipped.
func SurveyLibrary(fsys afero.Fs, root string, findDuplicates bool) (*LibraryStats, error) {
	start := time.Now()
	stats := &LibraryStats{Root: root, Months: []MonthStats{}}
	months := make(map[string]*MonthStats)
	hashes := make(map[string]map[ContentHash][]string)

	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		stats.TotalFiles++
		stats.TotalBytes += info.Size()

		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 3 || !isYearDir(parts[0]) || !isMonthLabel(parts[1]) {
			stats.Stray = append(stats.Stray, rel)
			return nil
		}

		key := parts[0] + "/" + parts[1]
		m, ok := months[key]
		if !ok {
			m = &MonthStats{Year: parts[0], Month: parts[1]}
			months[key] = m
		}
		m.Files++
		m.Bytes += info.Size()

		if findDuplicates {
			sum, err := HashFile(fsys, path)
			if err != nil {
				return err
			}
			if hashes[key] == nil {
				hashes[key] = make(map[ContentHash][]string)
			}
			hashes[key][sum] = append(hashes[key][sum], parts[2])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to survey %s: %w", root, err)
	}

	for _, m := range months {
		stats.Months = append(stats.Months, *m)
	}
	sort.Slice(stats.Months, func(i, j int) bool {
		if stats.Months[i].Year != stats.Months[j].Year {
			return stats.Months[i].Year < stats.Months[j].Year
		}
		return stats.Months[i].Month < stats.Months[j].Month
	})

	stats.Duplicates = findDuplicateSets(fsys, root, hashes)
	stats.ScanDuration = time.Since(start)
	return stats, nil
}

func isYearDir(s string) bool {
	if len(s) != 4 {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func isMonthLabel(s string) bool {
	n, name, ok := strings.Cut(s, " ")
	if !ok || len(n) != 2 {
		return false
	}
	m, err := strconv.Atoi(n)
	if err != nil || m < 1 || m > 12 {
		return false
	}
	return name == time.Month(m).String()
}

// findDuplicateSets turns per-folder hash buckets into sorted sets
func findDuplicateSets(fsys afero.Fs, root string, hashes map[string]map[ContentHash][]string) []DuplicateSet {
	var dups []DuplicateSet
	for folder, byHash := range hashes {
		for sum, files := range byHash {
			if len(files) < 2 {
				continue
			}
			sort.Strings(files)
			size := int64(0)
			if info, err := fsys.Stat(filepath.Join(root, folder, files[0])); err == nil {
				size = info.Size()
			}
			dups = append(dups, DuplicateSet{Folder: folder, Hash: string(sum), Files: files, Size: size})
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i].Folder != dups[j].Folder {
			return dups[i].Folder < dups[j].Folder
		}
		return dups[i].Files[0] < dups[j].Files[0]
	})
	return dups
}

// DisplayLibraryStats writes stats as "table", "json" or "yaml".
func DisplayLibraryStats(w io.Writer, stats *LibraryStats, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(stats); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		displayTable(w, stats)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func displayTable(w io.Writer, stats *LibraryStats) {
	fmt.Fprintf(w, "=== Library: %s ===\n\n", stats.Root)
	fmt.Fprintf(w, "📊 %d files (%s) in %d month folders\n", stats.TotalFiles, humanize.Bytes(uint64(stats.TotalBytes)), len(stats.Months))
	fmt.Fprintf(w, "  - Scan completed in %v\n\n", stats.ScanDuration.Round(time.Millisecond))

	year := ""
	for _, m := range stats.Months {
		if m.Year != year {
			year = m.Year
			fmt.Fprintf(w, "📅 %s\n", year)
		}
		fmt.Fprintf(w, "  - %-12s %6d files  %10s\n", m.Month, m.Files, humanize.Bytes(uint64(m.Bytes)))
	}

	if len(stats.Stray) > 0 {
		fmt.Fprintf(w, "\n❓ Outside the year/month layout (%d):\n", len(stats.Stray))
		for _, s := range stats.Stray[:min(10, len(stats.Stray))] {
			fmt.Fprintf(w, "  - %s\n", s)
		}
		if len(stats.Stray) > 10 {
			fmt.Fprintf(w, "  - ... and %d more\n", len(stats.Stray)-10)
		}
	}

	if len(stats.Duplicates) > 0 {
		fmt.Fprintf(w, "\n🔍 Duplicates Found (%d sets):\n", len(stats.Duplicates))
		waste := int64(0)
		for _, d := range stats.Duplicates {
			fmt.Fprintf(w, "  - %s: %s (%s each)\n", d.Folder, strings.Join(d.Files, ", "), humanize.Bytes(uint64(d.Size)))
			waste += d.Size * int64(len(d.Files)-1)
		}
		fmt.Fprintf(w, "  💾 Potential space savings: %s\n", humanize.Bytes(uint64(waste)))
	}
}
