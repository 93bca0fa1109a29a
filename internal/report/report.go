package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/xcataloger/internal/matcher"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Entry records one descriptor slot and how it was filled
type Entry struct {
	Index    int    `yaml:"index" json:"index" parquet:"index"`
	Slot     string `yaml:"slot" json:"slot" parquet:"slot"`
	Config   string `yaml:"config" json:"config" parquet:"config"`
	Width    int    `yaml:"width" json:"width" parquet:"width"`
	Height   int    `yaml:"height" json:"height" parquet:"height"`
	Source   string `yaml:"source,omitempty" json:"source,omitempty" parquet:"source"`
	Filename string `yaml:"filename,omitempty" json:"filename,omitempty" parquet:"filename"`
	Status   string `yaml:"status" json:"status" parquet:"status"`
}

// Entry statuses
const (
	StatusAssigned = "assigned"
	StatusUnfilled = "unfilled"
)

// Report is the document written for YAML and JSON reports
type Report struct {
	Source    string  `yaml:"source" json:"source"`
	Catalog   string  `yaml:"catalog" json:"catalog"`
	DryRun    bool    `yaml:"dryrun" json:"dry_run"`
	Timestamp string  `yaml:"timestamp" json:"timestamp"`
	Entries   []Entry `yaml:"entries" json:"entries"`
}

// FromPlan builds a report from a match plan
func FromPlan(srcDir, assetsDir string, plan *matcher.Plan, dryRun bool) *Report {
	r := &Report{
		Source:    srcDir,
		Catalog:   assetsDir,
		DryRun:    dryRun,
		Timestamp: time.Now().Format(time.RFC3339),
		Entries:   make([]Entry, 0, len(plan.Assignments)+len(plan.Unfilled)),
	}

	for _, a := range plan.Assignments {
		r.Entries = append(r.Entries, Entry{
			Index:    a.Index,
			Slot:     a.Image.Attributes().String(),
			Config:   a.Config.Name,
			Width:    a.Width,
			Height:   a.Height,
			Source:   a.Source,
			Filename: a.Filename,
			Status:   StatusAssigned,
		})
	}
	for _, u := range plan.Unfilled {
		r.Entries = append(r.Entries, Entry{
			Index:  u.Index,
			Slot:   u.Image.Attributes().String(),
			Config: u.Config.Name,
			Width:  u.Width,
			Height: u.Height,
			Status: StatusUnfilled,
		})
	}

	return r
}

// Write saves the report, choosing the format from the file extension:
// .yaml/.yml, .json or .parquet. Parquet files hold the entries only.
func Write(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = writeYAML(path, r)
	case ".json":
		err = writeJSON(path, r)
	case ".parquet":
		err = writeParquet(path, r.Entries)
	default:
		return fmt.Errorf("unsupported report format: %s (supported: .yaml, .json, .parquet)", ext)
	}
	if err != nil {
		return err
	}

	slog.Info("Report saved", "path", path, "entries", len(r.Entries))
	return nil
}

// Read loads a report written by Write
func Read(path string) (*Report, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return readYAML(path)
	case ".json":
		return readJSON(path)
	case ".parquet":
		entries, err := readParquet(path)
		if err != nil {
			return nil, err
		}
		return &Report{Entries: entries}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s (supported: .yaml, .json, .parquet)", ext)
	}
}

func writeYAML(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

func readYAML(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse YAML report: %w", err)
	}
	return &r, nil
}

func writeJSON(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

func readJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse JSON report: %w", err)
	}
	return &r, nil
}

func writeParquet(path string, entries []Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[Entry](file)
	if _, err := writer.Write(entries); err != nil {
		file.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}

func readParquet(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "path", path, "num_rows", pf.NumRows())

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	entries := make([]Entry, 0, pf.NumRows())
	rows := make([]Entry, 128)
	for {
		n, err := reader.Read(rows)
		entries = append(entries, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return entries, nil
}
