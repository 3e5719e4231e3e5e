package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/thomaslab/internal/trajectory"
)

// Store persists runs under a base directory: one subdirectory per run
// with metadata.json and trajectory.csv, plus optional analysis reports.
type Store struct {
	baseDir string
	log     *slog.Logger
}

func New(baseDir string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{baseDir: baseDir, log: log}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one persisted run.
type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	B         float64            `json:"b"`
	Dt        float64            `json:"dt"`
	Seed      [3]float64         `json:"seed"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Notes     string             `json:"notes,omitempty"`
}

// Save writes metadata and the store's samples as one run; a fresh uuid
// is assigned when meta.ID is empty. Returns the run ID.
func (s *Store) Save(meta RunMetadata, traj *trajectory.Store) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return "", err
	}
	for i := 0; i < traj.Len(); i++ {
		sm := traj.At(i)
		row := []string{
			fmtF(sm.T), fmtF(sm.Pos.X), fmtF(sm.Pos.Y), fmtF(sm.Pos.Z),
			fmtF(sm.Vel.X), fmtF(sm.Vel.Y), fmtF(sm.Vel.Z),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	s.log.Info("run saved", "id", meta.ID, "samples", traj.Len())
	return meta.ID, nil
}

// WriteReport stores an arbitrary analysis result as pretty JSON under
// the run directory.
func (s *Store) WriteReport(runID, name string, v any) error {
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(runDir, name+".json"), v)
}

// List returns metadata for every stored run, skipping unreadable
// entries.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads a run's trajectory back.
func (s *Store) LoadSamples(runID string) ([]trajectory.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []trajectory.Sample{}, nil
	}

	samples := make([]trajectory.Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 7 {
			continue
		}
		vals := make([]float64, 7)
		ok := true
		for i := range vals {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		var sm trajectory.Sample
		sm.T = vals[0]
		sm.Pos.X, sm.Pos.Y, sm.Pos.Z = vals[1], vals[2], vals[3]
		sm.Vel.X, sm.Vel.Y, sm.Vel.Z = vals[4], vals[5], vals[6]
		samples = append(samples, sm)
	}
	return samples, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
