package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"har-prep/models"
	"har-prep/utils"
)

// CSVSessionReader reads HIAAC-style smartphone recordings:
//
//	<root>/<user>/<file_prefix>_<placement>.csv   one file per modality
//	<root>/Label/<user>/Annotations.csv           one label row per trial
//
// Sensor files carry a "Timestamp Server" column (milliseconds) and one
// "Value N" column per channel. Timestamps are rebased to start at 0 per
// series. Each fixed-length run of samples (dataset.trial_length) becomes
// one session, labeled by the matching annotation row; trials beyond the
// annotation count are dropped.
//
// Per-user and per-placement problems (missing files, malformed rows) are
// logged with the session identity and skipped; only an unreadable root is
// fatal.
type CSVSessionReader struct {
	cfg utils.DatasetSection

	produced uint64 // sessions emitted
	skipped  uint64 // placements skipped due to read problems
}

// NewCSVSessionReader creates a reader for the configured dataset layout.
func NewCSVSessionReader(cfg utils.DatasetSection) *CSVSessionReader {
	return &CSVSessionReader{cfg: cfg}
}

// Stats returns (sessions produced, placements skipped).
func (r *CSVSessionReader) Stats() (uint64, uint64) { return r.produced, r.skipped }

// Read implements SessionSource.
func (r *CSVSessionReader) Read(root string) ([]SessionTables, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dataset root %s: %w", root, err)
	}

	var users []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		u, err := strconv.Atoi(e.Name())
		if err != nil {
			continue // Label/ and other non-user folders
		}
		users = append(users, u)
	}
	sort.Ints(users)

	var sessions []SessionTables
	for _, user := range users {
		userDir := filepath.Join(root, strconv.Itoa(user))

		labels, err := r.readAnnotations(filepath.Join(root, "Label", strconv.Itoa(user), "Annotations.csv"))
		if err != nil {
			utils.L().Warn("user=%d: %v — user skipped", user, err)
			continue
		}

		for _, placement := range r.placements(userDir, user) {
			series, err := r.readPlacement(userDir, user, placement)
			if err != nil {
				utils.L().Warn("user=%d pos=%s: %v — placement skipped", user, placement, err)
				r.skipped++
				continue
			}
			sessions = append(sessions, r.splitTrials(series, labels)...)
		}
	}

	utils.L().Info("session reader finished  (sessions=%d, skipped=%d)", r.produced, r.skipped)
	return sessions, nil
}

// placements discovers the device placements recorded for one user by
// listing the first configured modality's files, then applies the optional
// placements filter from the config.
func (r *CSVSessionReader) placements(userDir string, user int) []string {
	prefix := r.cfg.Modalities[0].FilePrefix + "_"
	entries, err := os.ReadDir(userDir)
	if err != nil {
		utils.L().Warn("user=%d: list %s: %v", user, userDir, err)
		return nil
	}

	allow := make(map[string]struct{}, len(r.cfg.Placements))
	for _, p := range r.cfg.Placements {
		allow[p] = struct{}{}
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		placement := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".csv")
		if len(allow) > 0 {
			if _, ok := allow[placement]; !ok {
				continue
			}
		}
		out = append(out, placement)
	}
	sort.Strings(out)
	return out
}

// readPlacement reads one series per configured modality for a single
// (user, placement) recording and truncates them to a common length.
func (r *CSVSessionReader) readPlacement(userDir string, user int, placement string) ([]models.Series, error) {
	series := make([]models.Series, 0, len(r.cfg.Modalities))
	minLen := -1
	for _, mc := range r.cfg.Modalities {
		path := filepath.Join(userDir, fmt.Sprintf("%s_%s.csv", mc.FilePrefix, placement))
		samples, err := readSensorCSV(path, mc.Channels)
		if err != nil {
			return nil, err
		}
		if minLen < 0 || len(samples) < minLen {
			minLen = len(samples)
		}
		series = append(series, models.Series{
			Modality: models.Modality(mc.Name),
			Meta:     models.SessionMetadata{User: user, Placement: placement},
			Samples:  samples,
		})
	}
	for i := range series {
		series[i].Samples = series[i].Samples[:minLen]
	}
	return series, nil
}

// splitTrials slices a placement recording into fixed-length labeled
// sessions. All modalities of one trial get identical metadata; the
// aligner re-verifies this.
func (r *CSVSessionReader) splitTrials(series []models.Series, labels []string) []SessionTables {
	length := r.cfg.TrialLength
	nTrials := len(series[0].Samples) / length
	if len(labels) < nTrials {
		nTrials = len(labels)
	}

	sessions := make([]SessionTables, 0, nTrials)
	for t := 0; t < nTrials; t++ {
		st := SessionTables{Series: make([]models.Series, 0, len(series))}
		for _, s := range series {
			meta := s.Meta
			meta.Trial = t
			meta.Label = strings.TrimSpace(labels[t])
			st.Series = append(st.Series, models.Series{
				Modality: s.Modality,
				Meta:     meta,
				Samples:  s.Samples[t*length : (t+1)*length],
			})
		}
		sessions = append(sessions, st)
		r.produced++
	}
	return sessions
}

// Raw sensor file column names.
const (
	colTimestamp   = "Timestamp Server"
	colValuePrefix = "Value "
	colLabel       = "pro_label"
)

// readSensorCSV parses one modality file into samples with timestamps
// rebased to start at 0.
func readSensorCSV(path string, channels int) ([]models.SensorSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // some recordings carry trailing metadata columns

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", filepath.Base(path), err)
	}

	tsIdx := -1
	valIdx := make([]int, channels)
	for i := range valIdx {
		valIdx[i] = -1
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == colTimestamp {
			tsIdx = i
			continue
		}
		if n, ok := strings.CutPrefix(name, colValuePrefix); ok {
			if c, err := strconv.Atoi(n); err == nil && c >= 1 && c <= channels {
				valIdx[c-1] = i
			}
		}
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("%s: missing %q column", filepath.Base(path), colTimestamp)
	}
	for c, i := range valIdx {
		if i < 0 {
			return nil, fmt.Errorf("%s: missing %q column", filepath.Base(path), colValuePrefix+strconv.Itoa(c+1))
		}
	}

	var samples []models.SensorSample
	var base int64
	for {
		rec, err := cr.Read()
		if err != nil {
			break // EOF or a torn trailing line; keep what parsed
		}
		if tsIdx >= len(rec) {
			return nil, fmt.Errorf("%s row %d: short record", filepath.Base(path), len(samples)+2)
		}
		ts, err := parseTimestamp(rec[tsIdx])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), len(samples)+2, err)
		}
		vals := make([]float64, channels)
		for c, i := range valIdx {
			if i >= len(rec) {
				return nil, fmt.Errorf("%s row %d: short record", filepath.Base(path), len(samples)+2)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: value %d: %w", filepath.Base(path), len(samples)+2, c+1, err)
			}
			vals[c] = v
		}
		if len(samples) == 0 {
			base = ts
		}
		samples = append(samples, models.SensorSample{TimestampMs: ts - base, Values: vals})
	}
	return samples, nil
}

// parseTimestamp accepts integer or float millisecond timestamps.
func parseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad timestamp %q", s)
	}
	return int64(f), nil
}

// readAnnotations reads the per-trial label column from Annotations.csv.
func (r *CSVSessionReader) readAnnotations(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read annotations header: %w", err)
	}
	labelIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == colLabel {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("annotations: missing %q column", colLabel)
	}

	var labels []string
	for {
		rec, err := cr.Read()
		if err != nil {
			break
		}
		if labelIdx >= len(rec) {
			labels = append(labels, "-1")
			continue
		}
		labels = append(labels, strings.TrimSpace(rec[labelIdx]))
	}
	return labels, nil
}
