package controller

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"har-prep/models"
	"har-prep/services/align"
	"har-prep/services/dataset"
	"har-prep/services/ingest"
	"har-prep/utils"
	"har-prep/views"
)

// PipelineController runs the full preparation pipeline:
//
//	SessionSource ──► quality gate ──► aligner        (per session)
//	       aligned sessions ──► aggregator ──► balancer ──► splitter
//	                                   │
//	                  dataset.csv + train/validation/test.csv
//	                  + label_map.yaml + manifest.yaml
//
// Per-session failures (bad signal, empty modality, metadata mismatch)
// are logged with the session identity and the session is dropped; the
// run only aborts on whole-table invariant violations (empty class,
// unsatisfiable split) or I/O failure.
type PipelineController struct {
	cfg    *utils.PipelineConfig
	source ingest.SessionSource
	outDir string

	sessionsAligned int
	sessionsDropped int
}

// NewPipelineController prepares the session-named output directory and
// wires the source.
func NewPipelineController(cfg *utils.PipelineConfig, source ingest.SessionSource) (*PipelineController, error) {
	outDir := filepath.Join(cfg.Storage.BaseDir, utils.SessionName(cfg.Storage.SessionPrefix))

	if !cfg.Storage.Overwrite {
		if _, err := os.Stat(outDir); err == nil {
			return nil, fmt.Errorf("output dir %s already exists (overwrite=false)", outDir)
		}
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	return &PipelineController{cfg: cfg, source: source, outDir: outDir}, nil
}

// OutDir returns the output directory of this run.
func (pc *PipelineController) OutDir() string { return pc.outDir }

// Run executes the pipeline and returns the persisted run manifest.
// ctx cancellation is honored between sessions; individual stages run to
// completion once started.
func (pc *PipelineController) Run(ctx context.Context) (*views.RunManifest, error) {
	sessions, err := pc.source.Read(pc.cfg.Dataset.Root)
	if err != nil {
		return nil, err
	}
	utils.L().Info("read %d sessions from %s", len(sessions), pc.cfg.Dataset.Root)

	aligned, err := pc.alignSessions(ctx, sessions)
	if err != nil {
		return nil, err
	}
	utils.L().Info("aligned %d sessions (%d dropped)", pc.sessionsAligned, pc.sessionsDropped)
	if len(aligned) == 0 {
		return nil, fmt.Errorf("no sessions survived alignment")
	}

	lm := pc.labelMap(aligned)
	full, counts, err := dataset.Aggregate(aligned, lm)
	if err != nil {
		return nil, err
	}
	utils.L().Info("aggregated dataset: %d rows, %d (user, code, pos) groups, %d classes",
		full.Len(), len(counts), len(full.LabeledCodes()))

	rng := rand.New(rand.NewSource(pc.cfg.Pipeline.Seed))
	balanced, err := pc.balance(full, lm, rng)
	if err != nil {
		return nil, err
	}

	p := pc.cfg.Pipeline.Proportions
	result, err := dataset.Split(balanced, dataset.SplitOptions{
		Proportions: dataset.Proportions{Train: p.Train, Validation: p.Validation, Test: p.Test},
		ByUser:      pc.cfg.Pipeline.UserExclusiveSplits,
	}, rng)
	if err != nil {
		return nil, err
	}
	pc.sanityReport(result)

	return pc.export(balanced, result, lm)
}

func (pc *PipelineController) alignSessions(ctx context.Context, sessions []ingest.SessionTables) ([]*models.Dataset, error) {
	opts := align.Options{Reference: models.Modality(pc.cfg.Pipeline.ReferenceModality)}
	quality := ingest.QualityOptions{
		ReferenceRateHz: pc.cfg.Quality.ReferenceRateHz,
		MaxAmplitude:    pc.cfg.Quality.MaxAmplitude,
	}

	var aligned []*models.Dataset
	for _, sess := range sessions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pc.cfg.Quality.Enabled {
			if err := pc.checkQuality(sess, quality); err != nil {
				utils.L().Warn("session dropped: %v", err)
				pc.sessionsDropped++
				continue
			}
		}
		table, err := align.Align(sess.Series, opts)
		switch {
		case err == nil:
			aligned = append(aligned, table)
			pc.sessionsAligned++
		case errors.Is(err, align.ErrEmptySeries),
			errors.Is(err, align.ErrSessionMismatch),
			errors.Is(err, align.ErrUnsortedSeries):
			utils.L().Warn("session dropped: %v", err)
			pc.sessionsDropped++
		default:
			return nil, err
		}
	}
	return aligned, nil
}

func (pc *PipelineController) checkQuality(sess ingest.SessionTables, opts ingest.QualityOptions) error {
	for _, s := range sess.Series {
		if err := ingest.CheckSeries(s, opts); err != nil {
			return err
		}
	}
	return nil
}

// labelMap returns the configured mapping, or derives one from the
// observed vocabulary when no codes are pinned in the config.
func (pc *PipelineController) labelMap(aligned []*models.Dataset) *dataset.LabelMap {
	lc := pc.cfg.Labels
	if len(lc.Codes) > 0 {
		return &dataset.LabelMap{Version: lc.Version, Codes: lc.Codes, Aliases: lc.Aliases}
	}
	version := lc.Version
	if version == "" {
		version = "derived-v1"
	}
	lm := dataset.NewLabelMap(version, dataset.Vocabulary(aligned), lc.Aliases)
	utils.L().Info("derived label map %s: %v", lm.Version, lm.Labels())
	return lm
}

func (pc *PipelineController) balance(full *models.Dataset, lm *dataset.LabelMap, rng *rand.Rand) (*models.Dataset, error) {
	switch pc.cfg.Pipeline.MinClassPolicy {
	case utils.PolicyClass:
		balanced, err := dataset.BalanceToMinimumClass(full, lm, rng)
		if err != nil {
			return nil, err
		}
		utils.L().Info("balanced to minimum class: %d → %d rows", full.Len(), balanced.Len())
		return balanced, nil
	case utils.PolicyClassUser:
		balanced, err := dataset.BalanceToMinimumClassAndUser(full, rng)
		if err != nil {
			return nil, err
		}
		utils.L().Info("balanced to minimum (class, user): %d → %d rows", full.Len(), balanced.Len())
		return balanced, nil
	default:
		return full, nil
	}
}

// sanityReport logs each split's size, share, class set and user set,
// so a bad release is visible without re-running with verbose tracing.
func (pc *PipelineController) sanityReport(result dataset.SplitResult) {
	splits := result.Datasets()
	total := 0
	for _, ds := range splits {
		total += ds.Len()
	}
	utils.L().Info("── split report ──────────────────")
	for i, ds := range splits {
		share := 0.0
		if total > 0 {
			share = float64(ds.Len()) / float64(total) * 100
		}
		utils.L().Info("  %-10s  %7d rows (%5.2f%%)  classes=%v  users=%v",
			dataset.SplitNames[i], ds.Len(), share, ds.LabeledCodes(), ds.Users())
	}
	utils.L().Info("──────────────────────────────────")
}

func (pc *PipelineController) export(balanced *models.Dataset, result dataset.SplitResult, lm *dataset.LabelMap) (*views.RunManifest, error) {
	csvCfg := pc.cfg.Storage.CSV

	manifest := views.NewRunManifest()
	manifest.DatasetRoot = pc.cfg.Dataset.Root
	manifest.Seed = pc.cfg.Pipeline.Seed
	manifest.ReferenceModality = pc.cfg.Pipeline.ReferenceModality
	manifest.MinClassPolicy = pc.cfg.Pipeline.MinClassPolicy
	p := pc.cfg.Pipeline.Proportions
	manifest.Proportions["train"] = p.Train
	manifest.Proportions["validation"] = p.Validation
	manifest.Proportions["test"] = p.Test
	manifest.LabelMapVersion = lm.Version
	manifest.SessionsAligned = pc.sessionsAligned
	manifest.SessionsDropped = pc.sessionsDropped
	manifest.DatasetRows = balanced.Len()

	files := []struct {
		name string
		ds   *models.Dataset
	}{
		{views.FileDataset, balanced},
		{views.FileTrain, result.Train},
		{views.FileValidation, result.Validation},
		{views.FileTest, result.Test},
	}
	for _, f := range files {
		rows, err := views.ExportDataset(pc.outDir, f.name, f.ds, csvCfg.BufferSizeKB, csvCfg.WriteHeader)
		if err != nil {
			return nil, err
		}
		utils.L().Info("wrote %s (%d rows)", f.name, rows)
	}
	manifest.SplitRows["train"] = result.Train.Len()
	manifest.SplitRows["validation"] = result.Validation.Len()
	manifest.SplitRows["test"] = result.Test.Len()

	if err := lm.Save(filepath.Join(pc.outDir, views.FileLabelMap)); err != nil {
		return nil, err
	}
	if err := manifest.Save(pc.outDir); err != nil {
		return nil, err
	}
	return manifest, nil
}
