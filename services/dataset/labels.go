package dataset

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"har-prep/models"
)

// UnlabeledLabel is the raw annotation marking transition/unlabeled
// trials; it always maps to models.UnlabeledCode.
const UnlabeledLabel = "-1"

// LabelMap is the explicit, versioned mapping from raw activity labels to
// integer activity codes. It is passed into aggregation and persisted
// alongside the output dataset, so regenerated releases keep stable codes
// without any process-wide registry.
//
// Aliases let several raw spellings share one canonical label (e.g.
// "WALKING_SPONTANEOUS" → "W_SPONT") before code lookup.
type LabelMap struct {
	Version string            `yaml:"version"`
	Codes   map[string]int    `yaml:"codes"`
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// NewLabelMap derives a mapping from an observed label vocabulary.
// Codes are assigned by lexicographic order of the canonical
// (alias-resolved) labels, so the result is a pure function of the label
// set: the same vocabulary yields the same codes regardless of the order
// sessions were read in. UnlabeledLabel is never assigned a code.
func NewLabelMap(version string, vocabulary []string, aliases map[string]string) *LabelMap {
	lm := &LabelMap{
		Version: version,
		Codes:   make(map[string]int),
		Aliases: aliases,
	}
	canon := make(map[string]struct{})
	for _, l := range vocabulary {
		l = lm.canonical(l)
		if l == UnlabeledLabel || l == "" {
			continue
		}
		canon[l] = struct{}{}
	}
	labels := make([]string, 0, len(canon))
	for l := range canon {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for code, l := range labels {
		lm.Codes[l] = code
	}
	return lm
}

func (lm *LabelMap) canonical(label string) string {
	if c, ok := lm.Aliases[label]; ok {
		return c
	}
	return label
}

// Code resolves a raw label to its activity code. UnlabeledLabel and the
// empty label resolve to models.UnlabeledCode; any other label missing
// from the map is ErrUnknownLabel.
func (lm *LabelMap) Code(label string) (int, error) {
	label = lm.canonical(label)
	if label == UnlabeledLabel || label == "" {
		return models.UnlabeledCode, nil
	}
	code, ok := lm.Codes[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q (map version %s)", ErrUnknownLabel, label, lm.Version)
	}
	return code, nil
}

// Labels returns the canonical labels sorted by their code.
func (lm *LabelMap) Labels() []string {
	labels := make([]string, 0, len(lm.Codes))
	for l := range lm.Codes {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return lm.Codes[labels[i]] < lm.Codes[labels[j]] })
	return labels
}

// Save persists the mapping as yaml next to the output dataset.
func (lm *LabelMap) Save(path string) error {
	data, err := yaml.Marshal(lm)
	if err != nil {
		return fmt.Errorf("marshal label map: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write label map: %w", err)
	}
	return nil
}

// LoadLabelMap reads a previously persisted mapping.
func LoadLabelMap(path string) (*LabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label map: %w", err)
	}
	var lm LabelMap
	if err := yaml.Unmarshal(data, &lm); err != nil {
		return nil, fmt.Errorf("parse label map: %w", err)
	}
	return &lm, nil
}
