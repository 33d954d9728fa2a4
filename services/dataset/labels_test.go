package dataset_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"har-prep/models"
	"har-prep/services/dataset"
)

// TestNewLabelMap_OrderIndependent verifies the mapping is a pure
// function of the label set: vocabulary order must not change codes.
func TestNewLabelMap_OrderIndependent(t *testing.T) {
	a := dataset.NewLabelMap("v1", []string{"WALK", "SIT", "RUN", "STAND"}, nil)
	b := dataset.NewLabelMap("v1", []string{"STAND", "RUN", "WALK", "SIT"}, nil)

	assert.Equal(t, a.Codes, b.Codes)
	assert.Equal(t, []string{"RUN", "SIT", "STAND", "WALK"}, a.Labels())
}

// TestLabelMap_Aliases checks alias resolution and that the unlabeled
// marker resolves to the reserved code without occupying a class slot.
func TestLabelMap_Aliases(t *testing.T) {
	aliases := map[string]string{"WALKING_SPONTANEOUS": "W_SPONT"}
	lm := dataset.NewLabelMap("v1", []string{"W_SPONT", "WALKING_SPONTANEOUS", "RUN", "-1"}, aliases)

	require.Len(t, lm.Codes, 2, "alias and unlabeled marker assign no extra codes")

	canonical, err := lm.Code("W_SPONT")
	require.NoError(t, err)
	aliased, err := lm.Code("WALKING_SPONTANEOUS")
	require.NoError(t, err)
	assert.Equal(t, canonical, aliased)

	unlabeled, err := lm.Code("-1")
	require.NoError(t, err)
	assert.Equal(t, models.UnlabeledCode, unlabeled)

	_, err = lm.Code("CARTWHEEL")
	assert.ErrorIs(t, err, dataset.ErrUnknownLabel)
}

// TestLabelMap_SaveLoad round-trips the persisted mapping.
func TestLabelMap_SaveLoad(t *testing.T) {
	lm := dataset.NewLabelMap("hiaac-v1",
		[]string{"STANDING", "SITTING", "RUN"},
		map[string]string{"STAND": "STANDING"})

	path := filepath.Join(t.TempDir(), "label_map.yaml")
	require.NoError(t, lm.Save(path))

	loaded, err := dataset.LoadLabelMap(path)
	require.NoError(t, err)
	assert.Equal(t, lm.Version, loaded.Version)
	assert.Equal(t, lm.Codes, loaded.Codes)
	assert.Equal(t, lm.Aliases, loaded.Aliases)
}
