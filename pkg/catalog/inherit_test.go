package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/types"
)

func TestFlattenRuleChained(t *testing.T) {
	templates := map[string]types.RuleDefinition{
		"grandparent": {
			Attributes: map[string]string{"Modality": "MR"},
			Labels: types.LabelTemplate{
				"suffix": {Value: "T1w"},
				"acq":    {Value: "<ProtocolName>"},
			},
		},
		"parent": {
			Base:       "grandparent",
			Attributes: map[string]string{"SeriesDescription": "(?i)t1"},
			Labels: types.LabelTemplate{
				"acq": {Value: "highres"},
			},
		},
	}

	child := types.RuleDefinition{
		ID:   "child",
		Base: "parent",
		Labels: types.LabelTemplate{
			"run": {Value: "<<runindex>>"},
		},
	}

	flat, err := flattenRule(child, templates)
	require.NoError(t, err)

	assert.Equal(t, "child", flat.ID)
	assert.Empty(t, flat.Base)
	assert.Equal(t, "MR", flat.Attributes["Modality"])
	assert.Equal(t, "(?i)t1", flat.Attributes["SeriesDescription"])
	// Override from the middle of the chain wins over the grandparent
	assert.Equal(t, "highres", flat.Labels["acq"].Value)
	// Inherited, never overridden
	assert.Equal(t, "T1w", flat.Labels["suffix"].Value)
	assert.Equal(t, "<<runindex>>", flat.Labels["run"].Value)
}

func TestFlattenRuleDoesNotMutateBase(t *testing.T) {
	templates := map[string]types.RuleDefinition{
		"base": {
			Attributes: map[string]string{"Modality": "MR"},
			Labels:     types.LabelTemplate{"suffix": {Value: "T1w"}},
		},
	}

	child := types.RuleDefinition{
		ID:         "child",
		Base:       "base",
		Attributes: map[string]string{"Modality": "CT"},
		Labels:     types.LabelTemplate{"suffix": {Value: "T2w"}},
	}

	_, err := flattenRule(child, templates)
	require.NoError(t, err)

	assert.Equal(t, "MR", templates["base"].Attributes["Modality"])
	assert.Equal(t, "T1w", templates["base"].Labels["suffix"].Value)
}

func TestFlattenRuleCycle(t *testing.T) {
	templates := map[string]types.RuleDefinition{
		"a": {Base: "b"},
		"b": {Base: "a"},
	}

	_, err := flattenRule(types.RuleDefinition{ID: "r", Base: "a"}, templates)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCyclicTemplate))
}

func TestFlattenRuleSelfReference(t *testing.T) {
	templates := map[string]types.RuleDefinition{
		"a": {Base: "a"},
	}

	_, err := flattenRule(types.RuleDefinition{ID: "r", Base: "a"}, templates)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCyclicTemplate))
}

func TestFlattenRuleFilesystemOverride(t *testing.T) {
	templates := map[string]types.RuleDefinition{
		"base": {
			Filesystem: types.FilesystemPredicate{Path: "series_\\d+", SiblingCount: "^1\\d\\d$"},
		},
	}

	child := types.RuleDefinition{
		ID:         "child",
		Base:       "base",
		Filesystem: types.FilesystemPredicate{Path: "localizer"},
	}

	flat, err := flattenRule(child, templates)
	require.NoError(t, err)
	assert.Equal(t, "localizer", flat.Filesystem.Path)
	assert.Equal(t, "^1\\d\\d$", flat.Filesystem.SiblingCount)
}
