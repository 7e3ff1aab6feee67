package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/types"
)

func TestMatchesAttributes(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name     string
		rule     types.RuleDefinition
		snapshot map[string]string
		want     bool
	}{
		{
			name: "case-insensitive substring match",
			rule: types.RuleDefinition{
				ID:         "t1w-dixon",
				Attributes: map[string]string{"SeriesDescription": "(?i).*t1.*dixon.*water.*"},
			},
			snapshot: map[string]string{"SeriesDescription": "T1_DIXON_WATER_320"},
			want:     true,
		},
		{
			name: "no match moves on",
			rule: types.RuleDefinition{
				ID:         "t1w-dixon",
				Attributes: map[string]string{"SeriesDescription": "(?i).*t1.*dixon.*water.*"},
			},
			snapshot: map[string]string{"SeriesDescription": "T2_HASTE"},
			want:     false,
		},
		{
			name: "substring search, not full match",
			rule: types.RuleDefinition{
				ID:         "sub",
				Attributes: map[string]string{"ProtocolName": "localizer"},
			},
			snapshot: map[string]string{"ProtocolName": "AAHead_localizer_32ch"},
			want:     true,
		},
		{
			name: "empty pattern is a wildcard",
			rule: types.RuleDefinition{
				ID:         "wild",
				Attributes: map[string]string{"SeriesDescription": ""},
			},
			snapshot: map[string]string{},
			want:     true,
		},
		{
			name: "missing snapshot field matches as empty string",
			rule: types.RuleDefinition{
				ID:         "missing",
				Attributes: map[string]string{"SeriesDescription": "^$"},
			},
			snapshot: map[string]string{},
			want:     true,
		},
		{
			name:     "empty predicate matches anything",
			rule:     types.RuleDefinition{ID: "catchall"},
			snapshot: map[string]string{"SeriesDescription": "whatever"},
			want:     true,
		},
		{
			name: "all fields must hold",
			rule: types.RuleDefinition{
				ID: "conj",
				Attributes: map[string]string{
					"Modality":          "MR",
					"SeriesDescription": "(?i)t1",
				},
			},
			snapshot: map[string]string{"Modality": "MR", "SeriesDescription": "T2_HASTE"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Matches(tt.rule, types.NewSnapshot(tt.snapshot), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesContainer(t *testing.T) {
	m := NewMatcher()

	rule := types.RuleDefinition{
		ID:         "derived",
		Attributes: map[string]string{"SeriesDescription": "(?i)dti"},
		Filesystem: types.FilesystemPredicate{
			Path:         "derived",
			SiblingCount: "^1$",
		},
	}
	snap := types.NewSnapshot(map[string]string{"SeriesDescription": "DTI_64dir"})

	ok, err := m.Matches(rule, snap, &types.ContainerInfo{
		Path:         "/data/sub-01/derived",
		Name:         "DTI_64dir",
		SiblingCount: 1,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// Same attributes, wrong folder
	ok, err = m.Matches(rule, snap, &types.ContainerInfo{
		Path:         "/data/sub-01/raw",
		SiblingCount: 1,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	// Filesystem predicate with no container info matches empty values
	ok, err = m.Matches(rule, snap, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesSizePattern(t *testing.T) {
	m := NewMatcher()

	rule := types.RuleDefinition{
		ID: "big",
		Filesystem: types.FilesystemPredicate{
			// Seven or more digits: at least 1 MB
			Size: `^\d{7,}$`,
		},
	}

	ok, err := m.Matches(rule, types.NewSnapshot(nil), &types.ContainerInfo{Size: 5242880})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Matches(rule, types.NewSnapshot(nil), &types.ContainerInfo{Size: 1024})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchesMalformedPattern(t *testing.T) {
	m := NewMatcher()

	rule := types.RuleDefinition{
		ID:         "broken",
		Attributes: map[string]string{"SeriesDescription": "(unclosed"},
	}

	_, err := m.Matches(rule, types.NewSnapshot(nil), nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedPattern))
}

func TestCompileCaches(t *testing.T) {
	m := NewMatcher()

	re1, err := m.compile("(?i)t1")
	require.NoError(t, err)
	re2, err := m.compile("(?i)t1")
	require.NoError(t, err)
	assert.Same(t, re1, re2)
}
