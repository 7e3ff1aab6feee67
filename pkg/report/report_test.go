package report

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidsmap/bidsmap/pkg/errors"
	"github.com/bidsmap/bidsmap/pkg/types"
)

func TestRecordOutcome(t *testing.T) {
	r := NewReporter()

	rule := &types.RuleDefinition{ID: "t1w"}
	r.RecordOutcome("series-004", types.Outcome{
		Status: types.StatusMatched, Dataformat: "DICOM", Category: "anat", Rule: rule,
	})
	r.RecordOutcome("series-005", types.Outcome{
		Status: types.StatusAmbiguous, Dataformat: "DICOM", Category: "anat",
		Rule: rule, ConflictingIDs: []string{"t1w-dixon"},
	})
	r.RecordOutcome("series-006", types.Outcome{
		Status: types.StatusUnmatched, Dataformat: "DICOM", Category: "anat",
	})

	s := r.Summary()
	assert.Equal(t, 3, s.Items)
	assert.Equal(t, 2, s.Matched)
	assert.Equal(t, 1, s.Ambiguous)
	assert.Equal(t, 1, s.Unmatched)
	assert.False(t, s.Clean())
	require.Len(t, s.Issues, 2)
	assert.Equal(t, errors.ErrAmbiguous, s.Issues[0].Code)
	assert.Equal(t, []string{"t1w-dixon"}, s.Issues[0].ConflictingIDs)
	assert.Equal(t, errors.ErrUnmatched, s.Issues[1].Code)
}

func TestRecordError(t *testing.T) {
	r := NewReporter()

	r.RecordError("series-007", errors.New(errors.ErrUnresolvedReference, "no field ProtocolName"))
	r.RecordError("catalog", errors.New(errors.ErrCyclicTemplate, "cycle"))
	r.RecordError("series-008", nil)

	s := r.Summary()
	assert.Equal(t, 0, s.Items)
	assert.Equal(t, 1, s.Unresolved)
	assert.Equal(t, 1, s.LoadFailures)
	assert.Len(t, s.Issues, 2)
}

func TestCleanSession(t *testing.T) {
	r := NewReporter()
	r.RecordOutcome("a", types.Outcome{Status: types.StatusMatched, Rule: &types.RuleDefinition{ID: "x"}})
	r.RecordIgnored("localizer-1")

	s := r.Summary()
	assert.True(t, s.Clean())
	assert.Equal(t, 1, s.Ignored)
}

func TestReporterConcurrent(t *testing.T) {
	r := NewReporter()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.RecordOutcome("item", types.Outcome{
				Status: types.StatusMatched, Rule: &types.RuleDefinition{ID: "x"},
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, r.Summary().Matched)
}
