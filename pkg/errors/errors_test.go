package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrMalformedTemplate, "unknown base template")
	assert.Equal(t, ErrMalformedTemplate, err.Code)
	assert.Equal(t, "[MALFORMED_TEMPLATE] unknown base template", err.Error())
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("yaml: line 12: mapping values are not allowed")
	err := Wrap(inner, ErrCatalogLoad, "failed to parse catalog")
	require.NotNil(t, err)
	assert.Equal(t, inner, stderrors.Unwrap(err))
	assert.Contains(t, err.Error(), "CATALOG_LOAD")
	assert.Contains(t, err.Error(), "mapping values")

	assert.Nil(t, Wrap(nil, ErrCatalogLoad, "ignored"))
}

func TestIsErrorCode(t *testing.T) {
	err := Newf(ErrCyclicTemplate, "template %q references itself", "anat_base")
	assert.True(t, IsErrorCode(err, ErrCyclicTemplate))
	assert.False(t, IsErrorCode(err, ErrMalformedPattern))

	wrapped := fmt.Errorf("while loading: %w", err)
	assert.True(t, IsErrorCode(wrapped, ErrCyclicTemplate))

	assert.False(t, IsErrorCode(stderrors.New("plain"), ErrCyclicTemplate))
	assert.Equal(t, ErrUnknown, GetErrorCode(stderrors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrUnresolvedReference, "field not in snapshot").
		WithDetail("field", "ProtocolName").
		WithDetail("rule", "anat-t1w")
	assert.Equal(t, "ProtocolName", err.Details["field"])
	assert.Equal(t, "anat-t1w", err.Details["rule"])
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrMalformedPattern, "bad regex")))
	assert.True(t, IsFatal(New(ErrCyclicTemplate, "cycle")))
	assert.False(t, IsFatal(New(ErrUnmatched, "no rule matched")))
	assert.False(t, IsFatal(New(ErrAmbiguous, "two rules matched")))
	assert.False(t, IsFatal(New(ErrUnresolvedReference, "missing field")))
}
