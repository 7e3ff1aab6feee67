package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidsmap/bidsmap/pkg/errors"
)

func TestParseXML(t *testing.T) {
	data := []byte(`
<header>
  <SeriesDescription>T1_DIXON_WATER_320</SeriesDescription>
  <attr name="ProtocolName">t1_mprage</attr>
  <EchoTime> 2.46 </EchoTime>
</header>`)

	snap, err := ParseXML(data)
	require.NoError(t, err)

	assert.Equal(t, "T1_DIXON_WATER_320", snap.Get("SeriesDescription"))
	assert.Equal(t, "t1_mprage", snap.Get("ProtocolName"))
	assert.Equal(t, "2.46", snap.Get("EchoTime"))
	assert.Equal(t, 3, snap.Len())
}

func TestParseXMLMalformed(t *testing.T) {
	_, err := ParseXML([]byte(`<header><unclosed>`))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSnapshotParse))
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{"SeriesDescription": "T2_HASTE", "SeriesNumber": 7, "MRAcquisitionType": null}`)

	snap, err := ParseJSON(data)
	require.NoError(t, err)

	assert.Equal(t, "T2_HASTE", snap.Get("SeriesDescription"))
	assert.Equal(t, "7", snap.Get("SeriesNumber"))
	assert.True(t, snap.Has("MRAcquisitionType"))
	assert.Equal(t, "", snap.Get("MRAcquisitionType"))
}

func TestParseJSONRejectsNested(t *testing.T) {
	_, err := ParseJSON([]byte(`{"PatientInfo": {"Name": "x"}}`))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSnapshotParse))
}

func TestParseYAML(t *testing.T) {
	data := []byte("SeriesDescription: fmri_task\nRepetitionTime: 2.0\n")

	snap, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "fmri_task", snap.Get("SeriesDescription"))
	assert.Equal(t, "2", snap.Get("RepetitionTime"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "series.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"SeriesDescription": "DTI"}`), 0644))

	snap, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "DTI", snap.Get("SeriesDescription"))

	_, err = LoadFile(filepath.Join(dir, "series.csv"))
	require.Error(t, err)
}
