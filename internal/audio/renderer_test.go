package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/biosonic-labs/dna2music-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_PeakNormalization(t *testing.T) {
	notes := []models.NoteEvent{
		{Pitch: 60, Velocity: 30},
		{Pitch: 64, Velocity: 100},
		{Pitch: 67, Velocity: 80},
	}
	samples := Render(notes)

	require.Len(t, samples, 3*samplesPerNote)

	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	// Any nonzero velocity means the peak normalizes to exactly 1.0
	assert.InDelta(t, 1.0, peak, 1e-12)
}

func TestRender_EmptyNotes(t *testing.T) {
	samples := Render(nil)
	assert.Empty(t, samples)
}

func TestRender_AllZeroVelocity(t *testing.T) {
	notes := []models.NoteEvent{
		{Pitch: 60, Velocity: 0},
		{Pitch: 72, Velocity: 0},
	}
	samples := Render(notes)

	require.Len(t, samples, 2*samplesPerNote)
	for _, s := range samples {
		assert.Zero(t, s)
	}
}

func TestFrequency(t *testing.T) {
	assert.InDelta(t, 440.0, Frequency(69), 1e-9)  // A4
	assert.InDelta(t, 880.0, Frequency(81), 1e-9)  // A5
	assert.InDelta(t, 261.63, Frequency(60), 0.01) // middle C
}

func TestArtifactStore_WriteWAV(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir)
	require.NoError(t, err)

	notes := []models.NoteEvent{{Pitch: 69, Velocity: 100}}
	samples := Render(notes)

	path, err := store.Write("job-123", samples)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "job-123.wav"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), wavHeaderSize)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(SampleRate), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))

	dataSize := binary.LittleEndian.Uint32(data[40:44])
	assert.Equal(t, uint32(2*len(samples)), dataSize)
	assert.Len(t, data, wavHeaderSize+2*len(samples))
}

func TestArtifactStore_EmptyWaveform(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Write("empty-job", nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, wavHeaderSize)
	assert.Zero(t, binary.LittleEndian.Uint32(data[40:44]))
}

func TestArtifactStore_Remove(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Write("gone", []float64{0.5, -0.5})
	require.NoError(t, err)

	store.Remove("gone")
	_, err = os.Stat(store.Path("gone"))
	assert.True(t, os.IsNotExist(err))

	// Removing a missing artifact is harmless
	store.Remove("never-existed")
}
