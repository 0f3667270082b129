package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

const (
	wavHeaderSize = 44
	bitsPerSample = 16
	numChannels   = 1
)

// ArtifactStore writes rendered waveforms as job-addressed WAV files under
// a single output directory
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Path returns the artifact location for a job id
func (s *ArtifactStore) Path(jobID string) string {
	return filepath.Join(s.dir, jobID+".wav")
}

// Write persists samples as a single-channel 16-bit PCM WAV file and
// returns the artifact path
func (s *ArtifactStore) Write(jobID string, samples []float64) (string, error) {
	path := s.Path(jobID)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()

	if err := encodeWAV(f, samples, SampleRate); err != nil {
		return "", fmt.Errorf("encode wav: %w", err)
	}
	return path, nil
}

// Remove deletes a job's artifact if present. Used to discard partial
// output when a job fails after rendering started.
func (s *ArtifactStore) Remove(jobID string) {
	_ = os.Remove(s.Path(jobID))
}

// encodeWAV writes the canonical 44-byte RIFF header followed by
// little-endian int16 frames
func encodeWAV(f *os.File, samples []float64, sampleRate int) error {
	dataSize := len(samples) * (bitsPerSample / 8) * numChannels
	byteRate := sampleRate * numChannels * (bitsPerSample / 8)
	blockAlign := numChannels * (bitsPerSample / 8)

	var header [wavHeaderSize]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := f.Write(header[:]); err != nil {
		return err
	}

	frames := make([]byte, 2*len(samples))
	for i, s := range samples {
		v := int16(math.Round(clampSample(s) * math.MaxInt16))
		binary.LittleEndian.PutUint16(frames[2*i:], uint16(v))
	}
	_, err := f.Write(frames)
	return err
}

func clampSample(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
