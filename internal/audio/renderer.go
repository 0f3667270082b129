// Package audio renders note-event sequences into PCM waveforms and
// persists them as WAV artifacts.
package audio

import (
	"math"

	"github.com/biosonic-labs/dna2music-api/internal/models"
	"gonum.org/v1/gonum/floats"
)

const (
	// SampleRate of all rendered audio
	SampleRate = 44100

	// NoteDuration is fixed per note. The baseline renderer ignores each
	// note's own Duration field; a limitation carried over intentionally.
	NoteDuration = 0.1

	// A4 tuning reference
	refFrequency = 440.0
	refPitch     = 69
)

var samplesPerNote = int(SampleRate * NoteDuration)

// Render synthesizes a monophonic waveform: one pure sine tone per note in
// emission order, amplitude scaled by velocity/127, then peak-normalized to
// 1.0. An empty note list or all-zero velocities yields the samples
// unnormalized (silent or empty) rather than a division by zero.
func Render(notes []models.NoteEvent) []float64 {
	samples := make([]float64, 0, len(notes)*samplesPerNote)
	for _, note := range notes {
		freq := Frequency(note.Pitch)
		amp := float64(note.Velocity) / 127.0
		for i := 0; i < samplesPerNote; i++ {
			t := float64(i) / SampleRate
			samples = append(samples, amp*math.Sin(2*math.Pi*freq*t))
		}
	}

	if len(samples) == 0 {
		return samples
	}
	peak := floats.Max(samples)
	if m := -floats.Min(samples); m > peak {
		peak = m
	}
	if peak > 0 {
		floats.Scale(1/peak, samples)
	}
	return samples
}

// Frequency converts a MIDI pitch to Hz in 12-tone equal temperament
func Frequency(pitch int) float64 {
	return refFrequency * math.Pow(2, float64(pitch-refPitch)/12.0)
}
