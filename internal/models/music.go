package models

// NoteEvent represents a single musical note with timing and pitch information
type NoteEvent struct {
	Pitch    int     `json:"pitch"`    // MIDI note number
	Start    int     `json:"start"`    // Beat position (chord index, not wall-clock time)
	Duration float64 `json:"duration"` // Beats
	Velocity int     `json:"velocity"` // 0-127
}

// Chord is a fixed 3-voice chord: root, third, fifth
type Chord [3]int

// RenderResult is the payload stored on a completed job
type RenderResult struct {
	AudioPath      string      `json:"audio_path"`
	NoteCount      int         `json:"note_count"`
	SequenceLength int         `json:"sequence_length"`
	Notes          []NoteEvent `json:"notes"` // Bounded preview, not the full list
}
