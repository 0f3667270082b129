// Package music maps codon sequences to chords and scale-quantized,
// rhythm-assigned note events.
package music

import (
	"github.com/biosonic-labs/dna2music-api/internal/genome"
	"github.com/biosonic-labs/dna2music-api/internal/models"
)

const (
	// BasePitch is the chord table root origin (C3)
	BasePitch = 48

	// QuantizeBase is the reference pitch for scale quantization (C4)
	QuantizeBase = 60

	// DefaultVelocity is used when no rhythm rule overrides it
	DefaultVelocity = 100

	codonLen = 3
)

var bases = []byte{'A', 'C', 'G', 'T'}

// chordTable maps each of the 64 codons, in lexicographic ACGT product
// order, to a 3-voice chord: root = BasePitch + index*4, third = root+4,
// fifth = root+7.
var chordTable = buildChordTable()

// defaultChord backs codons that somehow escape the table (C major triad)
var defaultChord = models.Chord{60, 64, 67}

func buildChordTable() map[string]models.Chord {
	table := make(map[string]models.Chord, 64)
	i := 0
	for _, a := range bases {
		for _, b := range bases {
			for _, c := range bases {
				root := BasePitch + i*4
				table[string([]byte{a, b, c})] = models.Chord{root, root + 4, root + 7}
				i++
			}
		}
	}
	return table
}

// Codons partitions seq into non-overlapping length-3 groups, discarding a
// trailing remainder of 1-2 symbols
func Codons(seq string) []string {
	if len(seq) < codonLen {
		return nil
	}
	out := make([]string, 0, len(seq)/codonLen)
	for i := 0; i+codonLen <= len(seq); i += codonLen {
		out = append(out, seq[i:i+codonLen])
	}
	return out
}

// ComposeChords maps each codon of seq to its chord
func ComposeChords(seq string) []models.Chord {
	codons := Codons(seq)
	chords := make([]models.Chord, len(codons))
	for i, c := range codons {
		if chord, ok := chordTable[c]; ok {
			chords[i] = chord
		} else {
			chords[i] = defaultChord
		}
	}
	return chords
}

// RhythmRules maps GC bands to note durations in beats
type RhythmRules map[GCBand]float64

// DefaultRhythmRules: sparse content plays long, dense content plays short
func DefaultRhythmRules() RhythmRules {
	return RhythmRules{
		BandLow:    1.0,
		BandMedium: 0.5,
		BandHigh:   0.25,
	}
}

// QuantizePitch snaps pitch to the nearest member of the scale mask,
// preserving the original octave. Ties break toward the earlier mask entry.
func QuantizePitch(pitch int, mask []int, base int) int {
	if len(mask) == 0 {
		return pitch
	}
	rel := (pitch - base) % 12
	if rel < 0 {
		rel += 12
	}
	nearest := mask[0]
	best := abs(mask[0] - rel)
	for _, m := range mask[1:] {
		if d := abs(m - rel); d < best {
			best = d
			nearest = m
		}
	}
	return base + floorDiv(pitch-base, 12)*12 + nearest
}

// ToNoteEvents converts chords plus per-window features into a note-event
// sequence. The scale for chord i comes from feature window min(i, len-1);
// with no windows the whole sequence uses fallback. Notes are emitted in
// chord order, root-third-fifth within a chord, with Start equal to the
// chord index. Pure and deterministic.
func ToNoteEvents(chords []models.Chord, windows []genome.Window, rules RhythmRules, fallback Scale) []models.NoteEvent {
	if rules == nil {
		rules = DefaultRhythmRules()
	}
	events := make([]models.NoteEvent, 0, len(chords)*3)
	for i, chord := range chords {
		mask := fallback.Mask()
		duration := rules[BandMedium]
		if len(windows) > 0 {
			w := windows[min(i, len(windows)-1)]
			mask = ScaleForGC(w.GC).Mask()
			duration = rules[BandForGC(w.GC)]
		}
		for _, pitch := range chord {
			events = append(events, models.NoteEvent{
				Pitch:    QuantizePitch(pitch, mask, QuantizeBase),
				Start:    i,
				Duration: duration,
				Velocity: DefaultVelocity,
			})
		}
	}
	return events
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// floorDiv is integer division rounding toward negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
