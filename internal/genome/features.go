package genome

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Default sliding-window geometry
const (
	DefaultWindow = 100
	DefaultStep   = 10
)

// Window is a contiguous [Start,End) slice of a sequence with its derived
// composition features. Immutable once created.
type Window struct {
	Start   int     `json:"start"`
	End     int     `json:"end"`
	GC      float64 `json:"gc"`      // G+C fraction, in [0,1]
	Entropy float64 `json:"entropy"` // Shannon entropy over ACGT, in [0,2] bits
}

// SlidingFeatures computes GC content and Shannon entropy over windows at
// offsets 0, step, 2*step, ... while offset+window <= len(seq). A sequence
// shorter than the window yields an empty slice, not an error. Pure and
// deterministic; windows share no state.
func SlidingFeatures(seq string, window, step int) []Window {
	if window <= 0 || step <= 0 {
		return nil
	}
	var out []Window
	for i := 0; i+window <= len(seq); i += step {
		w := seq[i : i+window]
		out = append(out, Window{
			Start:   i,
			End:     i + window,
			GC:      GCContent(w),
			Entropy: ShannonEntropy(w),
		})
	}
	return out
}

// GCContent returns the fraction of G and C symbols, 0 for an empty string
func GCContent(seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	gc := 0
	for i := 0; i < len(seq); i++ {
		if seq[i] == 'G' || seq[i] == 'C' {
			gc++
		}
	}
	return float64(gc) / float64(len(seq))
}

// ShannonEntropy returns the base-2 entropy of the per-base frequency
// distribution over {A,C,G,T}. Empty input yields 0.
func ShannonEntropy(seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	var counts [4]float64
	total := 0.0
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A':
			counts[0]++
		case 'C':
			counts[1]++
		case 'G':
			counts[2]++
		case 'T':
			counts[3]++
		default:
			continue
		}
		total++
	}
	if total == 0 {
		return 0
	}
	probs := make([]float64, 0, 4)
	for _, c := range counts {
		if c > 0 {
			probs = append(probs, c/total)
		}
	}
	// stat.Entropy works in nats; convert to bits
	return stat.Entropy(probs) / math.Ln2
}
