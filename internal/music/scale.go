package music

// Scale is a closed set of supported scales, each carrying its pitch-class
// mask as data. Replaces stringly-typed mode dispatch.
type Scale int

const (
	ScaleMajor Scale = iota
	ScalePentatonic
	ScaleBlues
	ScaleCinematic
	ScaleMinor
)

// GC-content thresholds driving scale and rhythm selection. Empirically
// chosen bands, not validated musical truths.
const (
	gcLowThreshold  = 0.4
	gcMidThreshold  = 0.6
	gcHighThreshold = 0.7
)

var scaleMasks = map[Scale][]int{
	ScaleMajor:      {0, 2, 4, 5, 7, 9, 11},
	ScalePentatonic: {0, 2, 4, 7, 9},
	ScaleBlues:      {0, 3, 5, 6, 7, 10},
	ScaleCinematic:  {0, 2, 4, 6, 7, 9, 11}, // lydian
	ScaleMinor:      {0, 2, 3, 5, 7, 8, 10},
}

func (s Scale) String() string {
	switch s {
	case ScaleMajor:
		return "major"
	case ScalePentatonic:
		return "pentatonic"
	case ScaleBlues:
		return "blues"
	case ScaleCinematic:
		return "cinematic"
	case ScaleMinor:
		return "minor"
	default:
		return "unknown"
	}
}

// Mask returns the ordered semitone offsets (0-11) allowed by the scale
func (s Scale) Mask() []int {
	if m, ok := scaleMasks[s]; ok {
		return m
	}
	return scaleMasks[ScalePentatonic]
}

// ScaleForGC selects a scale from a window's GC content. The bands form a
// total, non-overlapping partition of [0,1].
func ScaleForGC(gc float64) Scale {
	switch {
	case gc < gcLowThreshold:
		return ScaleMajor
	case gc < gcMidThreshold:
		return ScalePentatonic
	case gc < gcHighThreshold:
		return ScaleBlues
	default:
		return ScaleCinematic
	}
}

// GCBand collapses GC content to the three-band rhythm key
type GCBand int

const (
	BandLow GCBand = iota
	BandMedium
	BandHigh
)

// BandForGC maps GC content to its rhythm band: <0.4 low, [0.4,0.6) medium,
// >=0.6 high
func BandForGC(gc float64) GCBand {
	switch {
	case gc < gcLowThreshold:
		return BandLow
	case gc < gcMidThreshold:
		return BandMedium
	default:
		return BandHigh
	}
}
