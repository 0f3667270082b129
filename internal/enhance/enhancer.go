// Package enhance holds the pluggable note-enhancement stage. The pipeline
// always calls through the NoteEnhancer interface; enhancement failure is
// never pipeline-fatal.
package enhance

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/biosonic-labs/dna2music-api/internal/models"
)

// NoteEnhancer may reorder or perturb a note sequence. Implementations must
// return a sequence of the same length.
type NoteEnhancer interface {
	Enhance(ctx context.Context, notes []models.NoteEvent) ([]models.NoteEvent, error)
}

// Identity is the pass-through enhancer used when no enhancement is
// configured or an external stage is unavailable
type Identity struct{}

func (Identity) Enhance(_ context.Context, notes []models.NoteEvent) ([]models.NoteEvent, error) {
	return notes, nil
}

// Jitter applies seeded pseudo-random pitch and velocity variation. The
// variation is a pure function of the seed and the note sequence, so the
// same input always jitters the same way regardless of which worker runs it
// or how many jobs ran before. Enhance is safe for concurrent use.
type Jitter struct {
	seed int64
}

func NewJitter(seed int64) *Jitter {
	return &Jitter{seed: seed}
}

func (j *Jitter) Enhance(_ context.Context, notes []models.NoteEvent) ([]models.NoteEvent, error) {
	rng := rand.New(rand.NewSource(j.seed ^ int64(fingerprint(notes))))
	out := make([]models.NoteEvent, len(notes))
	for i, n := range notes {
		n.Pitch += rng.Intn(5) - 2 // [-2, 2]
		delta := rng.Intn(21) - 10 // [-10, 10]
		n.Velocity = clamp(n.Velocity+delta, 0, 127)
		out[i] = n
	}
	return out, nil
}

// fingerprint folds the note sequence into a stable 64-bit value used to
// derive the per-call RNG source
func fingerprint(notes []models.NoteEvent) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, n := range notes {
		binary.LittleEndian.PutUint64(buf[:], uint64(n.Pitch))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(n.Start))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(n.Duration))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(n.Velocity))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// External posts the note sequence to an ML enhancement service and expects
// the same-length sequence back
type External struct {
	url    string
	client *http.Client
}

func NewExternal(url string, timeout time.Duration) *External {
	return &External{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type enhanceRequest struct {
	Notes []models.NoteEvent `json:"notes"`
}

type enhanceResponse struct {
	Notes []models.NoteEvent `json:"notes"`
}

func (e *External) Enhance(ctx context.Context, notes []models.NoteEvent) ([]models.NoteEvent, error) {
	body, err := json.Marshal(enhanceRequest{Notes: notes})
	if err != nil {
		return nil, fmt.Errorf("marshal notes: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call enhancement service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enhancement service returned %d", resp.StatusCode)
	}

	var out enhanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode enhanced notes: %w", err)
	}
	if len(out.Notes) != len(notes) {
		return nil, fmt.Errorf("enhancement changed note count: sent %d, got %d", len(notes), len(out.Notes))
	}
	return out.Notes, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
