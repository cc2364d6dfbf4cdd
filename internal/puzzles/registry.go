// internal/puzzles/registry.go
package puzzles

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

// Validator is the single capability a puzzle variant exposes to the
// progression engine: evaluate a submission, report solved or not. The engine
// never depends on a specific variant's internals.
type Validator interface {
	// Evaluate reports whether the submission solves the puzzle.
	Evaluate(submission string) bool

	// ClientConfig returns the variant's configuration with every
	// answer-bearing field stripped, safe to send to clients.
	ClientConfig() map[string]interface{}
}

// decoder builds a Validator from a variant's raw puzzle_data payload.
type decoder func(raw json.RawMessage) (Validator, error)

// Registry is the closed catalogue of puzzle variants, keyed by type tag.
type Registry struct {
	decoders map[string]decoder
}

// NewRegistry returns a registry with every built-in variant registered.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]decoder)}
	registerBuiltins(r)
	return r
}

func (r *Registry) register(typeTag string, d decoder) {
	r.decoders[typeTag] = d
}

// Types returns the registered type tags, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.decoders))
	for t := range r.decoders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// validatorFor decodes the puzzle's configuration into its variant validator.
func (r *Registry) validatorFor(p models.Puzzle) (Validator, error) {
	d, ok := r.decoders[p.PuzzleType]
	if !ok {
		return nil, fmt.Errorf("unknown puzzle type %q", p.PuzzleType)
	}
	v, err := d(p.PuzzleData)
	if err != nil {
		return nil, fmt.Errorf("decode %s config for puzzle %s: %w", p.PuzzleType, p.ID, err)
	}
	return v, nil
}

// CheckAnswer validates a submission against a puzzle. Typed variants use
// their own predicate; puzzles without a registered variant fall back to a
// trimmed, case-insensitive comparison with the stored answer column.
func (r *Registry) CheckAnswer(p models.Puzzle, submission string) (bool, error) {
	if _, ok := r.decoders[p.PuzzleType]; ok {
		v, err := r.validatorFor(p)
		if err != nil {
			return false, err
		}
		return v.Evaluate(submission), nil
	}
	if p.Answer == "" {
		return false, fmt.Errorf("puzzle %s has no validator and no answer", p.ID)
	}
	return strings.EqualFold(strings.TrimSpace(submission), strings.TrimSpace(p.Answer)), nil
}

// ForClient returns a copy of the puzzle with the answer column removed and
// the variant configuration reduced to its client-safe fields. This is the
// only shape of a puzzle that may leave the server before validation.
func (r *Registry) ForClient(p models.Puzzle) (models.Puzzle, error) {
	out := p
	out.Answer = ""
	if _, ok := r.decoders[p.PuzzleType]; !ok {
		out.PuzzleData = nil
		return out, nil
	}
	v, err := r.validatorFor(p)
	if err != nil {
		return models.Puzzle{}, err
	}
	data, err := json.Marshal(v.ClientConfig())
	if err != nil {
		return models.Puzzle{}, fmt.Errorf("marshal client config for puzzle %s: %w", p.ID, err)
	}
	out.PuzzleData = data
	return out, nil
}
