// internal/puzzles/registry_test.go
package puzzles

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toastaspiring/data-ghosts-sub001/internal/models"
)

func puzzle(typeTag string, data string) models.Puzzle {
	return models.Puzzle{
		ID:         uuid.New(),
		PuzzleType: typeTag,
		PuzzleData: json.RawMessage(data),
	}
}

func TestCheckAnswerVariants(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		name    string
		puzzle  models.Puzzle
		correct []string
		wrong   []string
	}{
		{
			name:    "access_code ignores case and whitespace",
			puzzle:  puzzle("access_code", `{"code":"XK42"}`),
			correct: []string{"XK42", " xk42 "},
			wrong:   []string{"XK43", ""},
		},
		{
			name:    "multiple_choice matches index",
			puzzle:  puzzle("multiple_choice", `{"question":"q","options":["a","b","c"],"correct_index":2}`),
			correct: []string{"2", " 2 "},
			wrong:   []string{"0", "c", "two"},
		},
		{
			name:    "sequence requires full order",
			puzzle:  puzzle("sequence", `{"items":["alpha","beta","gamma"]}`),
			correct: []string{"alpha,beta,gamma", "Alpha, Beta, Gamma"},
			wrong:   []string{"beta,alpha,gamma", "alpha,beta"},
		},
		{
			name:    "anagram",
			puzzle:  puzzle("anagram", `{"word":"ghost"}`),
			correct: []string{"ghost", "GHOST"},
			wrong:   []string{"tosgh"},
		},
		{
			name:    "cipher compares plaintext",
			puzzle:  puzzle("cipher", `{"plaintext":"open sesame","shift":3}`),
			correct: []string{"open sesame", "OPEN SESAME"},
			wrong:   []string{"rshq vhvdph"},
		},
		{
			name:    "signal_tuning within tolerance",
			puzzle:  puzzle("signal_tuning", `{"target":440,"tolerance":5,"min":0,"max":1000}`),
			correct: []string{"440", "435", "445"},
			wrong:   []string{"434", "446", "not a number"},
		},
		{
			name:    "binary_decode",
			puzzle:  puzzle("binary_decode", `{"word":"echo"}`),
			correct: []string{"echo", "Echo"},
			wrong:   []string{"ohce"},
		},
		{
			name:    "terminal_command collapses whitespace",
			puzzle:  puzzle("terminal_command", `{"command":"ssh ghost@relay"}`),
			correct: []string{"ssh ghost@relay", "  ssh   ghost@relay "},
			wrong:   []string{"ssh ghost@relay2", "SSH ghost@relay"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, sub := range tc.correct {
				ok, err := r.CheckAnswer(tc.puzzle, sub)
				require.NoError(t, err)
				assert.True(t, ok, "expected %q to be accepted", sub)
			}
			for _, sub := range tc.wrong {
				ok, err := r.CheckAnswer(tc.puzzle, sub)
				require.NoError(t, err)
				assert.False(t, ok, "expected %q to be rejected", sub)
			}
		})
	}
}

func TestCheckAnswerFallback(t *testing.T) {
	r := NewRegistry()
	p := models.Puzzle{ID: uuid.New(), PuzzleType: "legacy_riddle", Answer: "Raven"}

	ok, err := r.CheckAnswer(p, " raven ")
	require.NoError(t, err)
	assert.True(t, ok, "untyped puzzles fall back to the answer column")

	ok, err = r.CheckAnswer(p, "crow")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.CheckAnswer(models.Puzzle{ID: uuid.New(), PuzzleType: "legacy_riddle"}, "x")
	assert.Error(t, err, "no validator and no answer is a config error")
}

func TestCheckAnswerBadConfig(t *testing.T) {
	r := NewRegistry()
	_, err := r.CheckAnswer(puzzle("access_code", `{broken`), "x")
	assert.Error(t, err)
}

func TestForClientRedactsAnswers(t *testing.T) {
	r := NewRegistry()

	t.Run("cipher hides plaintext and shift", func(t *testing.T) {
		p := puzzle("cipher", `{"plaintext":"open sesame","shift":3}`)
		p.Answer = "open sesame"
		safe, err := r.ForClient(p)
		require.NoError(t, err)
		assert.Empty(t, safe.Answer)

		var cfg map[string]interface{}
		require.NoError(t, json.Unmarshal(safe.PuzzleData, &cfg))
		assert.Equal(t, "RSHQ VHVDPH", cfg["ciphertext"])
		assert.NotContains(t, cfg, "plaintext")
		assert.NotContains(t, cfg, "shift")
	})

	t.Run("access_code exposes only prompt and length", func(t *testing.T) {
		safe, err := r.ForClient(puzzle("access_code", `{"code":"XK42","prompt":"panel"}`))
		require.NoError(t, err)
		var cfg map[string]interface{}
		require.NoError(t, json.Unmarshal(safe.PuzzleData, &cfg))
		assert.Equal(t, "panel", cfg["prompt"])
		assert.Equal(t, float64(4), cfg["length"])
		assert.NotContains(t, cfg, "code")
	})

	t.Run("signal_tuning hides the target", func(t *testing.T) {
		safe, err := r.ForClient(puzzle("signal_tuning", `{"target":440,"tolerance":5,"min":0,"max":1000}`))
		require.NoError(t, err)
		var cfg map[string]interface{}
		require.NoError(t, json.Unmarshal(safe.PuzzleData, &cfg))
		assert.NotContains(t, cfg, "target")
		assert.NotContains(t, cfg, "tolerance")
	})

	t.Run("untyped puzzle loses its whole payload", func(t *testing.T) {
		p := models.Puzzle{ID: uuid.New(), PuzzleType: "legacy_riddle", Answer: "Raven", PuzzleData: json.RawMessage(`{"answer":"Raven"}`)}
		safe, err := r.ForClient(p)
		require.NoError(t, err)
		assert.Empty(t, safe.Answer)
		assert.Nil(t, safe.PuzzleData)
	})
}

func TestTypes(t *testing.T) {
	r := NewRegistry()
	types := r.Types()
	assert.Contains(t, types, "access_code")
	assert.Contains(t, types, "cipher")
	assert.True(t, sortedStrings(types))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
