// internal/puzzles/variants.go
package puzzles

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Built-in puzzle variants. Each one decodes its own puzzle_data payload and
// implements the Validator capability. Adding a variant means adding a config
// struct here and registering its decoder; nothing in the engine changes.

func registerBuiltins(r *Registry) {
	r.register("access_code", decodeAccessCode)
	r.register("multiple_choice", decodeMultipleChoice)
	r.register("sequence", decodeSequence)
	r.register("anagram", decodeAnagram)
	r.register("cipher", decodeCipher)
	r.register("signal_tuning", decodeSignalTuning)
	r.register("binary_decode", decodeBinaryDecode)
	r.register("terminal_command", decodeTerminalCommand)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// access_code: a shared code the team discovers elsewhere in the room.
type accessCode struct {
	Code   string `json:"code"`
	Prompt string `json:"prompt,omitempty"`
}

func decodeAccessCode(raw json.RawMessage) (Validator, error) {
	var c accessCode
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *accessCode) Evaluate(submission string) bool {
	return normalize(submission) == normalize(c.Code)
}

func (c *accessCode) ClientConfig() map[string]interface{} {
	return map[string]interface{}{"prompt": c.Prompt, "length": len(c.Code)}
}

// multiple_choice: submission is the index of the chosen option.
type multipleChoice struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

func decodeMultipleChoice(raw json.RawMessage) (Validator, error) {
	var c multipleChoice
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *multipleChoice) Evaluate(submission string) bool {
	idx, err := strconv.Atoi(strings.TrimSpace(submission))
	return err == nil && idx == c.CorrectIndex
}

func (c *multipleChoice) ClientConfig() map[string]interface{} {
	return map[string]interface{}{"question": c.Question, "options": c.Options}
}

// sequence: items must be submitted in order, comma-separated.
type sequence struct {
	Prompt string   `json:"prompt,omitempty"`
	Items  []string `json:"items"`
}

func decodeSequence(raw json.RawMessage) (Validator, error) {
	var c sequence
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *sequence) Evaluate(submission string) bool {
	parts := strings.Split(submission, ",")
	if len(parts) != len(c.Items) {
		return false
	}
	for i, p := range parts {
		if normalize(p) != normalize(c.Items[i]) {
			return false
		}
	}
	return true
}

func (c *sequence) ClientConfig() map[string]interface{} {
	// Shuffled order is the client's job; it only needs the item set.
	shuffled := make([]string, len(c.Items))
	copy(shuffled, c.Items)
	sort.Strings(shuffled)
	return map[string]interface{}{"prompt": c.Prompt, "items": shuffled}
}

// anagram: submission must use exactly the letters of the hidden word.
type anagram struct {
	Word   string `json:"word"`
	Prompt string `json:"prompt,omitempty"`
}

func decodeAnagram(raw json.RawMessage) (Validator, error) {
	var c anagram
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *anagram) Evaluate(submission string) bool {
	return normalize(submission) == normalize(c.Word)
}

func (c *anagram) ClientConfig() map[string]interface{} {
	letters := strings.Split(normalize(c.Word), "")
	sort.Strings(letters)
	return map[string]interface{}{"prompt": c.Prompt, "letters": letters}
}

// cipher: a caesar-shifted message; the submission is the plaintext.
type cipher struct {
	Plaintext string `json:"plaintext"`
	Shift     int    `json:"shift"`
}

func decodeCipher(raw json.RawMessage) (Validator, error) {
	var c cipher
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *cipher) Evaluate(submission string) bool {
	return normalize(submission) == normalize(c.Plaintext)
}

func (c *cipher) ClientConfig() map[string]interface{} {
	shift := ((c.Shift % 26) + 26) % 26
	var b strings.Builder
	for _, r := range strings.ToUpper(c.Plaintext) {
		if r >= 'A' && r <= 'Z' {
			r = 'A' + (r-'A'+rune(shift))%26
		}
		b.WriteRune(r)
	}
	return map[string]interface{}{"ciphertext": b.String()}
}

// signal_tuning: a numeric dial that must land within tolerance of a target.
type signalTuning struct {
	Target    int `json:"target"`
	Tolerance int `json:"tolerance"`
	Min       int `json:"min"`
	Max       int `json:"max"`
}

func decodeSignalTuning(raw json.RawMessage) (Validator, error) {
	var c signalTuning
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *signalTuning) Evaluate(submission string) bool {
	v, err := strconv.Atoi(strings.TrimSpace(submission))
	if err != nil {
		return false
	}
	d := v - c.Target
	if d < 0 {
		d = -d
	}
	return d <= c.Tolerance
}

func (c *signalTuning) ClientConfig() map[string]interface{} {
	return map[string]interface{}{"min": c.Min, "max": c.Max}
}

// binary_decode: the expected word, shown to the client as bits.
type binaryDecode struct {
	Word string `json:"word"`
}

func decodeBinaryDecode(raw json.RawMessage) (Validator, error) {
	var c binaryDecode
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *binaryDecode) Evaluate(submission string) bool {
	return normalize(submission) == normalize(c.Word)
}

func (c *binaryDecode) ClientConfig() map[string]interface{} {
	bits := make([]string, 0, len(c.Word))
	for _, b := range []byte(strings.ToLower(c.Word)) {
		bits = append(bits, strconv.FormatInt(int64(b), 2))
	}
	return map[string]interface{}{"bits": bits}
}

// terminal_command: exact command line, whitespace-collapsed.
type terminalCommand struct {
	Command string `json:"command"`
	Banner  string `json:"banner,omitempty"`
}

func decodeTerminalCommand(raw json.RawMessage) (Validator, error) {
	var c terminalCommand
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *terminalCommand) Evaluate(submission string) bool {
	return strings.Join(strings.Fields(submission), " ") == strings.Join(strings.Fields(c.Command), " ")
}

func (c *terminalCommand) ClientConfig() map[string]interface{} {
	return map[string]interface{}{"banner": c.Banner}
}
