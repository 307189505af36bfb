// Package contract validates model output on the scoring path against the
// two-field score record schema.
package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	FieldScore    = "score"
	FieldAnalysis = "analysis"

	fence = "```"
)

// ScoreRecord is a validated score and its rationale. The zero value is not
// a valid record; records are only produced by Validate.
type ScoreRecord struct {
	score    int
	analysis string
}

func (r ScoreRecord) Score() int       { return r.score }
func (r ScoreRecord) Analysis() string { return r.analysis }

func (r ScoreRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Score    int    `json:"score"`
		Analysis string `json:"analysis"`
	}{r.score, r.analysis})
}

// FailureKind discriminates validation outcomes.
type FailureKind int

const (
	KindNone FailureKind = iota
	KindFormatting
	KindSchema
	KindType
)

func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFormatting:
		return "formatting"
	case KindSchema:
		return "schema"
	case KindType:
		return "type"
	default:
		return "unknown"
	}
}

// Result is the outcome of Validate: a record when Kind is KindNone, otherwise
// a typed error.
type Result struct {
	record ScoreRecord
	kind   FailureKind
	err    error
}

func (r Result) OK() bool            { return r.kind == KindNone }
func (r Result) Kind() FailureKind   { return r.kind }
func (r Result) Record() ScoreRecord { return r.record }

// Err returns *FormattingError, *SchemaError or *TypeError, or nil on success.
func (r Result) Err() error { return r.err }

func fail(kind FailureKind, err error) Result {
	return Result{kind: kind, err: err}
}

// Validate parses canonical model text as a score record.
func Validate(text string) Result {
	body := StripFences(text)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return fail(KindFormatting, &FormattingError{Text: text, Err: err})
	}
	if obj == nil {
		return fail(KindFormatting, &FormattingError{Text: text, Err: errors.New("top-level value is null")})
	}

	var missing []string
	rawScore, ok := obj[FieldScore]
	if !ok {
		missing = append(missing, FieldScore)
	}
	rawAnalysis, ok := obj[FieldAnalysis]
	if !ok {
		missing = append(missing, FieldAnalysis)
	}
	if len(missing) > 0 {
		return fail(KindSchema, &SchemaError{Text: text, Missing: missing})
	}

	score, got, ok := coerceInt(rawScore)
	if !ok {
		return fail(KindType, &TypeError{Text: text, Field: FieldScore, Want: "integer", Got: got})
	}
	analysis, got, ok := coerceString(rawAnalysis)
	if !ok {
		return fail(KindType, &TypeError{Text: text, Field: FieldAnalysis, Want: "string", Got: got})
	}
	if strings.TrimSpace(analysis) == "" {
		return fail(KindSchema, &SchemaError{Text: text, Blank: []string{FieldAnalysis}})
	}

	return Result{record: ScoreRecord{score: score, analysis: analysis}}
}

// StripFences removes a leading code fence with its optional language tag and
// a trailing code fence.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, fence) {
		s = strings.TrimPrefix(s, fence)
		s = strings.TrimLeftFunc(s, isTagRune)
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSuffix(s, fence)
		s = strings.TrimSpace(s)
	}
	return s
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+' || r == '.'
}

// coerceInt accepts JSON numbers (truncated toward zero) and strings holding
// an integer. got describes the rejected value.
func coerceInt(raw json.RawMessage) (n int, got string, ok bool) {
	raw = bytes.TrimSpace(raw)
	switch kindOf(raw) {
	case "number":
		s := string(raw)
		if v, err := strconv.Atoi(s); err == nil {
			return v, "", true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || f >= math.MaxInt64 || f <= math.MinInt64 {
			return 0, "out-of-range number", false
		}
		return int(f), "", true
	case "string":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, "string", false
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, strconv.Quote(s), false
		}
		return v, "", true
	default:
		return 0, kindOf(raw), false
	}
}

// coerceString accepts strings as-is and renders numbers and booleans as
// their JSON text.
func coerceString(raw json.RawMessage) (s string, got string, ok bool) {
	raw = bytes.TrimSpace(raw)
	switch kindOf(raw) {
	case "string":
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", "string", false
		}
		return s, "", true
	case "number", "boolean":
		return string(raw), "", true
	default:
		return "", kindOf(raw), false
	}
}

func kindOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "empty"
	}
	switch c := raw[0]; {
	case c == '"':
		return "string"
	case c == '{':
		return "object"
	case c == '[':
		return "array"
	case c == 't' || c == 'f':
		return "boolean"
	case c == 'n':
		return "null"
	default:
		return "number"
	}
}
