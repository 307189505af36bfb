// Package prompt binds untrusted caller text into fixed instruction templates.
//
// Templates use single-brace placeholders ({name}) and doubled braces ({{ and }})
// for literal delimiters. Substituted values are escaped before they are placed
// into the template, so braces inside resumes or transcripts never create new
// placeholders or change the template's structure.
package prompt

import (
	"fmt"
	"sort"
	"strings"
)

const (
	openDelim  = '{'
	closeDelim = '}'
)

// Template is an immutable instruction string with named placeholders.
// The zero value is an empty template.
type Template struct {
	name     string
	segments []segment
	names    []string
}

type segment struct {
	// literal holds template text in its escaped (doubled-brace) form.
	literal     string
	placeholder string
}

// ParseError reports a malformed template.
type ParseError struct {
	Template string
	Offset   int
	Msg      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("prompt template %q: offset %d: %s", e.Template, e.Offset, e.Msg)
}

// MissingPlaceholderError is returned by Bind when a placeholder has no value.
type MissingPlaceholderError struct {
	Template string
	Names    []string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("prompt template %q: no value for placeholder(s) %s",
		e.Template, strings.Join(e.Names, ", "))
}

// Parse compiles text into a Template.
func Parse(name, text string) (Template, error) {
	t := Template{name: name}
	seen := map[string]bool{}
	var lit strings.Builder

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case openDelim:
			if i+1 < len(text) && text[i+1] == openDelim {
				lit.WriteString("{{")
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], closeDelim)
			if end < 0 {
				return Template{}, &ParseError{Template: name, Offset: i, Msg: "unterminated placeholder"}
			}
			field := text[i+1 : i+1+end]
			if !validName(field) {
				return Template{}, &ParseError{Template: name, Offset: i, Msg: fmt.Sprintf("invalid placeholder name %q", field)}
			}
			if lit.Len() > 0 {
				t.segments = append(t.segments, segment{literal: lit.String()})
				lit.Reset()
			}
			t.segments = append(t.segments, segment{placeholder: field})
			if !seen[field] {
				seen[field] = true
				t.names = append(t.names, field)
			}
			i += end + 1
		case closeDelim:
			if i+1 < len(text) && text[i+1] == closeDelim {
				lit.WriteString("}}")
				i++
				continue
			}
			return Template{}, &ParseError{Template: name, Offset: i, Msg: "single '}' must be doubled"}
		default:
			lit.WriteByte(c)
		}
	}
	if lit.Len() > 0 {
		t.segments = append(t.segments, segment{literal: lit.String()})
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Use it for package-level templates.
func MustParse(name, text string) Template {
	t, err := Parse(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the template name used in errors and logs.
func (t Template) Name() string { return t.name }

// Placeholders returns placeholder names in order of first appearance.
func (t Template) Placeholders() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Require reports a MissingPlaceholderError if the template references any
// placeholder outside of supplied. Façades call it once at construction.
func (t Template) Require(supplied ...string) error {
	have := make(map[string]bool, len(supplied))
	for _, s := range supplied {
		have[s] = true
	}
	var missing []string
	for _, n := range t.names {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &MissingPlaceholderError{Template: t.name, Names: missing}
	}
	return nil
}

// Bind substitutes values into the template. Every value is escaped first.
func (t Template) Bind(values map[string]string) (Bound, error) {
	var missing []string
	for _, n := range t.names {
		if _, ok := values[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Bound{}, &MissingPlaceholderError{Template: t.name, Names: missing}
	}

	var b strings.Builder
	for _, s := range t.segments {
		if s.placeholder == "" {
			b.WriteString(s.literal)
			continue
		}
		b.WriteString(Escape(values[s.placeholder]))
	}
	return Bound{template: t.name, escaped: b.String()}, nil
}

// Bound is a template with every placeholder substituted. It is consumed by a
// single model invocation and never persisted.
type Bound struct {
	template string
	escaped  string
}

// Template returns the name of the template this prompt was bound from.
func (b Bound) Template() string { return b.template }

// Text renders the prompt, collapsing every doubled delimiter exactly once.
func (b Bound) Text() string { return unescape(b.escaped) }

// String implements fmt.Stringer.
func (b Bound) String() string { return b.Text() }

// Escape doubles every delimiter character in s.
func Escape(s string) string {
	if !strings.ContainsAny(s, "{}") {
		return s
	}
	r := strings.NewReplacer("{", "{{", "}", "}}")
	return r.Replace(s)
}

func unescape(s string) string {
	if !strings.ContainsAny(s, "{}") {
		return s
	}
	r := strings.NewReplacer("{{", "{", "}}", "}")
	return r.Replace(s)
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
