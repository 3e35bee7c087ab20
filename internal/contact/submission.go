// internal/contact/submission.go
package contact

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// Submission is one contact form post. Validate tags run after Normalize;
// max lengths count characters.
type Submission struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,max=254,email"`
	Phone     string `json:"phone" validate:"required,max=20,phone"`
	PetType   string `json:"petType" validate:"required,max=100"`
	Dates     string `json:"dates" validate:"required,max=100"`
	Message   string `json:"message" validate:"required,max=2000"`
	Token     string `json:"token" validate:"max=4096"`
}

// strict strips all markup. bluemonday policies are safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// Normalize returns a cleaned copy of s: NFC, markup and control characters
// removed, surrounding whitespace trimmed, email lower-cased. Only Message
// keeps line breaks; the other fields end up in mail headers or one-line
// summaries.
func (s Submission) Normalize() Submission {
	return Submission{
		FirstName: cleanLine(s.FirstName),
		LastName:  cleanLine(s.LastName),
		Email:     strings.ToLower(cleanLine(s.Email)),
		Phone:     cleanLine(s.Phone),
		PetType:   cleanLine(s.PetType),
		Dates:     cleanLine(s.Dates),
		Message:   cleanText(s.Message),
		Token:     strings.TrimSpace(s.Token),
	}
}

// FullName is "First Last".
func (s Submission) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func cleanLine(v string) string {
	v = stripMarkup(v)
	v = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', '\t', '\u2028', '\u2029':
			return ' '
		}
		return r
	}, v)
	v = removeControls(v, false)
	return strings.Join(strings.Fields(v), " ")
}

func cleanText(v string) string {
	v = strings.ReplaceAll(v, "\r\n", "\n")
	v = strings.ReplaceAll(v, "\r", "\n")
	v = stripMarkup(v)
	v = removeControls(v, true)
	return strings.TrimSpace(v)
}

// stripMarkup applies NFC and drops HTML. The strict policy escapes what
// remains, so entities are decoded again: the mail bodies are plain text.
func stripMarkup(v string) string {
	v = norm.NFC.String(v)
	if strings.ContainsAny(v, "<>&") {
		v = html.UnescapeString(strict.Sanitize(v))
	}
	return v
}

func removeControls(v string, keepNewlines bool) string {
	return strings.Map(func(r rune) rune {
		if keepNewlines && (r == '\n' || r == '\t') {
			return r
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, v)
}
