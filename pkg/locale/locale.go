package locale

import (
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/lfedgeai/dubbing/pkg/common"
)

// Bhojpuri shares Devanagari with Hindi and wins on short Hindi text.
var detectOptions = whatlanggo.Options{
	Blacklist: map[whatlanggo.Lang]bool{whatlanggo.Bho: true},
}

var sanitizer = strings.NewReplacer(`\`, "", "\n", "", "\t", "")

// Sanitize strips the escape characters browsers and shells tend to leave in
// the submitted locale.
func Sanitize(source string) string {
	return sanitizer.Replace(strings.TrimSpace(source))
}

// Locale is a submitted "<language>-<REGION>" identifier such as "hi-IN".
// Raw is kept verbatim because voice catalogs match on the exact string.
type Locale struct {
	Raw string
	Tag language.Tag

	valid bool
}

// New sanitizes source and parses it as a BCP 47 tag. A tag that does not
// parse still yields a usable Locale; see Valid.
func New(source string) Locale {
	raw := Sanitize(source)
	tag, err := language.Parse(raw)
	return Locale{Raw: raw, Tag: tag, valid: err == nil}
}

func (l Locale) Valid() bool {
	return l.valid
}

// Code is the subtag used to find the transcript column: the last "-"
// separated part of the raw locale, "IN" for "hi-IN".
func (l Locale) Code() string {
	parts := strings.Split(l.Raw, "-")
	return parts[len(parts)-1]
}

// Base returns the ISO 639-1 language, "hi" for "hi-IN".
func (l Locale) Base() string {
	if !l.valid {
		return strings.ToLower(strings.Split(l.Raw, "-")[0])
	}
	b, _ := l.Tag.Base()
	return b.String()
}

// LanguageName is the English name of a base language code, "Hindi" for "hi".
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

func (l Locale) String() string {
	return l.Raw
}

// DetectLanguage returns the ISO 639-1 code of text, or common.UnknownLanguage.
func DetectLanguage(text string) string {
	info := whatlanggo.DetectWithOptions(text, detectOptions)
	if info.Script == nil {
		return common.UnknownLanguage
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return common.UnknownLanguage
	}
	return code
}
