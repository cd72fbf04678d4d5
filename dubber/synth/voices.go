package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lfedgeai/dubbing/pkg/ssml"
)

var (
	ErrNoVoices          = errors.New("invalid locale or unsupported locale specified")
	ErrMissingVoiceClass = errors.New("missing male or female voice")
)

// Voice is one entry of the Azure voices/list catalog.
type Voice struct {
	Name        string `json:"Name"`
	DisplayName string `json:"DisplayName"`
	ShortName   string `json:"ShortName"`
	Gender      string `json:"Gender"`
	Locale      string `json:"Locale"`
	VoiceType   string `json:"VoiceType,omitempty"`
}

// FilterLocale returns the voices whose Locale is exactly locale.
func FilterLocale(voices []Voice, locale string) []Voice {
	var res []Voice
	for _, v := range voices {
		if v.Locale == locale {
			res = append(res, v)
		}
	}
	return res
}

// ResolveVoicePair picks the first male and first female voice for locale.
func ResolveVoicePair(voices []Voice, locale string) (ssml.VoicePair, error) {
	matching := FilterLocale(voices, locale)
	if len(matching) == 0 {
		return ssml.VoicePair{}, fmt.Errorf("%w: %s", ErrNoVoices, locale)
	}

	var pair ssml.VoicePair
	for _, v := range matching {
		if pair.Male == "" && strings.Contains(v.Gender, "Male") {
			pair.Male = v.ShortName
		}
		if pair.Female == "" && strings.Contains(v.Gender, "Female") {
			pair.Female = v.ShortName
		}
	}
	if pair.Male == "" || pair.Female == "" {
		return ssml.VoicePair{}, fmt.Errorf("%w for %s", ErrMissingVoiceClass, locale)
	}
	return pair, nil
}
