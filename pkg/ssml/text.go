package ssml

import (
	"regexp"
	"strconv"
	"strings"
)

var annotationRe = regexp.MustCompile(`\[.*?\]`)

// CleanText drops every bracketed annotation such as "[laughs]". Text outside
// the brackets is kept as is.
func CleanText(text string) string {
	return annotationRe.ReplaceAllString(text, "")
}

// ParseTimestamp converts "minutes:seconds" to seconds. Anything that does not
// parse yields 0.
func ParseTimestamp(ts string) int {
	parts := strings.Split(ts, ":")
	if len(parts) != 2 {
		return 0
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	return minutes*60 + seconds
}

// SpeakerClass is the voice class narrating a row.
type SpeakerClass int

const (
	PrimarySpeaker SpeakerClass = iota
	OtherSpeaker
)

func (c SpeakerClass) String() string {
	switch c {
	case PrimarySpeaker:
		return "primary"
	case OtherSpeaker:
		return "other"
	default:
		return "unknown"
	}
}

// ClassifySpeaker maps "spk_0" to PrimarySpeaker and everything else to
// OtherSpeaker. There are only two classes.
func ClassifySpeaker(speaker string) SpeakerClass {
	if speaker == primarySpeakerTag {
		return PrimarySpeaker
	}
	return OtherSpeaker
}

// VoicePair holds the male and female voice names for one locale.
type VoicePair struct {
	Male   string
	Female string
}

func (p VoicePair) For(c SpeakerClass) string {
	if c == PrimarySpeaker {
		return p.Male
	}
	return p.Female
}
