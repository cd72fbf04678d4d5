// Package ssml assembles speech markup documents from transcript tables.
//
// A document is a flat sequence of segments in row order. Each row with
// speakable text becomes one voice segment, preceded by a break when its
// time marker is later than the previous spoken row.
package ssml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/dubbing/pkg/common"
	"github.com/lfedgeai/dubbing/pkg/transcript"
)

const (
	primarySpeakerTag = common.DefaultSpeaker
	synthesisNS       = "http://www.w3.org/2001/10/synthesis"
)

var ErrColumnNotFound = errors.New("column not found")

// ColumnNotFoundError reports a build against a column the table lacks.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column '%s' not found in CSV", e.Column)
}

func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

type SegmentKind int

const (
	SegmentBreak SegmentKind = iota
	SegmentVoice
)

// Segment is either a break of Seconds or Text spoken by Voice.
type Segment struct {
	Kind    SegmentKind
	Seconds int
	Voice   string
	Text    string
}

// Document is a built SSML document. Do not modify it after Build returns.
type Document struct {
	Lang     string
	Segments []Segment
}

// Build turns the rows of tbl into a document that speaks column with voices.
// Only a missing column is an error; bad time markers and empty text are
// absorbed row by row.
func Build(tbl *transcript.Table, column string, voices VoicePair, lang string) (*Document, error) {
	if !tbl.HasColumn(column) {
		return nil, &ColumnNotFoundError{Column: column}
	}

	doc := &Document{Lang: lang}
	lastTimestamp := 0
	skipped := 0

	for _, row := range tbl.Rows() {
		text := CleanText(row.Get(column, ""))
		if strings.TrimSpace(text) == "" {
			skipped++
			continue
		}

		ts := ParseTimestamp(row.Get(common.TimeMarkersColumn, common.DefaultTimeMarker))
		delay := max(0, ts-lastTimestamp)
		lastTimestamp = ts

		if delay > 0 {
			doc.Segments = append(doc.Segments, Segment{Kind: SegmentBreak, Seconds: delay})
		}

		// only a missing column defaults; an empty cell is some other speaker
		speaker, ok := row[common.SpeakerColumn]
		if !ok {
			speaker = common.DefaultSpeaker
		}
		class := ClassifySpeaker(speaker)
		doc.Segments = append(doc.Segments, Segment{
			Kind:  SegmentVoice,
			Voice: voices.For(class),
			Text:  text,
		})
	}

	log.Debugf("Built SSML for column %s: %d segments, %d rows skipped",
		column, len(doc.Segments), skipped)
	return doc, nil
}

// String serializes the document, one segment per line.
func (d *Document) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<speak version='1.0' xmlns='%s' xml:lang='%s'>\n",
		synthesisNS, escape(d.Lang))
	for _, s := range d.Segments {
		switch s.Kind {
		case SegmentBreak:
			fmt.Fprintf(&buf, "<break time='%ds' />\n", s.Seconds)
		case SegmentVoice:
			fmt.Fprintf(&buf, "<voice name='%s'>%s</voice>\n", escape(s.Voice), escape(s.Text))
		}
	}
	buf.WriteString("</speak>")
	return buf.String()
}

func (d *Document) Bytes() []byte {
	return []byte(d.String())
}

// TotalSilence is the sum of all break durations in seconds.
func (d *Document) TotalSilence() int {
	total := 0
	for _, s := range d.Segments {
		if s.Kind == SegmentBreak {
			total += s.Seconds
		}
	}
	return total
}

func escape(s string) string {
	var buf strings.Builder
	// EscapeText only fails on writer errors; strings.Builder never returns one.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
