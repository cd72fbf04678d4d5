package dubber

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/dubbing/dubber/storage"
	"github.com/lfedgeai/dubbing/dubber/synth"
	"github.com/lfedgeai/dubbing/pkg/audio"
	"github.com/lfedgeai/dubbing/pkg/common"
	"github.com/lfedgeai/dubbing/pkg/locale"
	"github.com/lfedgeai/dubbing/pkg/ssml"
	"github.com/lfedgeai/dubbing/pkg/transcript"
)

const successMessage = "Audio files generated successfully"

// Synthesizer is the speech service as seen by the pipeline.
type Synthesizer interface {
	ListVoices(ctx context.Context) ([]synth.Voice, error)
	Synthesize(ctx context.Context, ssml []byte, lang string) ([]byte, error)
}

type Result struct {
	Message              string  `json:"message"`
	EnglishAudioLink     string  `json:"english_audio_link"`
	LanguageAudioLink    string  `json:"language_audio_link"`
	EnglishAudioSeconds  float64 `json:"english_audio_seconds,omitempty"`
	LanguageAudioSeconds float64 `json:"language_audio_seconds,omitempty"`
}

// Pipeline turns one uploaded transcript into an English and a source
// language audio track.
type Pipeline struct {
	store storage.Store
	synth Synthesizer
}

func NewPipeline(store storage.Store, synthesizer Synthesizer) *Pipeline {
	return &Pipeline{store: store, synth: synthesizer}
}

// Process runs the whole upload flow for csv in the given source locale.
func (p *Pipeline) Process(ctx context.Context, csv []byte, source string) (*Result, error) {
	loc := locale.New(source)
	if !loc.Valid() {
		log.Warnf("Locale %q is not a well-formed language tag", loc)
	}

	tbl, err := transcript.ReadCSV(bytes.NewReader(csv))
	if errors.Is(err, transcript.ErrNotUTF8) {
		return nil, requestErrorf(ErrUnsupportedEncoding, "File encoding is not supported. Ensure it is UTF-8.")
	}
	if err != nil {
		return nil, requestErrorf(ErrUnsupportedEncoding, "Error reading CSV: %v", err)
	}
	log.Infof("Received transcript with %d rows for locale %s", tbl.Len(), loc)

	if _, err := p.store.Upload(ctx, csv, storage.RandomName(".csv"), common.InputFolder); err != nil {
		return nil, err
	}

	voices, err := p.synth.ListVoices(ctx)
	if err != nil {
		return nil, err
	}
	pair, err := synth.ResolveVoicePair(voices, loc.Raw)
	switch {
	case errors.Is(err, synth.ErrNoVoices):
		return nil, requestErrorf(ErrUnsupportedLocale, "Invalid locale or unsupported locale specified.")
	case errors.Is(err, synth.ErrMissingVoiceClass):
		return nil, requestErrorf(ErrMissingVoice, "Missing male or female voice for %s.", loc)
	case err != nil:
		return nil, err
	}
	log.Debugf("Using voices %+v for %s", pair, loc)

	res := &Result{Message: successMessage}

	english := ssml.VoicePair{Male: common.EnglishMaleVoice, Female: common.EnglishFemaleVoice}
	res.EnglishAudioLink, res.EnglishAudioSeconds, err = p.dub(ctx, tbl,
		common.EnglishColumn, english, common.EnglishLocale)
	if err != nil {
		return nil, err
	}

	column := tbl.FindTranscriptionColumn(loc.Code())
	if column == "" {
		log.Debugf("No column for %s among %v", loc.Code(), tbl.Columns())
		return nil, requestErrorf(ErrMissingTranscription, "CSV missing column '%s%s'.",
			loc.Code(), common.TranscriptionSuffix)
	}
	if err := checkLanguage(tbl, column, loc); err != nil {
		return nil, err
	}

	res.LanguageAudioLink, res.LanguageAudioSeconds, err = p.dub(ctx, tbl, column, pair, loc.Raw)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// checkLanguage verifies that an "IN" column is written in the locale's base
// language. Other regions are not checked.
func checkLanguage(tbl *transcript.Table, column string, loc locale.Locale) error {
	if loc.Code() != "IN" {
		return nil
	}
	detected := common.UnknownLanguage
	if first, ok := tbl.FirstValue(column); ok {
		detected = locale.DetectLanguage(first)
	}
	want := loc.Base()
	if detected != want {
		return requestErrorf(ErrLanguageMismatch, "Expected %s but detected %s in '%s'.",
			locale.LanguageName(want), detected, column)
	}
	return nil
}

// dub builds, stores and synthesizes one column and stores the audio. It
// returns the audio location and its duration in seconds when known.
func (p *Pipeline) dub(ctx context.Context, tbl *transcript.Table, column string,
	voices ssml.VoicePair, lang string) (string, float64, error) {
	doc, err := ssml.Build(tbl, column, voices, lang)
	if err != nil {
		return "", 0, err
	}
	log.Infof("Built SSML for %s with %d segments and %ds of silence",
		column, len(doc.Segments), doc.TotalSilence())
	ssmlLoc, err := p.store.Upload(ctx, doc.Bytes(), storage.RandomName(".ssml"), common.SSMLFolder)
	if err != nil {
		return "", 0, err
	}

	// synthesize what was stored, not what is in memory
	data, err := p.store.Download(ctx, ssmlLoc)
	if err != nil {
		return "", 0, fmt.Errorf("error reading back %s: %w", ssmlLoc, err)
	}
	wav, err := p.synth.Synthesize(ctx, data, lang)
	if err != nil {
		return "", 0, err
	}

	seconds := 0.0
	if info, err := audio.InspectWAV(wav); err != nil {
		log.Warnf("Could not inspect audio for %s: %v", column, err)
	} else {
		seconds = info.Duration.Seconds()
		log.Infof("Synthesized %.1fs of audio for %s", seconds, column)
	}

	audioLoc, err := p.store.Upload(ctx, wav, storage.RandomName(".wav"), common.AudioFolder)
	if err != nil {
		return "", 0, err
	}
	return audioLoc, seconds, nil
}
