package dubber

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lfedgeai/dubbing/dubber/synth"
	"github.com/lfedgeai/dubbing/pkg/ssml"
)

var (
	ErrUnsupportedEncoding  = errors.New("unsupported encoding")
	ErrUnsupportedLocale    = errors.New("unsupported locale")
	ErrMissingVoice         = errors.New("missing voice")
	ErrMissingTranscription = errors.New("missing transcription column")
	ErrLanguageMismatch     = errors.New("language mismatch")
)

// RequestError is a failure the caller can fix. Msg is shown to the caller
// as is; Kind is one of the sentinels above.
type RequestError struct {
	Kind error
	Msg  string
}

func (e *RequestError) Error() string {
	return e.Msg
}

func (e *RequestError) Unwrap() error {
	return e.Kind
}

func requestErrorf(kind error, format string, args ...any) error {
	return &RequestError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// statusFor maps a pipeline error to the HTTP status returned to clients.
func statusFor(err error) int {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr), errors.Is(err, ssml.ErrColumnNotFound):
		return http.StatusBadRequest
	case errors.Is(err, synth.ErrSynthesis):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
