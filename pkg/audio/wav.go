package audio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/faiface/beep/wav"
)

// Info describes decoded PCM audio.
type Info struct {
	SampleRate int
	Channels   int
	Samples    int
	Duration   time.Duration
}

// InspectWAV decodes the RIFF header of data and reports its length.
func InspectWAV(data []byte) (*Info, error) {
	s, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error decoding wav: %v", err)
	}
	defer s.Close()

	n := s.Len()
	return &Info{
		SampleRate: int(format.SampleRate),
		Channels:   format.NumChannels,
		Samples:    n,
		Duration:   format.SampleRate.D(n),
	}, nil
}
