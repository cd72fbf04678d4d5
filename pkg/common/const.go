package common

const MaxUploadSize = 32 * 1024 * 1024

const (
	InputFolder = "input/"
	SSMLFolder  = "ssml/"
	AudioFolder = "audio/"
)

const (
	SpeakerColumn     = "Speaker"
	TimeMarkersColumn = "Time Markers"
	EnglishColumn     = "EN--Transcription"

	// TranscriptionSuffix ends every per-locale transcript column, e.g. "IN--Transcription".
	TranscriptionSuffix = "--Transcription"

	DefaultSpeaker      = "spk_0"
	DefaultTimeMarker   = "0:00"
	UnknownLanguage     = "unknown"
	DefaultSecretName   = "azure-secrets"
	DefaultSecretRegion = "ap-south-1"
)

// English output always uses the same voice pair.
const (
	EnglishLocale      = "en-US"
	EnglishMaleVoice   = "en-US-GuyNeural"
	EnglishFemaleVoice = "en-US-JennyNeural"
)
