package engine

// Error-kind strings emitted through ErrorEvent.
const (
	KindNotAllowed        = "not-allowed"
	KindServiceNotAllowed = "service-not-allowed"
	KindNoSpeech          = "no-speech"
	KindAudioCapture      = "audio-capture"
	KindNetwork           = "network"
	KindAborted           = "aborted"
)

// Class is the recovery classification of an error kind.
type Class int

const (
	// ClassOther errors are logged only; the subsequent end event governs
	// any restart.
	ClassOther Class = iota
	// ClassFatal errors disable listening permanently. Retrying without
	// external intervention (for example re-granted microphone consent)
	// cannot succeed.
	ClassFatal
	// ClassTransient errors are expected to self-resolve and are eligible
	// for a debounced restart.
	ClassTransient
)

// Classify maps an error kind to its recovery class. Unknown kinds are
// ClassOther.
func Classify(kind string) Class {
	switch kind {
	case KindNotAllowed, KindServiceNotAllowed:
		return ClassFatal
	case KindNoSpeech, KindAudioCapture:
		return ClassTransient
	default:
		return ClassOther
	}
}
