package speech

import (
	"log/slog"

	"voice_trader/internal/domain"
)

// LogSpeaker satisfies domain.Speaker by writing the feedback lines to the
// log. Used where no TTS engine is available (headless deployments, tests);
// the pipeline treats feedback as advisory either way.
type LogSpeaker struct {
	language string
	logger   *slog.Logger
}

func NewLogSpeaker(language string) *LogSpeaker {
	if _, ok := messages[language]; !ok {
		language = "tr"
	}
	return &LogSpeaker{
		language: language,
		logger:   slog.Default().With("module", "speaker"),
	}
}

func (s *LogSpeaker) Speak(text string) {
	s.logger.Info("speak", slog.String("text", text))
}

func (s *LogSpeaker) SpeakMessage(key string) {
	s.Speak(Message(s.language, key))
}

// NullSpeaker drops all feedback.
type NullSpeaker struct{}

func (NullSpeaker) Speak(text string) {}

func (NullSpeaker) SpeakMessage(key string) {}

var _ domain.Speaker = (*LogSpeaker)(nil)
var _ domain.Speaker = NullSpeaker{}
