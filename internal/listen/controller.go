// Package listen implements the wake-word listening state machine. One
// background goroutine owns the capture/transcribe loop; consumers
// receive events over a channel and never share state with the loop.
package listen

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"voice_trader/internal/domain"
	"voice_trader/internal/infra"
)

// Mode is the listener's current state. Exactly one mode is active at a
// time.
type Mode string

const (
	ModeIdle       Mode = "idle"
	ModePassive    Mode = "passive"
	ModeActive     Mode = "active"
	ModeProcessing Mode = "processing"
)

// EventType discriminates controller events.
type EventType int

const (
	EventModeChanged EventType = iota + 1
	EventWakeDetected
	EventCommandReady
	EventAudioLevel
	EventError
)

// Event is delivered to the consumer in the order its triggering condition
// occurred within the loop.
type Event struct {
	Type  EventType
	Mode  Mode   // EventModeChanged
	Text  string // EventCommandReady: command with wake word stripped
	Level int    // EventAudioLevel, 0-100
	Err   error  // EventError
}

// Config holds listener tuning. Zero values fall back to the defaults the
// desktop app shipped with.
type Config struct {
	WakeWord       string
	WakeVariants   []string // extra spellings on top of the built-in table
	ActiveDuration time.Duration
	PassiveChunk   time.Duration
	ActiveChunk    time.Duration
	SampleRate     int
	Sensitivity    int // 1-10
	ErrorBackoff   time.Duration
}

func (c *Config) applyDefaults() {
	if c.WakeWord == "" {
		c.WakeWord = "whisper"
	}
	if c.ActiveDuration <= 0 {
		c.ActiveDuration = 15 * time.Second
	}
	if c.PassiveChunk <= 0 {
		c.PassiveChunk = 2 * time.Second
	}
	if c.ActiveChunk <= 0 {
		c.ActiveChunk = 5 * time.Second
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Sensitivity < 1 || c.Sensitivity > 10 {
		c.Sensitivity = 5
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = time.Second
	}
}

// Controller is the wake-word state machine. Start launches the loop;
// Stop (or context cancellation) ends it at the next iteration boundary -
// an in-flight capture or transcription is never interrupted mid-call.
type Controller struct {
	cfg     Config
	audio   domain.AudioSource
	stt     domain.Transcriber
	speaker domain.Speaker
	wake    *wakeMatcher
	logger  *slog.Logger

	events chan Event

	mu          sync.Mutex
	mode        Mode
	activeStart time.Time
	stop        bool
	running     bool

	wg sync.WaitGroup
}

// NewController wires the state machine to its capabilities. speaker may be
// nil; feedback is then skipped.
func NewController(cfg Config, audio domain.AudioSource, stt domain.Transcriber, speaker domain.Speaker) *Controller {
	cfg.applyDefaults()
	return &Controller{
		cfg:     cfg,
		audio:   audio,
		stt:     stt,
		speaker: speaker,
		wake:    newWakeMatcher(cfg.WakeWord, cfg.WakeVariants),
		logger:  slog.Default().With("module", "listener"),
		events:  make(chan Event, 64),
		mode:    ModeIdle,
	}
}

// Events returns the consumer channel. Events are dropped (with a warning)
// rather than ever blocking the listening loop.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Mode returns the current state.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Start begins passive listening on a dedicated goroutine.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stop = false
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(ctx)
}

// Stop requests termination. Honored after the current capture/transcribe
// call returns; Stop does not wait for that.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stop = true
	c.mu.Unlock()
}

// Wait blocks until the loop has exited.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()
	defer func() {
		c.setMode(ModeIdle)
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.logger.Info("listening started", slog.String("wake_word", c.cfg.WakeWord))
	c.setMode(ModePassive)

	for !c.stopped(ctx) {
		switch c.Mode() {
		case ModePassive:
			c.passiveCycle(ctx)
		case ModeActive, ModeProcessing:
			c.activeCycle(ctx)
		default:
			return
		}
	}
	c.logger.Info("listening stopped")
}

// passiveCycle captures a short chunk and scans it for the wake word.
func (c *Controller) passiveCycle(ctx context.Context) {
	samples, err := c.audio.Record(ctx, c.cfg.PassiveChunk.Seconds(), c.cfg.SampleRate)
	if err != nil {
		c.reportError(ctx, err)
		return
	}
	if c.stopped(ctx) {
		return
	}

	level := AudioLevel(samples)
	c.emit(Event{Type: EventAudioLevel, Level: level})

	// Too quiet: skip the expensive transcription call entirely.
	if level < silenceThreshold(c.cfg.Sensitivity) {
		return
	}

	text, err := c.transcribe(samples)
	if err != nil {
		c.reportError(ctx, err)
		return
	}
	if c.stopped(ctx) {
		return
	}

	if text != "" && c.wake.Match(text) {
		c.logger.Info("wake word detected", slog.String("transcript", text))
		c.emit(Event{Type: EventWakeDetected})
		c.speak("wake_detected")

		c.mu.Lock()
		c.activeStart = time.Now()
		c.mu.Unlock()
		c.setMode(ModeActive)
	}
}

// activeCycle awaits a full command within the active window.
func (c *Controller) activeCycle(ctx context.Context) {
	c.mu.Lock()
	elapsed := time.Since(c.activeStart)
	c.mu.Unlock()

	// Window exhausted: back to passive. Not an error, no error event.
	if elapsed >= c.cfg.ActiveDuration {
		c.logger.Debug("active window timed out")
		c.speak("timeout")
		c.setMode(ModePassive)
		return
	}

	remaining := c.cfg.ActiveDuration - elapsed
	chunk := c.cfg.ActiveChunk
	if remaining < chunk {
		chunk = remaining
	}

	samples, err := c.audio.Record(ctx, chunk.Seconds(), c.cfg.SampleRate)
	if err != nil {
		c.reportError(ctx, err)
		return
	}
	if c.stopped(ctx) {
		return
	}

	level := AudioLevel(samples)
	c.emit(Event{Type: EventAudioLevel, Level: level})
	if level < silenceThreshold(c.cfg.Sensitivity) {
		return
	}

	c.setMode(ModeProcessing)
	text, err := c.transcribe(samples)
	if err != nil {
		c.reportError(ctx, err)
		c.setMode(ModeActive)
		return
	}
	if c.stopped(ctx) {
		return
	}

	cmd := c.wake.Strip(text)
	if cmd == "" {
		// Only the wake word (or nothing) was heard; keep waiting.
		c.setMode(ModeActive)
		return
	}

	c.logger.Info("command captured", slog.String("command", cmd))
	c.emit(Event{Type: EventCommandReady, Text: cmd})
	c.speak("command_received")
	c.setMode(ModePassive)
}

func (c *Controller) setMode(mode Mode) {
	c.mu.Lock()
	changed := c.mode != mode
	c.mode = mode
	c.mu.Unlock()

	if changed {
		c.emit(Event{Type: EventModeChanged, Mode: mode})
	}
}

// transcribe runs speech-to-text and records the call latency.
func (c *Controller) transcribe(samples []float32) (string, error) {
	start := time.Now()
	text, err := c.stt.Transcribe(samples, c.cfg.SampleRate)
	if err != nil {
		return "", err
	}
	infra.GlobalMetrics.RecordTranscription(time.Since(start).Nanoseconds())
	return text, nil
}

func (c *Controller) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop
}

// reportError emits an error event and backs off briefly so a broken
// microphone or model cannot spin the loop.
func (c *Controller) reportError(ctx context.Context, err error) {
	c.logger.Error("listener cycle failed", slog.Any("error", err))
	c.emit(Event{Type: EventError, Err: err})

	select {
	case <-ctx.Done():
	case <-time.After(c.cfg.ErrorBackoff):
	}
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("event channel full, dropping event", slog.Int("type", int(ev.Type)))
	}
}

func (c *Controller) speak(key string) {
	if c.speaker != nil {
		c.speaker.SpeakMessage(key)
	}
}
