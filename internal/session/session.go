package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"deskvox/internal/intent"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	MinSpeechRate = 100
	MaxSpeechRate = 200
)

var ErrPending = errors.New("another interaction is pending")

// Pending marks a multi-turn dialogue in progress. The zero value means
// nothing is pending.
type Pending struct {
	Name   bool
	Intent intent.Intent
}

func (p Pending) Active() bool {
	return p.Name || p.Intent != intent.None
}

func (p Pending) String() string {
	switch {
	case p.Name:
		return "name"
	case p.Intent != intent.None:
		return p.Intent.String()
	default:
		return "none"
	}
}

type Preferences struct {
	Name       string `json:"name"`
	Theme      string `json:"theme"`
	SpeechRate int    `json:"speech_rate"`
	Language   string `json:"language"`
}

type Snapshot struct {
	ID string `json:"id"`
	Preferences
	Pending string `json:"pending"`
	History int    `json:"history"`
}

// Session is the per-instance state of the assistant. All methods are safe
// for concurrent use.
type Session struct {
	id string

	mu      sync.Mutex
	prefs   Preferences
	history []string
	pending Pending
}

func New(p Preferences) *Session {
	if p.Name == "" {
		p.Name = "User"
	}
	if p.Theme != ThemeDark {
		p.Theme = ThemeLight
	}
	if p.Language == "" {
		p.Language = "en"
	}
	p.SpeechRate = clampRate(p.SpeechRate)

	return &Session{id: uuid.NewString(), prefs: p}
}

// ID identifies this run of the assistant on the bus and in status replies.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Name
}

func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Name = name
}

func (s *Session) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Theme
}

func (s *Session) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme %q", theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Theme = theme
	return nil
}

func (s *Session) SpeechRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.SpeechRate
}

// SetSpeechRate clamps rate into [MinSpeechRate, MaxSpeechRate] and returns
// the value stored.
func (s *Session) SetSpeechRate(rate int) int {
	rate = clampRate(rate)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.SpeechRate = rate
	return rate
}

func (s *Session) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Record appends the utterance to the action history unchanged.
func (s *Session) Record(utterance string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, utterance)
}

func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

func (s *Session) Pending() Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// BeginPending occupies the single pending slot for a follow-up question.
func (s *Session) BeginPending(in intent.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending.Active() {
		return fmt.Errorf("%w: %s", ErrPending, s.pending)
	}
	s.pending = Pending{Intent: in}
	return nil
}

func (s *Session) EndPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending.Name {
		s.pending = Pending{}
	}
}

// ExpectName arms name capture: the next utterance becomes the display name.
func (s *Session) ExpectName() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = Pending{Name: true}
}

// TakeName stores utterance as the display name if name capture is armed and
// disarms it. It reports whether the utterance was consumed.
func (s *Session) TakeName(utterance string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pending.Name {
		return false
	}
	s.prefs.Name = utterance
	s.pending = Pending{}
	return true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:          s.id,
		Preferences: s.prefs,
		Pending:     s.pending.String(),
		History:     len(s.history),
	}
}

func clampRate(rate int) int {
	if rate == 0 {
		return 150
	}
	if rate < MinSpeechRate {
		return MinSpeechRate
	}
	if rate > MaxSpeechRate {
		return MaxSpeechRate
	}
	return rate
}
