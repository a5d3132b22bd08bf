package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"deskvox/internal/session"
)

type reply struct {
	text string
	err  error
}

// scriptedListener answers Listen from a fixed script, then times out.
type scriptedListener struct {
	mu      sync.Mutex
	replies []reply
	calls   int
}

func answers(texts ...string) *scriptedListener {
	l := &scriptedListener{}
	for _, t := range texts {
		l.replies = append(l.replies, reply{text: t})
	}
	return l
}

func failing(err error) *scriptedListener {
	return &scriptedListener{replies: []reply{{err: err}}}
}

func (l *scriptedListener) Listen(context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if len(l.replies) == 0 {
		return "", ErrListenTimeout
	}
	r := l.replies[0]
	l.replies = l.replies[1:]
	return r.text, r.err
}

// blockingListener returns whatever is sent on next.
type blockingListener struct {
	next chan reply
}

func (l *blockingListener) Listen(ctx context.Context) (string, error) {
	select {
	case r := <-l.next:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type recSurface struct {
	mu        sync.Mutex
	user      []string
	said      []string
	errs      []string
	files     map[string][]FileEntry
	copies    [][2]string
	analytics [][]string
}

func (s *recSurface) User(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = append(s.user, text)
}

func (s *recSurface) Assistant(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.said = append(s.said, text)
}

func (s *recSurface) Error(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, text)
}

func (s *recSurface) Status(string) {}

func (s *recSurface) ShowFiles(dir string, entries []FileEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = map[string][]FileEntry{}
	}
	s.files[dir] = entries
}

func (s *recSurface) ShowCopy(src, dst string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copies = append(s.copies, [2]string{src, dst})
}

func (s *recSurface) ShowAnalytics(history []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics = append(s.analytics, history)
}

func (s *recSurface) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.said...)
}

func (s *recSurface) last() string {
	l := s.lines()
	if len(l) == 0 {
		return ""
	}
	return l[len(l)-1]
}

func (s *recSurface) errLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.errs...)
}

type stubSpeaker struct {
	err  error
	rate int
}

func (s *stubSpeaker) Speak(context.Context, string) error { return s.err }
func (s *stubSpeaker) SetRate(rate int)                    { s.rate = rate }

type stubLauncher struct {
	mu     sync.Mutex
	runs   [][]string
	starts []string
	kills  []string
	urls   []string
	err    error
}

func (l *stubLauncher) Run(_ context.Context, argv []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, argv)
	return l.err
}

func (l *stubLauncher) Start(_ context.Context, app string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starts = append(l.starts, app)
	return l.err
}

func (l *stubLauncher) Kill(_ context.Context, app string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.kills = append(l.kills, app)
	return l.err
}

func (l *stubLauncher) OpenURL(_ context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	return l.err
}

type stubPointer struct {
	mu      sync.Mutex
	moves   [][2]int
	clicks  int
	scrolls []int
	typed   []string
	panics  bool
}

func (p *stubPointer) MoveTo(x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves = append(p.moves, [2]int{x, y})
	return nil
}

func (p *stubPointer) Click() error {
	if p.panics {
		panic("pointer device gone")
	}
	p.clicks++
	return nil
}

func (p *stubPointer) Scroll(amount int) error {
	p.scrolls = append(p.scrolls, amount)
	return nil
}

func (p *stubPointer) TypeText(text string) error {
	p.typed = append(p.typed, text)
	return nil
}

type stubScreen struct {
	paths []string
	err   error
}

func (s *stubScreen) Capture(_ context.Context, path string) error {
	s.paths = append(s.paths, path)
	return s.err
}

type stubFiles struct {
	written map[string]string
	dirs    map[string][]FileEntry
	copies  [][2]string
	err     error
}

func (f *stubFiles) WriteFile(name, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.written == nil {
		f.written = map[string]string{}
	}
	f.written[name] = content
	return "/work/" + name, nil
}

func (f *stubFiles) ListDir(path string) ([]FileEntry, error) {
	entries, ok := f.dirs[path]
	if !ok {
		return nil, errors.New("no such directory")
	}
	return entries, nil
}

func (f *stubFiles) CopyFile(src, dst string) error {
	if f.err != nil {
		return f.err
	}
	f.copies = append(f.copies, [2]string{src, dst})
	return nil
}

type stubWiki struct {
	summary string
	err     error
	queries []string
}

func (w *stubWiki) Summary(_ context.Context, query string, sentences int) (string, error) {
	w.queries = append(w.queries, query)
	return w.summary, w.err
}

type fixture struct {
	sess     *session.Session
	surface  *recSurface
	speaker  *stubSpeaker
	launcher *stubLauncher
	pointer  *stubPointer
	screen   *stubScreen
	files    *stubFiles
	wiki     *stubWiki
	quit     int
}

var testApps = Apps{
	Browser:      []string{"xdg-open", "https://"},
	Notepad:      []string{"gedit"},
	Calculator:   []string{"gnome-calculator"},
	FileExplorer: []string{"xdg-open", "."},
	Shutdown:     []string{"systemctl", "poweroff"},
}

func newFixture() (*Dispatcher, *fixture) {
	f := &fixture{
		sess:     session.New(session.Preferences{Name: "Ada"}),
		surface:  &recSurface{},
		speaker:  &stubSpeaker{},
		launcher: &stubLauncher{},
		pointer:  &stubPointer{},
		screen:   &stubScreen{},
		files:    &stubFiles{},
		wiki:     &stubWiki{},
	}

	d := NewDispatcher(Deps{
		Session:  f.sess,
		Surface:  f.surface,
		Speaker:  f.speaker,
		Launcher: f.launcher,
		Pointer:  f.pointer,
		Screen:   f.screen,
		Files:    f.files,
		Wiki:     f.wiki,
		Apps:     testApps,
		Now: func() time.Time {
			return time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
		},
		Quit: func() { f.quit++ },
		Log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return d, f
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if strings.Contains(l, want) {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
