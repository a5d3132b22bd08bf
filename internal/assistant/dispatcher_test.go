package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"deskvox/internal/intent"
)

func TestMoveMouseParsesTwoIntegers(t *testing.T) {
	d, f := newFixture()

	d.Dispatch(context.Background(), "move mouse", answers("100 200"))

	if diff := cmp.Diff([][2]int{{100, 200}}, f.pointer.moves); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
	if got := f.surface.last(); got != "Mouse moved to position (100, 200)" {
		t.Fatalf("last ack = %q", got)
	}
}

func TestMoveMouseRejectsBadCoordinates(t *testing.T) {
	for _, in := range []string{"abc", "100", "1 2 3", "1.5 2"} {
		d, f := newFixture()

		d.Dispatch(context.Background(), "move mouse", answers(in))

		if len(f.pointer.moves) != 0 {
			t.Errorf("%q: pointer moved to %v", in, f.pointer.moves)
		}
		if got := f.surface.last(); got != "Sorry, I couldn't understand the position." {
			t.Errorf("%q: last ack = %q", in, got)
		}
	}
}

func TestShutdownNeedsYes(t *testing.T) {
	cases := []struct {
		name     string
		followUp Listener
		want     bool
	}{
		{"yes please", answers("yes please"), true},
		{"no", answers("no"), false},
		{"silence", answers(), false},
		{"unintelligible", failing(ErrUnintelligible), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, f := newFixture()

			d.Dispatch(context.Background(), "shutdown", c.followUp)

			ran := len(f.launcher.runs) == 1 && cmp.Equal(f.launcher.runs[0], testApps.Shutdown)
			if ran != c.want {
				t.Fatalf("shutdown ran = %v, want %v (runs %v)", ran, c.want, f.launcher.runs)
			}
			want := "Shutdown cancelled, Ada"
			if c.want {
				want = "Shutting down the computer, Ada"
			}
			if got := f.surface.last(); got != want {
				t.Fatalf("last ack = %q, want %q", got, want)
			}
		})
	}
}

func TestCreateFileAppendsTxtAndOverwrites(t *testing.T) {
	d, f := newFixture()

	d.Dispatch(context.Background(), "create a file", answers("notes"))
	d.Dispatch(context.Background(), "create a file", answers("notes"))

	if got := f.files.written["notes.txt"]; got != placeholderContent {
		t.Fatalf("content = %q", got)
	}
	want := "File notes.txt has been created in the current directory, Ada"
	if got := f.surface.last(); got != want {
		t.Fatalf("last ack = %q", got)
	}
}

func TestCreateFileWriteFailure(t *testing.T) {
	d, f := newFixture()
	f.files.err = errors.New("read-only file system")

	d.Dispatch(context.Background(), "create a file", answers("notes"))

	if got := f.surface.last(); got != "Could not create notes.txt" {
		t.Fatalf("last ack = %q", got)
	}
}

func TestHistoryRecordsTopLevelUtterancesOnly(t *testing.T) {
	d, f := newFixture()

	in := []string{"Move Mouse ", "what's up", "please DELETE this", "click"}
	d.Dispatch(context.Background(), in[0], answers("5 6"))
	d.Dispatch(context.Background(), in[1], answers())
	d.Dispatch(context.Background(), in[2], answers())
	d.Dispatch(context.Background(), in[3], answers())

	if diff := cmp.Diff(in, f.sess.History()); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownAndUnhandledIntents(t *testing.T) {
	for _, in := range []string{"", "hello there", "delete everything"} {
		d, f := newFixture()

		d.Dispatch(context.Background(), in, answers())

		if got := f.surface.last(); got != msgUnknown {
			t.Errorf("%q: last ack = %q", in, got)
		}
	}
}

func TestNameCaptureBypassesResolution(t *testing.T) {
	d, f := newFixture()
	f.sess.ExpectName()

	d.Dispatch(context.Background(), "open browser", answers())

	if len(f.launcher.runs) != 0 {
		t.Fatalf("launcher ran %v", f.launcher.runs)
	}
	if f.sess.Name() != "open browser" {
		t.Fatalf("name = %q", f.sess.Name())
	}
	if got := f.surface.last(); got != "Hello open browser! How can I help you today?" {
		t.Fatalf("last ack = %q", got)
	}

	d.Dispatch(context.Background(), "open browser", answers())
	if len(f.launcher.runs) != 1 {
		t.Fatalf("second utterance should dispatch, runs %v", f.launcher.runs)
	}
}

func TestPanicIsContained(t *testing.T) {
	d, f := newFixture()
	f.pointer.panics = true

	d.Dispatch(context.Background(), "click", answers())

	if got := f.surface.last(); got != msgFailed {
		t.Fatalf("last ack = %q", got)
	}

	f.pointer.panics = false
	d.Dispatch(context.Background(), "click", answers())
	if got := f.surface.last(); got != "Mouse clicked, Ada." {
		t.Fatalf("session did not continue, last ack = %q", got)
	}
}

func TestFollowUpListenFailures(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrUnintelligible, msgRepeat},
		{errors.Join(ErrRecognizer, errors.New("dial tcp: timeout")), msgNoService},
	}

	for _, c := range cases {
		d, f := newFixture()

		d.Dispatch(context.Background(), "type something", failing(c.err))

		if got := f.surface.last(); got != c.want {
			t.Errorf("%v: last ack = %q, want %q", c.err, got, c.want)
		}
		if len(f.pointer.typed) != 0 {
			t.Errorf("%v: typed %v", c.err, f.pointer.typed)
		}
	}
}

func TestFollowUpTimeoutIsSilent(t *testing.T) {
	d, f := newFixture()

	d.Dispatch(context.Background(), "open website", answers())

	if got := f.surface.last(); got != "What website do you want to open?" {
		t.Fatalf("last ack = %q", got)
	}
	if len(f.launcher.urls) != 0 {
		t.Fatalf("opened %v", f.launcher.urls)
	}
	if f.sess.Pending().Active() {
		t.Fatal("pending interaction left behind")
	}
}

func TestPendingIsSetWhileAsking(t *testing.T) {
	d, f := newFixture()

	var seen string
	l := listenerFunc(func(context.Context) (string, error) {
		seen = f.sess.Pending().String()
		return "down", nil
	})

	d.Dispatch(context.Background(), "scroll", l)

	if seen != string(intent.Scroll) {
		t.Fatalf("pending during ask = %q", seen)
	}
	if f.sess.Pending().Active() {
		t.Fatal("pending not cleared")
	}
}

type listenerFunc func(context.Context) (string, error)

func (f listenerFunc) Listen(ctx context.Context) (string, error) { return f(ctx) }

func TestSpeechFailureIsShownNotFatal(t *testing.T) {
	d, f := newFixture()
	f.speaker.err = errors.New("no audio device")

	d.Dispatch(context.Background(), "what time is it", answers())

	if got := f.surface.last(); got != "The current time is 14:05:07, Ada" {
		t.Fatalf("last ack = %q", got)
	}
	if !contains(f.surface.errLines(), msgNoSpeech) {
		t.Fatalf("errors = %v", f.surface.errLines())
	}
}

func TestScroll(t *testing.T) {
	cases := map[string][]int{
		"scroll up please": {10},
		"down":             {-10},
		"sideways":         nil,
	}

	for in, want := range cases {
		d, f := newFixture()

		d.Dispatch(context.Background(), "scroll", answers(in))

		if diff := cmp.Diff(want, f.pointer.scrolls); diff != "" {
			t.Errorf("%q: scrolls mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestScreenshotNaming(t *testing.T) {
	d, f := newFixture()

	d.Dispatch(context.Background(), "take a screenshot", answers())

	want := "assistant_screenshot_20240309_140507.png"
	if len(f.screen.paths) != 1 || f.screen.paths[0] != want {
		t.Fatalf("paths = %v", f.screen.paths)
	}
	if got := f.surface.last(); got != "Screenshot saved as "+want {
		t.Fatalf("last ack = %q", got)
	}

	f.screen.err = errors.New("grim: not found")
	d.Dispatch(context.Background(), "screenshot", answers())
	if got := f.surface.last(); got != "Failed to take screenshot" {
		t.Fatalf("last ack = %q", got)
	}
}

func TestSingleShotLaunchers(t *testing.T) {
	cases := []struct {
		in   string
		argv []string
		ack  string
	}{
		{"open browser", testApps.Browser, "Opening browser..."},
		{"open notepad", testApps.Notepad, "Opening Notepad, Ada"},
		{"open calculator", testApps.Calculator, "Opening Calculator, Ada"},
		{"open file explorer", testApps.FileExplorer, "Opening File Explorer..."},
	}

	for _, c := range cases {
		d, f := newFixture()

		d.Dispatch(context.Background(), c.in, answers())

		if diff := cmp.Diff([][]string{c.argv}, f.launcher.runs); diff != "" {
			t.Errorf("%q: runs mismatch (-want +got):\n%s", c.in, diff)
		}
		if !contains(f.surface.lines(), c.ack) {
			t.Errorf("%q: acks = %v", c.in, f.surface.lines())
		}
	}
}

func TestLauncherFailureIsReported(t *testing.T) {
	d, f := newFixture()
	f.launcher.err = errors.New("exec: not found")

	d.Dispatch(context.Background(), "open calculator", answers())
	if got := f.surface.last(); got != "Could not open Calculator." {
		t.Fatalf("last ack = %q", got)
	}

	d.Dispatch(context.Background(), "open application", answers("gimp"))
	if got := f.surface.last(); got != "Could not open gimp. Please check the application name." {
		t.Fatalf("last ack = %q", got)
	}

	d.Dispatch(context.Background(), "close application", answers("gimp"))
	if got := f.surface.last(); got != "Could not close gimp. Please check the application name." {
		t.Fatalf("last ack = %q", got)
	}
}

func TestApplicationsUseFollowUpVerbatim(t *testing.T) {
	d, f := newFixture()

	d.Dispatch(context.Background(), "open application", answers("Firefox"))
	d.Dispatch(context.Background(), "close application", answers("firefox-bin"))

	if diff := cmp.Diff([]string{"Firefox"}, f.launcher.starts); diff != "" {
		t.Fatalf("starts mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"firefox-bin"}, f.launcher.kills); diff != "" {
		t.Fatalf("kills mismatch:\n%s", diff)
	}
	if got := f.surface.last(); got != "Closing firefox-bin, Ada." {
		t.Fatalf("last ack = %q", got)
	}
}

func TestWebsiteAndSearch(t *testing.T) {
	d, f := newFixture()

	d.Dispatch(context.Background(), "open website", answers("go.dev"))
	d.Dispatch(context.Background(), "search online", answers("go generics"))

	want := []string{"https://go.dev", "https://www.google.com/search?q=go+generics"}
	if diff := cmp.Diff(want, f.launcher.urls); diff != "" {
		t.Fatalf("urls mismatch (-want +got):\n%s", diff)
	}
	if got := f.surface.last(); got != "Searching for go generics online." {
		t.Fatalf("last ack = %q", got)
	}
}

func TestSearchWikipedia(t *testing.T) {
	d, f := newFixture()
	f.wiki.summary = "Go is a language. It is fast."

	d.Dispatch(context.Background(), "search wikipedia", answers("golang"))

	if got := f.surface.last(); got != "According to Wikipedia: Go is a language. It is fast." {
		t.Fatalf("last ack = %q", got)
	}

	f.wiki.err = errors.New("page not found")
	d.Dispatch(context.Background(), "search wikipedia", answers("zzzz"))
	if got := f.surface.last(); got != msgFailed {
		t.Fatalf("last ack = %q", got)
	}
}

func TestListFiles(t *testing.T) {
	d, f := newFixture()
	f.files.dirs = map[string][]FileEntry{
		"/tmp":   {{Name: "a.txt", Size: 3}},
		"/empty": {},
	}

	d.Dispatch(context.Background(), "list files", answers("/tmp"))
	if got := f.surface.last(); got != "Showing files in /tmp" {
		t.Fatalf("last ack = %q", got)
	}
	if len(f.surface.files["/tmp"]) != 1 {
		t.Fatalf("listing not shown: %v", f.surface.files)
	}

	d.Dispatch(context.Background(), "list files", answers("/empty"))
	if got := f.surface.last(); got != "No files found in /empty" {
		t.Fatalf("last ack = %q", got)
	}

	d.Dispatch(context.Background(), "list files", answers("/nope"))
	if got := f.surface.last(); got != "Could not access /nope" {
		t.Fatalf("last ack = %q", got)
	}
}

func TestCopyFileAsksTwice(t *testing.T) {
	d, f := newFixture()

	d.Dispatch(context.Background(), "copy file", answers("a.txt", "b.txt"))

	if diff := cmp.Diff([][2]string{{"a.txt", "b.txt"}}, f.files.copies); diff != "" {
		t.Fatalf("copies mismatch:\n%s", diff)
	}
	if len(f.surface.copies) != 1 {
		t.Fatalf("copy progress not shown")
	}
	if got := f.surface.last(); got != "Copied a.txt to b.txt" {
		t.Fatalf("last ack = %q", got)
	}

	d.Dispatch(context.Background(), "copy file", answers("a.txt"))
	if got := f.surface.last(); got != "Where should I copy it to?" {
		t.Fatalf("copy without destination acked %q", got)
	}
}

func TestCopyFileFailure(t *testing.T) {
	d, f := newFixture()
	f.files.err = errors.New("notes.txt and notes.txt are the same file")

	d.Dispatch(context.Background(), "copy file", answers("notes.txt", "."))

	if len(f.surface.copies) != 1 {
		t.Fatalf("copy progress not shown")
	}
	if got := f.surface.last(); got != "Failed to copy file" {
		t.Fatalf("last ack = %q", got)
	}
}

func TestVisualizationsAndExit(t *testing.T) {
	d, f := newFixture()

	d.Dispatch(context.Background(), "click", answers())
	d.Dispatch(context.Background(), "show visualizations", answers())

	if len(f.surface.analytics) != 1 || len(f.surface.analytics[0]) != 2 {
		t.Fatalf("analytics = %v", f.surface.analytics)
	}

	d.Dispatch(context.Background(), "exit", answers())
	if f.quit != 1 || f.surface.last() != "Goodbye!" {
		t.Fatalf("quit = %d, last = %q", f.quit, f.surface.last())
	}
}

func TestCloseWebsiteIsUnsupported(t *testing.T) {
	d, f := newFixture()

	d.Dispatch(context.Background(), "close website", answers())

	if got := f.surface.last(); got != "Closing the browser is not supported directly. Please close it manually." {
		t.Fatalf("last ack = %q", got)
	}
}
