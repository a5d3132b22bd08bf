package assistant

import (
	"context"
	"errors"
	"time"
)

// Listen outcomes a Listener reports besides text.
var (
	ErrListenTimeout  = errors.New("no speech before timeout")
	ErrUnintelligible = errors.New("speech not understood")
	ErrRecognizer     = errors.New("speech recognizer unavailable")
)

type Listener interface {
	Listen(ctx context.Context) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) error
	SetRate(rate int)
}

type Launcher interface {
	Run(ctx context.Context, argv []string) error
	Start(ctx context.Context, app string) error
	Kill(ctx context.Context, app string) error
	OpenURL(ctx context.Context, url string) error
}

type Pointer interface {
	MoveTo(x, y int) error
	Click() error
	Scroll(amount int) error
	TypeText(text string) error
}

type Screen interface {
	Capture(ctx context.Context, path string) error
}

type FileEntry struct {
	Name     string
	Size     int64
	Dir      bool
	Modified time.Time
}

type Filesystem interface {
	WriteFile(name, content string) (string, error)
	ListDir(path string) ([]FileEntry, error)
	CopyFile(src, dst string) error
}

// Surface is where the conversation and the visual views are rendered.
type Surface interface {
	User(text string)
	Assistant(text string)
	Error(text string)
	Status(text string)
	ShowFiles(dir string, entries []FileEntry)
	ShowCopy(src, dst string)
	ShowAnalytics(history []string)
}

type Encyclopedia interface {
	Summary(ctx context.Context, query string, sentences int) (string, error)
}
