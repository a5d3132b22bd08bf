package surface

import "deskvox/internal/assistant"

// Multi mirrors everything to each surface in order.
type Multi []assistant.Surface

func (m Multi) User(text string) {
	for _, s := range m {
		s.User(text)
	}
}

func (m Multi) Assistant(text string) {
	for _, s := range m {
		s.Assistant(text)
	}
}

func (m Multi) Error(text string) {
	for _, s := range m {
		s.Error(text)
	}
}

func (m Multi) Status(text string) {
	for _, s := range m {
		s.Status(text)
	}
}

func (m Multi) ShowFiles(dir string, entries []assistant.FileEntry) {
	for _, s := range m {
		s.ShowFiles(dir, entries)
	}
}

func (m Multi) ShowCopy(src, dst string) {
	for _, s := range m {
		s.ShowCopy(src, dst)
	}
}

func (m Multi) ShowAnalytics(history []string) {
	for _, s := range m {
		s.ShowAnalytics(history)
	}
}

var _ assistant.Surface = Multi(nil)
