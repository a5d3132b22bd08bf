package system

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"deskvox/internal/assistant"
)

// Screen captures screenshots with an external tool. The "{path}" argument
// of the command is replaced with the output file.
type Screen struct {
	dir  string
	argv []string
	run  runFunc
}

func NewScreen(dir string, argv []string) *Screen {
	return &Screen{dir: dir, argv: argv, run: runCommand}
}

func (s *Screen) Capture(ctx context.Context, path string) error {
	if len(s.argv) == 0 {
		return errors.New("no screenshot command configured")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}

	args := make([]string, 0, len(s.argv)-1)
	for _, a := range s.argv[1:] {
		args = append(args, strings.ReplaceAll(a, "{path}", path))
	}
	return s.run(ctx, s.argv[0], args...)
}

var _ assistant.Screen = (*Screen)(nil)
