package system

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"deskvox/internal/assistant"
)

// Files is the filesystem as seen from the assistant's working directory.
// Relative paths resolve against Dir.
type Files struct {
	Dir string
}

func (f Files) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.Dir, path)
}

// WriteFile creates or truncates name and returns its full path.
func (f Files) WriteFile(name, content string) (string, error) {
	path := f.resolve(name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f Files) ListDir(path string) ([]assistant.FileEntry, error) {
	dir := f.resolve(path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	out := make([]assistant.FileEntry, 0, len(entries))
	for _, e := range entries {
		fe := assistant.FileEntry{Name: e.Name(), Dir: e.IsDir()}
		if info, err := e.Info(); err == nil {
			fe.Size = info.Size()
			fe.Modified = info.ModTime()
		}
		out = append(out, fe)
	}
	return out, nil
}

// CopyFile copies src to dst. When dst is an existing directory the file
// keeps its base name inside it.
func (f Files) CopyFile(src, dst string) error {
	src, dst = f.resolve(src), f.resolve(dst)

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	if st, err := os.Stat(dst); err == nil && st.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	if st, err := os.Stat(dst); err == nil && os.SameFile(info, st) {
		return fmt.Errorf("%s and %s are the same file", src, dst)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

var _ assistant.Filesystem = Files{}
