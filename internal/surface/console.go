package surface

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"deskvox/internal/assistant"
)

const barWidth = 30

type palette struct {
	user, assistant, errs, status lipgloss.Style
}

func newPalettes(r *lipgloss.Renderer) map[string]palette {
	return map[string]palette{
		"light": {
			user:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
			assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
			errs:      r.NewStyle().Foreground(lipgloss.Color("1")),
			status:    r.NewStyle().Foreground(lipgloss.Color("8")),
		},
		"dark": {
			user:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
			errs:      r.NewStyle().Foreground(lipgloss.Color("9")),
			status:    r.NewStyle().Foreground(lipgloss.Color("7")),
		},
	}
}

// Console renders the conversation as lines on a terminal.
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	theme    func() string
	renderer *lipgloss.Renderer
	palettes map[string]palette
}

// NewConsole writes to w. theme is consulted on every line so theme changes
// apply immediately. Colors follow the profile detected for w, so pipes and
// files get plain text.
func NewConsole(w io.Writer, theme func() string) *Console {
	if theme == nil {
		theme = func() string { return "light" }
	}
	r := lipgloss.NewRenderer(w)
	return &Console{w: w, theme: theme, renderer: r, palettes: newPalettes(r)}
}

func (c *Console) User(text string) {
	c.line(func(p palette) lipgloss.Style { return p.user }, "You: "+text)
}

func (c *Console) Assistant(text string) {
	c.line(func(p palette) lipgloss.Style { return p.assistant }, "Assistant: "+text)
}

func (c *Console) Error(text string) {
	c.line(func(p palette) lipgloss.Style { return p.errs }, "Error: "+text)
}

func (c *Console) Status(text string) {
	c.line(func(p palette) lipgloss.Style { return p.status }, "-- "+text)
}

func (c *Console) line(pick func(palette) lipgloss.Style, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.palettes[c.theme()]
	if !ok {
		p = c.palettes["light"]
	}
	fmt.Fprintln(c.w, pick(p).Render(text))
}

func (c *Console) ShowFiles(dir string, entries []assistant.FileEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.w, "Files in %s\n", dir)

	tw := tabwriter.NewWriter(c.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tTYPE\tMODIFIED")
	for _, e := range entries {
		kind := "File"
		if e.Dir {
			kind = "Folder"
		}
		modified := ""
		if !e.Modified.IsZero() {
			modified = e.Modified.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Name, e.Size, kind, modified)
	}
	tw.Flush()
}

func (c *Console) ShowCopy(src, dst string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "Copying %s to %s\n", src, dst)
}

func (c *Console) ShowAnalytics(history []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(history) == 0 {
		fmt.Fprintln(c.w, "No command history available yet.")
		return
	}

	fmt.Fprintln(c.w, "Most Used Commands")
	writeBars(c.w, CommandCounts(history))
	fmt.Fprintln(c.w, "Command Words")
	writeBars(c.w, WordCounts(history, 10))
}

func writeBars(w io.Writer, counts []Count) {
	if len(counts) == 0 {
		return
	}
	top := counts[0].N

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	for _, c := range counts {
		n := c.N * barWidth / top
		if n == 0 {
			n = 1
		}
		fmt.Fprintf(tw, "  %s\t%s %d\n", c.Text, strings.Repeat("#", n), c.N)
	}
	tw.Flush()
}

var _ assistant.Surface = (*Console)(nil)
