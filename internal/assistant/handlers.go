package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const placeholderContent = "This is a new file created by your voice assistant."

const scrollStep = 10

func openBrowser(ctx context.Context, t *turn) error {
	t.say(ctx, "Opening browser...")
	t.launch(ctx, "browser", t.d.Apps.Browser)
	return nil
}

func openNotepad(ctx context.Context, t *turn) error {
	if t.launch(ctx, "Notepad", t.d.Apps.Notepad) {
		t.say(ctx, "Opening Notepad, %s", t.name())
	}
	return nil
}

func openFileExplorer(ctx context.Context, t *turn) error {
	t.say(ctx, "Opening File Explorer...")
	t.launch(ctx, "File Explorer", t.d.Apps.FileExplorer)
	return nil
}

func openCalculator(ctx context.Context, t *turn) error {
	if t.launch(ctx, "Calculator", t.d.Apps.Calculator) {
		t.say(ctx, "Opening Calculator, %s", t.name())
	}
	return nil
}

func (t *turn) launch(ctx context.Context, what string, argv []string) bool {
	if err := t.d.Launcher.Run(ctx, argv); err != nil {
		t.d.Log.Error("Failed to launch", "what", what, "argv", argv, "err", err)
		t.say(ctx, "Could not open %s.", what)
		return false
	}
	return true
}

func searchWikipedia(ctx context.Context, t *turn) error {
	query, ok := t.ask(ctx, fmt.Sprintf("What do you want to search for, %s?", t.name()))
	if !ok {
		return nil
	}
	if t.d.Wiki == nil {
		return errors.New("no encyclopedia configured")
	}

	summary, err := t.d.Wiki.Summary(ctx, query, 2)
	if err != nil {
		return fmt.Errorf("summary %q: %w", query, err)
	}

	t.say(ctx, "According to Wikipedia: %s", summary)
	return nil
}

func tellTime(ctx context.Context, t *turn) error {
	now := t.d.Now().Format("15:04:05")
	t.say(ctx, "The current time is %s, %s", now, t.name())
	return nil
}

func takeScreenshot(ctx context.Context, t *turn) error {
	filename := fmt.Sprintf("assistant_screenshot_%s.png", t.d.Now().Format("20060102_150405"))

	if err := t.d.Screen.Capture(ctx, filename); err != nil {
		t.d.Log.Error("Screenshot error", "file", filename, "err", err)
		t.say(ctx, "Failed to take screenshot")
		return nil
	}

	t.say(ctx, "Screenshot saved as %s", filename)
	return nil
}

func shutdown(ctx context.Context, t *turn) error {
	reply, ok := t.ask(ctx, fmt.Sprintf("Are you sure you want to shut down, %s?", t.name()))
	if !ok || !strings.Contains(strings.ToLower(reply), "yes") {
		t.say(ctx, "Shutdown cancelled, %s", t.name())
		return nil
	}

	t.say(ctx, "Shutting down the computer, %s", t.name())
	if err := t.d.Launcher.Run(ctx, t.d.Apps.Shutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func createFile(ctx context.Context, t *turn) error {
	filename, ok := t.ask(ctx, "What should be the name of the file?")
	if !ok {
		return nil
	}

	name := filename + ".txt"
	path, err := t.d.Files.WriteFile(name, placeholderContent)
	if err != nil {
		t.d.Log.Error("Failed to create file", "file", name, "err", err)
		t.say(ctx, "Could not create %s", name)
		return nil
	}

	t.d.Log.Info("File created", "path", path)
	t.say(ctx, "File %s has been created in the current directory, %s", name, t.name())
	return nil
}

func moveMouse(ctx context.Context, t *turn) error {
	position, ok := t.ask(ctx, fmt.Sprintf("Where do you want to move the mouse, %s? Please tell the coordinates.", t.name()))
	if !ok {
		return nil
	}

	x, y, err := parseCoordinates(position)
	if err != nil {
		t.d.Log.Warn("Bad coordinates", "text", position, "err", err)
		t.say(ctx, "Sorry, I couldn't understand the position.")
		return nil
	}

	if err := t.d.Pointer.MoveTo(x, y); err != nil {
		t.d.Log.Warn("Pointer move failed", "x", x, "y", y, "err", err)
	}
	t.say(ctx, "Mouse moved to position (%d, %d)", x, y)
	return nil
}

// parseCoordinates accepts exactly two whitespace-separated integers.
func parseCoordinates(s string) (int, int, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("want 2 values, got %d", len(fields))
	}

	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}

	return x, y, nil
}

func click(ctx context.Context, t *turn) error {
	if err := t.d.Pointer.Click(); err != nil {
		t.d.Log.Warn("Pointer click failed", "err", err)
	}
	t.say(ctx, "Mouse clicked, %s.", t.name())
	return nil
}

func scroll(ctx context.Context, t *turn) error {
	direction, ok := t.ask(ctx, "Would you like to scroll up or down?")
	if !ok {
		return nil
	}

	direction = strings.ToLower(direction)
	switch {
	case strings.Contains(direction, "up"):
		t.scrollBy(scrollStep)
		t.say(ctx, "Scrolled up")
	case strings.Contains(direction, "down"):
		t.scrollBy(-scrollStep)
		t.say(ctx, "Scrolled down")
	}
	return nil
}

func (t *turn) scrollBy(amount int) {
	if err := t.d.Pointer.Scroll(amount); err != nil {
		t.d.Log.Warn("Pointer scroll failed", "amount", amount, "err", err)
	}
}

func typeText(ctx context.Context, t *turn) error {
	text, ok := t.ask(ctx, "What would you like me to type?")
	if !ok {
		return nil
	}

	if err := t.d.Pointer.TypeText(text); err != nil {
		t.d.Log.Warn("Keyboard injection failed", "err", err)
	}
	t.say(ctx, "Typed: %s", text)
	return nil
}

func exit(ctx context.Context, t *turn) error {
	t.say(ctx, "Goodbye!")
	t.d.Quit()
	return nil
}

func openApplication(ctx context.Context, t *turn) error {
	app, ok := t.ask(ctx, "What application do you want to open?")
	if !ok {
		return nil
	}

	if err := t.d.Launcher.Start(ctx, app); err != nil {
		t.d.Log.Error("Error opening application", "app", app, "err", err)
		t.say(ctx, "Could not open %s. Please check the application name.", app)
		return nil
	}

	t.say(ctx, "Opening %s, %s.", app, t.name())
	return nil
}

func closeApplication(ctx context.Context, t *turn) error {
	app, ok := t.ask(ctx, "What application do you want to close?")
	if !ok {
		return nil
	}

	if err := t.d.Launcher.Kill(ctx, app); err != nil {
		t.d.Log.Error("Error closing application", "app", app, "err", err)
		t.say(ctx, "Could not close %s. Please check the application name.", app)
		return nil
	}

	t.say(ctx, "Closing %s, %s.", app, t.name())
	return nil
}

func openWebsite(ctx context.Context, t *turn) error {
	website, ok := t.ask(ctx, "What website do you want to open?")
	if !ok {
		return nil
	}

	if err := t.d.Launcher.OpenURL(ctx, "https://"+website); err != nil {
		return fmt.Errorf("open website %q: %w", website, err)
	}

	t.say(ctx, "Opening %s, %s.", website, t.name())
	return nil
}

func closeWebsite(ctx context.Context, t *turn) error {
	t.say(ctx, "Closing the browser is not supported directly. Please close it manually.")
	return nil
}

func searchOnline(ctx context.Context, t *turn) error {
	query, ok := t.ask(ctx, "What do you want to search for online?")
	if !ok {
		return nil
	}

	if err := t.d.Launcher.OpenURL(ctx, "https://www.google.com/search?q="+url.QueryEscape(query)); err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}

	t.say(ctx, "Searching for %s online.", query)
	return nil
}

func listFiles(ctx context.Context, t *turn) error {
	dir, ok := t.ask(ctx, "Which directory should I list files from?")
	if !ok {
		return nil
	}

	entries, err := t.d.Files.ListDir(dir)
	if err != nil {
		t.d.Log.Error("Directory error", "dir", dir, "err", err)
		t.say(ctx, "Could not access %s", dir)
		return nil
	}
	if len(entries) == 0 {
		t.say(ctx, "No files found in %s", dir)
		return nil
	}

	t.d.Surface.ShowFiles(dir, entries)
	t.say(ctx, "Showing files in %s", dir)
	return nil
}

func copyFile(ctx context.Context, t *turn) error {
	src, ok := t.ask(ctx, "Which file should I copy?")
	if !ok {
		return nil
	}
	dst, ok := t.ask(ctx, "Where should I copy it to?")
	if !ok {
		return nil
	}

	t.d.Surface.ShowCopy(src, dst)
	if err := t.d.Files.CopyFile(src, dst); err != nil {
		t.d.Log.Error("Copy error", "src", src, "dst", dst, "err", err)
		t.say(ctx, "Failed to copy file")
		return nil
	}

	t.say(ctx, "Copied %s to %s", src, dst)
	return nil
}

func showVisualizations(ctx context.Context, t *turn) error {
	t.d.Surface.ShowAnalytics(t.d.Session.History())
	return nil
}
