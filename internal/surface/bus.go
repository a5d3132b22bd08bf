package surface

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"deskvox/internal/assistant"
)

const writeTimeout = 5 * time.Second

type BusMessage struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Kind    string          `json:"kind"`
	Content string          `json:"content,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Bus mirrors the conversation to a websocket hub so a remote UI can render
// it. A broken connection is redialled once per message.
type Bus struct {
	url  string
	from string
	log  *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewBus(wsURL, from string, log *slog.Logger) (*Bus, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}

	b := &Bus{url: u.String(), from: from, log: log}
	if err := b.dial(); err != nil {
		return nil, err
	}

	log.Info("Connected to bus", "url", b.url)
	return b, nil
}

func (b *Bus) dial() error {
	conn, _, err := websocket.DefaultDialer.Dial(b.url, nil)
	if err != nil {
		return fmt.Errorf("dial bus: %w", err)
	}
	b.conn = conn
	return nil
}

func (b *Bus) Write(m *BusMessage) error {
	m.From = b.from
	if m.To == "" {
		m.To = "ui"
	}

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.send(data); err == nil {
		return nil
	}

	b.log.Warn("Bus write failed, redialling", "url", b.url)
	b.conn.Close()
	if err := b.dial(); err != nil {
		return err
	}
	return b.send(data)
}

func (b *Bus) send(data []byte) error {
	_ = b.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = b.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return b.conn.Close()
}

func (b *Bus) emit(kind, content string, data any) {
	m := &BusMessage{Kind: kind, Content: content}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			b.log.Error("Failed to encode bus payload", "kind", kind, "err", err)
			return
		}
		m.Data = raw
	}

	if err := b.Write(m); err != nil {
		b.log.Error("Failed to publish on bus", "kind", kind, "err", err)
	}
}

func (b *Bus) User(text string)      { b.emit("user", text, nil) }
func (b *Bus) Assistant(text string) { b.emit("assistant", text, nil) }
func (b *Bus) Error(text string)     { b.emit("error", text, nil) }
func (b *Bus) Status(text string)    { b.emit("status", text, nil) }

func (b *Bus) ShowFiles(dir string, entries []assistant.FileEntry) {
	b.emit("files", dir, entries)
}

func (b *Bus) ShowCopy(src, dst string) {
	b.emit("copy", src, map[string]string{"src": src, "dst": dst})
}

func (b *Bus) ShowAnalytics(history []string) {
	b.emit("analytics", "", map[string][]Count{
		"commands": CommandCounts(history),
		"words":    WordCounts(history, 20),
	})
}

var _ assistant.Surface = (*Bus)(nil)
