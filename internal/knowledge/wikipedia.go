package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"deskvox/internal/assistant"
)

var (
	ErrNotFound     = errors.New("no article found")
	ErrDisambiguous = errors.New("query is ambiguous")
	errEmptySummary = errors.New("article has no summary")
)

const userAgent = "deskvox/1.0 (desktop voice assistant)"

// Wikipedia fetches page summaries from the Wikipedia REST API.
type Wikipedia struct {
	endpoint string
	client   *http.Client
}

func NewWikipedia(endpoint string, client *http.Client) *Wikipedia {
	if client == nil {
		client = http.DefaultClient
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &Wikipedia{endpoint: endpoint, client: client}
}

func (w *Wikipedia) Summary(ctx context.Context, query string, sentences int) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(query), " ", "_")
	if title == "" {
		return "", ErrNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+url.PathEscape(title), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("wikipedia read: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, query)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("wikipedia: unexpected status %d", resp.StatusCode)
	}

	if gjson.GetBytes(body, "type").String() == "disambiguation" {
		return "", fmt.Errorf("%w: %s", ErrDisambiguous, query)
	}

	extract := gjson.GetBytes(body, "extract").String()
	if extract == "" {
		return "", errEmptySummary
	}

	return FirstSentences(extract, sentences), nil
}

var _ assistant.Encyclopedia = (*Wikipedia)(nil)
