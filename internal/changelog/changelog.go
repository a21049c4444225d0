// Package changelog fetches SDK release notes from upstream repositories.
//
// Two source shapes are supported: a plain CHANGELOG.md (the tail is
// returned) and a GitHub releases Atom feed (recent entries are flattened to
// markdown). Responses are cached for a day; when a refresh fails, a stale
// cached copy is served rather than failing the caller.
package changelog

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/docfox/docfox/internal/cache"
)

const (
	// CacheTTL bounds how long a fetched changelog is considered fresh.
	CacheTTL = 24 * time.Hour

	// maxReleases caps how many Atom feed entries are rendered.
	maxReleases = 20

	// tailLines is how much of a raw CHANGELOG.md is kept; recent versions
	// live at one end of the file.
	tailLines = 1000
)

// ErrUnknownSDK reports an SDK slug with no configured source.
var ErrUnknownSDK = errors.New("unknown sdk")

// SourceType distinguishes the two upstream formats.
type SourceType string

const (
	SourceChangelog    SourceType = "changelog"
	SourceReleasesAtom SourceType = "releases_atom"
)

// Source locates one SDK's release notes.
type Source struct {
	URL  string
	Type SourceType
}

// defaultSources maps SDK slugs to their upstream release notes.
var defaultSources = map[string]Source{
	"js":            {URL: "https://raw.githubusercontent.com/livekit/client-sdk-js/main/CHANGELOG.md", Type: SourceChangelog},
	"react":         {URL: "https://raw.githubusercontent.com/livekit/components-js/main/packages/react/CHANGELOG.md", Type: SourceChangelog},
	"react-native":  {URL: "https://raw.githubusercontent.com/livekit/client-sdk-react-native/main/CHANGELOG.md", Type: SourceChangelog},
	"swift":         {URL: "https://github.com/livekit/client-sdk-swift/releases.atom", Type: SourceReleasesAtom},
	"android":       {URL: "https://github.com/livekit/client-sdk-android/releases.atom", Type: SourceReleasesAtom},
	"flutter":       {URL: "https://raw.githubusercontent.com/livekit/client-sdk-flutter/main/CHANGELOG.md", Type: SourceChangelog},
	"unity":         {URL: "https://github.com/livekit/client-sdk-unity/releases.atom", Type: SourceReleasesAtom},
	"rust":          {URL: "https://github.com/livekit/rust-sdks/releases.atom", Type: SourceReleasesAtom},
	"python-agents": {URL: "https://raw.githubusercontent.com/livekit/agents/main/livekit-agents/CHANGELOG.md", Type: SourceChangelog},
	"server-node":   {URL: "https://github.com/livekit/node-sdks/releases.atom", Type: SourceReleasesAtom},
	"server-go":     {URL: "https://raw.githubusercontent.com/livekit/server-sdk-go/main/CHANGELOG.md", Type: SourceChangelog},
	"server-python": {URL: "https://github.com/livekit/python-sdks/releases.atom", Type: SourceReleasesAtom},
}

// Changelog is a fetched, formatted release history.
type Changelog struct {
	SDK     string `json:"sdk"`
	Link    string `json:"link"`
	Content string `json:"changelog"`
}

// Fetcher retrieves and caches SDK changelogs. Safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	sources map[string]Source
	cache   *cache.TTL[string, string]
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher with the default SDK sources. client and
// logger may be nil.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  client,
		sources: defaultSources,
		cache:   cache.New[string, string](CacheTTL, nil),
		// One upstream request at a time, a few per second at most.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		logger:  logger,
	}
}

// SDKs returns the known SDK slugs, sorted.
func (f *Fetcher) SDKs() []string {
	names := make([]string, 0, len(f.sources))
	for name := range f.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fetch returns the changelog for sdk, from cache when fresh. On upstream
// failure a stale cached copy is returned if one exists.
func (f *Fetcher) Fetch(ctx context.Context, sdk string) (*Changelog, error) {
	source, ok := f.sources[sdk]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSDK, sdk)
	}

	if content, hit := f.cache.Get(sdk); hit {
		f.logger.Debug("changelog cache hit", "sdk", sdk)
		return &Changelog{SDK: sdk, Link: source.URL, Content: content}, nil
	}

	content, err := f.fetch(ctx, source)
	if err != nil {
		if stale, ok := f.cache.GetStale(sdk); ok {
			f.logger.Warn("changelog refresh failed, serving stale copy", "sdk", sdk, "error", err)
			return &Changelog{SDK: sdk, Link: source.URL, Content: stale}, nil
		}
		return nil, fmt.Errorf("fetch changelog for %s: %w", sdk, err)
	}

	f.cache.Set(sdk, content)
	return &Changelog{SDK: sdk, Link: source.URL, Content: content}, nil
}

func (f *Fetcher) fetch(ctx context.Context, source Source) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if source.Type == SourceReleasesAtom {
		return formatReleasesAtom(body)
	}
	return tail(string(body), tailLines), nil
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Updated string `xml:"updated"`
	Content string `xml:"content"`
}

// formatReleasesAtom flattens a GitHub releases Atom feed into markdown
// sections, newest first, capped at maxReleases.
func formatReleasesAtom(feed []byte) (string, error) {
	var parsed atomFeed
	if err := xml.Unmarshal(feed, &parsed); err != nil {
		return "", fmt.Errorf("parse atom feed: %w", err)
	}

	var sections []string
	for _, entry := range parsed.Entries {
		if len(sections) >= maxReleases {
			break
		}

		title := strings.TrimPrefix(entry.Title, "Release ")
		if title == "" {
			title = "Unknown Version"
		}
		date, _, _ := strings.Cut(entry.Updated, "T")

		body := strings.TrimSpace(stripHTML(entry.Content))
		sections = append(sections, fmt.Sprintf("## %s (%s)\n%s\n", title, date, body))
	}

	return strings.Join(sections, "\n---\n\n"), nil
}

// stripHTML extracts the text content of an HTML fragment.
func stripHTML(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return b.String()
}
