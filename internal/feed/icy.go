package feed

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// defaultUA is sent with every stream and status request.
var defaultUA = "RunningText/1.0 (+https://local)"

var errNoICY = errors.New("icy metadata unavailable")

// statusPollInterval is how often the Icecast status endpoint is re-read.
var statusPollInterval = 10 * time.Second

// ICYSource follows the "now playing" title of a radio stream. It reads
// in-band ICY metadata and falls back to polling the Icecast
// status-json.xsl endpoint next to the mount.
type ICYSource struct {
	streamURL string
	client    *http.Client
	logger    Logger
}

// NewICYSource returns a source for streamURL. A nil client uses a transport
// tuned for long-lived streams.
func NewICYSource(streamURL string, client *http.Client, log Logger) *ICYSource {
	if client == nil {
		client = streamClient()
	} else if client.CheckRedirect == nil {
		c := *client
		c.CheckRedirect = noRedirect
		client = &c
	}
	if log == nil {
		log = nopLogger{}
	}
	return &ICYSource{streamURL: streamURL, client: client, logger: log}
}

// noRedirect returns 3xx responses to watchDirect, which follows them itself.
func noRedirect(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

func streamClient() *http.Client {
	return &http.Client{
		CheckRedirect: noRedirect,
		Transport: &http.Transport{
			ForceAttemptHTTP2: false,
			Proxy:             http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   7 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 7 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
}

// Watch emits "Station: Title" style texts until ctx is done or the stream
// ends.
func (s *ICYSource) Watch(ctx context.Context, onText func(string)) error {
	emit := dedupe(onText)
	err := s.watchDirect(ctx, s.streamURL, emit, 0)
	if !errors.Is(err, errNoICY) {
		return err
	}
	s.logger.Printf("feed: %s has no icy metadata, trying status-json", s.streamURL)
	return s.watchStatus(ctx, emit)
}

// watchDirect reads metadata blocks interleaved in the stream body.
func (s *ICYSource) watchDirect(ctx context.Context, streamURL string, emit func(string), hops int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Icy-MetaData", "1")
	req.Header.Set("User-Agent", defaultUA)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		loc := resp.Header.Get("Location")
		if loc == "" || hops >= 2 {
			return fmt.Errorf("redirect from %s not followed", streamURL)
		}
		next, err := resp.Request.URL.Parse(loc)
		if err != nil {
			return fmt.Errorf("redirect from %s: %w", streamURL, err)
		}
		resp.Body.Close()
		return s.watchDirect(ctx, next.String(), emit, hops+1)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stream %s: %s", streamURL, resp.Status)
	}

	metaInt, err := strconv.Atoi(resp.Header.Get("icy-metaint"))
	if err != nil || metaInt <= 0 {
		return errNoICY
	}
	station := html.UnescapeString(strings.TrimSpace(resp.Header.Get("icy-name")))
	emit(station)

	r := bufio.NewReader(resp.Body)
	for {
		title, err := nextMetaBlock(ctx, r, metaInt)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		emit(nowPlaying(station, title))
	}
}

// watchStatus polls status-json.xsl until ctx is cancelled.
func (s *ICYSource) watchStatus(ctx context.Context, emit func(string)) error {
	apiURL, err := buildStatusURL(s.streamURL)
	if err != nil {
		return err
	}
	text, err := s.pollStatus(ctx, apiURL)
	if err != nil {
		return err
	}
	emit(text)

	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			text, err := s.pollStatus(ctx, apiURL)
			if err != nil {
				s.logger.Printf("feed: status poll: %v", err)
				continue
			}
			emit(text)
		}
	}
}

func (s *ICYSource) pollStatus(ctx context.Context, apiURL string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(cctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", defaultUA)
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status-json %s: %s", apiURL, resp.Status)
	}
	var st iceStats
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&st); err != nil {
		return "", fmt.Errorf("status-json decode: %w", err)
	}
	for _, src := range st.IceStats.Source {
		if t := strings.TrimSpace(src.Title); t != "" {
			station := src.Server
			if strings.TrimSpace(station) == "" {
				station = src.IcyName
			}
			return nowPlaying(html.UnescapeString(strings.TrimSpace(station)), html.UnescapeString(t)), nil
		}
	}
	return "", errors.New("status-json: no source with a title")
}

// nowPlaying joins station and title for display.
func nowPlaying(station, title string) string {
	switch {
	case title == "":
		return station
	case station == "":
		return title
	}
	return station + ": " + title
}

// buildStatusURL converts a stream URL ("/live/rock") into its sibling JSON
// endpoint ("/live/status-json.xsl").
func buildStatusURL(streamURL string) (string, error) {
	u, err := url.Parse(streamURL)
	if err != nil {
		return "", err
	}
	u.Path = path.Join("/", path.Dir(u.Path), "status-json.xsl")
	u.RawQuery = ""
	return u.String(), nil
}

type iceStats struct {
	IceStats struct {
		Source iceSources `json:"source"`
	} `json:"icestats"`
}

type iceSource struct {
	Title   string `json:"title"`
	Server  string `json:"server_name"`
	IcyName string `json:"icy-name"`
}

// iceSources accepts Icecast's `source` field as either a single object or
// an array, depending on how many mounts the server has.
type iceSources []iceSource

func (s *iceSources) UnmarshalJSON(b []byte) error {
	b = []byte(strings.TrimSpace(string(b)))
	if len(b) == 0 || string(b) == "null" {
		*s = nil
		return nil
	}
	if b[0] == '[' {
		var many []iceSource
		if err := json.Unmarshal(b, &many); err != nil {
			return err
		}
		*s = many
		return nil
	}
	var one iceSource
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*s = iceSources{one}
	return nil
}
