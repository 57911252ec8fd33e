package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type testLogger struct{}

func (testLogger) Printf(string, ...any) {}

func TestExtractStreamTitle(t *testing.T) {
	tests := []struct {
		name string
		meta string
		want string
	}{
		{name: "single quotes simple", meta: "StreamTitle='Artist - Track';", want: "Artist - Track"},
		{name: "quoted apostrophe", meta: "StreamTitle='JANE'S ADDICTION - BEEN CAUGHT STEALING';", want: "JANE'S ADDICTION - BEEN CAUGHT STEALING"},
		{name: "double quotes", meta: `StreamTitle="Double Quoted Title";`, want: "Double Quoted Title"},
		{name: "missing terminator uses entire tail", meta: "StreamTitle='No Terminator", want: "No Terminator"},
		{name: "trim spaces and HTML entities", meta: "StreamTitle=' AC/DC &amp; Friends ';", want: "AC/DC & Friends"},
		{name: "followed by StreamUrl", meta: "StreamTitle='A - B';StreamUrl='http://x';", want: "A - B"},
		{name: "NUL padding", meta: "StreamTitle='Padded';\x00\x00\x00", want: "Padded"},
		{name: "unquoted", meta: "StreamTitle=Bare;", want: "Bare"},
		{name: "empty result", meta: "StreamTitle='';", want: ""},
		{name: "no stream title present", meta: "StreamUrl='http://example'", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractStreamTitle(tt.meta); got != tt.want {
				t.Fatalf("ExtractStreamTitle(%q) = %q, want %q", tt.meta, got, tt.want)
			}
		})
	}
}

func buildICYBody(titles ...string) []byte {
	buf := bytes.NewBuffer(nil)
	for _, title := range titles {
		buf.WriteByte(0) // one audio byte per block
		meta := fmt.Sprintf("StreamTitle='%s';", title)
		for len(meta)%16 != 0 {
			meta += "\x00"
		}
		buf.WriteByte(byte(len(meta) / 16))
		buf.WriteString(meta)
	}
	return buf.Bytes()
}

func collect(t *testing.T, src Source, want int) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	got := make(chan string, 16)
	done := make(chan error, 1)
	go func() { done <- src.Watch(ctx, func(s string) { got <- s }) }()

	var out []string
	for len(out) < want {
		select {
		case s := <-got:
			out = append(out, s)
		case <-ctx.Done():
			t.Fatalf("timeout after %v", out)
		}
	}
	cancel()
	<-done
	return out
}

func TestICYSourceDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Icy-MetaData") != "1" {
			t.Errorf("missing Icy-MetaData header")
		}
		w.Header().Set("icy-metaint", "1")
		w.Header().Set("icy-name", "Rock &amp; Roll")
		w.Write(buildICYBody("One", "One", "Two"))
	}))
	defer srv.Close()

	got := collect(t, NewICYSource(srv.URL+"/live", srv.Client(), testLogger{}), 3)
	want := []string{"Rock & Roll", "Rock & Roll: One", "Rock & Roll: Two"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("update %d = %q, want %q (all %q)", i, got[i], want[i], got)
		}
	}
}

func TestICYSourceFollowsRedirect(t *testing.T) {
	var (
		mu   sync.Mutex
		hits []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/live", http.StatusFound)
		case "/live":
			if r.Header.Get("Icy-MetaData") != "1" {
				t.Errorf("Icy-MetaData header lost on redirect")
			}
			w.Header().Set("icy-metaint", "1")
			w.Header().Set("icy-name", "Jazz")
			w.Write(buildICYBody("One"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got := collect(t, NewICYSource(srv.URL+"/old", srv.Client(), testLogger{}), 2)
	if got[1] != "Jazz: One" {
		t.Fatalf("got %q", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(hits) < 2 || hits[0] != "/old" || hits[1] != "/live" {
		t.Fatalf("requests %v", hits)
	}
}

func TestICYSourceRedirectLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	src := NewICYSource(srv.URL+"/a", srv.Client(), testLogger{})
	err := src.watchDirect(context.Background(), src.streamURL, func(string) {}, 0)
	if err == nil || !strings.Contains(err.Error(), "not followed") {
		t.Fatalf("err = %v", err)
	}
}

func TestICYSourceFallsBackToStatusJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mount/rock":
			w.Write([]byte("no icy"))
		case "/mount/status-json.xsl":
			io.WriteString(w, `{"icestats":{"source":[{"title":""},{"title":"Foo - Bar","server_name":"Station"}]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got := collect(t, NewICYSource(srv.URL+"/mount/rock", srv.Client(), testLogger{}), 1)
	if got[0] != "Station: Foo - Bar" {
		t.Fatalf("got %q", got[0])
	}
}

func TestICYSourceStatusMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stream" {
			w.Write([]byte("no icy"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := NewICYSource(srv.URL+"/stream", srv.Client(), testLogger{}).Watch(ctx, func(string) {})
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Watch error = %v, want status failure", err)
	}
}

func TestStatusSingleObject(t *testing.T) {
	var st iceStats
	body := `{"icestats":{"source":{"title":"Solo","icy-name":"Mount"}}}`
	if err := json.Unmarshal([]byte(body), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(st.IceStats.Source) != 1 || st.IceStats.Source[0].IcyName != "Mount" {
		t.Fatalf("sources = %+v", st.IceStats.Source)
	}
}

func TestFileSourceFollowsWrites(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "now.txt")
	if err := os.WriteFile(p, []byte("\n  first line \nsecond\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	got := make(chan string, 8)
	go NewFileSource(p, testLogger{}).Watch(ctx, func(s string) { got <- s })

	expect := func(want string) {
		t.Helper()
		select {
		case s := <-got:
			if s != want {
				t.Fatalf("got %q, want %q", s, want)
			}
		case <-ctx.Done():
			t.Fatalf("timeout waiting for %q", want)
		}
	}
	expect("first line")

	tmp := filepath.Join(dir, "now.txt.tmp")
	if err := os.WriteFile(tmp, []byte("replaced\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, p); err != nil {
		t.Fatal(err)
	}
	expect("replaced")
}

func TestParse(t *testing.T) {
	tests := []struct {
		uri    string
		want    string
		wantErr bool
	}{
		{uri: "", want: "<nil>"},
		{uri: "text:hello", want: "feed.Static"},
		{uri: "file:/tmp/x", want: "*feed.FileSource"},
		{uri: "https://radio.example/live", want: "*feed.ICYSource"},
		{uri: "file:", wantErr: true},
		{uri: "ftp://x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			src, err := Parse(tt.uri, nil, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownSource) {
					t.Fatalf("Parse(%q) error = %v", tt.uri, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.uri, err)
			}
			if got := fmt.Sprintf("%T", src); got != tt.want {
				t.Fatalf("Parse(%q) = %s, want %s", tt.uri, got, tt.want)
			}
		})
	}
}

func TestStaticEmitsOnce(t *testing.T) {
	var got []string
	if err := Static("  hi  ").Watch(context.Background(), func(s string) { got = append(got, s) }); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "hi" {
		t.Fatalf("got %q", got)
	}
}
