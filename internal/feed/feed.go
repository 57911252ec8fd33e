// Package feed provides the text shown by a running text view: a fixed
// string, the first line of a watched file, or the "now playing" title of an
// ICY/Icecast radio stream.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Source delivers text updates until ctx is cancelled. onText may be called
// from any goroutine; callers marshal it onto their UI thread.
type Source interface {
	Watch(ctx context.Context, onText func(string)) error
}

// Logger is used for non-fatal errors.
type Logger interface {
	Printf(format string, args ...any)
}

// ErrUnknownSource is returned by Parse for unsupported source strings.
var ErrUnknownSource = errors.New("feed: unknown source")

// Static emits a single fixed text.
type Static string

// Watch emits the text once and returns.
func (s Static) Watch(ctx context.Context, onText func(string)) error {
	if t := strings.TrimSpace(string(s)); t != "" {
		onText(t)
	}
	return nil
}

// Parse builds a Source from a config string:
//
//	""                     no source
//	"text:<literal>"       Static
//	"file:<path>"          FileSource
//	"http://…", "https://…" ICYSource
func Parse(uri string, client *http.Client, log Logger) (Source, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return nil, nil
	case strings.HasPrefix(uri, "text:"):
		return Static(strings.TrimPrefix(uri, "text:")), nil
	case strings.HasPrefix(uri, "file:"):
		p := strings.TrimSpace(strings.TrimPrefix(uri, "file:"))
		if p == "" {
			return nil, fmt.Errorf("%w: empty file path", ErrUnknownSource)
		}
		return NewFileSource(p, log), nil
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return NewICYSource(uri, client, log), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, uri)
}

// dedupe drops consecutive repeats.
func dedupe(onText func(string)) func(string) {
	last := ""
	return func(s string) {
		if s == "" || s == last {
			return
		}
		last = s
		onText(s)
	}
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
