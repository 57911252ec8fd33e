package feed

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FileSource shows the first non-blank line of a file and follows edits.
// The parent directory is watched so atomic rename-over saves are seen too.
type FileSource struct {
	path   string
	logger Logger
}

// NewFileSource returns a source reading path.
func NewFileSource(path string, log Logger) *FileSource {
	if log == nil {
		log = nopLogger{}
	}
	return &FileSource{path: path, logger: log}
}

// Watch emits the current line and then every change until ctx is done.
func (f *FileSource) Watch(ctx context.Context, onText func(string)) error {
	abs, err := filepath.Abs(f.path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("file feed: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("file feed: watch %s: %w", filepath.Dir(abs), err)
	}

	emit := dedupe(onText)
	if line, err := firstLine(abs); err == nil {
		emit(line)
	} else {
		f.logger.Printf("file feed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			line, err := firstLine(abs)
			if err != nil {
				f.logger.Printf("file feed: %v", err)
				continue
			}
			emit(line)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.logger.Printf("file feed: %v", err)
		}
	}
}

// firstLine returns the first non-blank line of the file, trimmed.
func firstLine(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	return "", sc.Err()
}
