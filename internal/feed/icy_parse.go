package feed

import (
	"bufio"
	"context"
	"html"
	"io"
	"strings"
)

// nextMetaBlock skips metaInt bytes of audio and returns the StreamTitle of
// the metadata block that follows. Empty blocks yield "".
func nextMetaBlock(ctx context.Context, r *bufio.Reader, metaInt int) (string, error) {
	if _, err := r.Discard(metaInt); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lb, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	if lb == 0 {
		return "", nil
	}
	meta := make([]byte, int(lb)*16)
	if _, err := io.ReadFull(r, meta); err != nil {
		return "", err
	}
	return ExtractStreamTitle(string(meta)), nil
}

// ExtractStreamTitle returns the StreamTitle value of an ICY metadata block.
// Titles may contain the quote character, so a closing quote only counts
// when it ends the block or is followed by ";key=".
func ExtractStreamTitle(meta string) string {
	if i := strings.IndexByte(meta, 0); i >= 0 {
		meta = meta[:i]
	}
	idx := strings.Index(meta, "StreamTitle=")
	if idx < 0 {
		return ""
	}
	meta = strings.TrimSpace(meta[idx+len("StreamTitle="):])
	if meta == "" {
		return ""
	}

	if q := meta[0]; q == '\'' || q == '"' {
		meta = meta[1:]
		end := -1
		for i := 0; i < len(meta); i++ {
			if meta[i] != q {
				continue
			}
			rest := strings.TrimLeft(meta[i+1:], " \t")
			if rest == "" || (rest[0] == ';' && (strings.TrimSpace(rest[1:]) == "" || strings.Contains(rest[1:], "="))) {
				end = i
				break
			}
		}
		if end < 0 {
			end = strings.LastIndexByte(meta, q)
		}
		if end >= 0 {
			meta = meta[:end]
		}
	} else if end := strings.IndexByte(meta, ';'); end >= 0 {
		meta = meta[:end]
	}
	return html.UnescapeString(strings.TrimSpace(meta))
}
