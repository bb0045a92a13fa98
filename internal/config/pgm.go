package config

import (
	"bufio"
	"fmt"
	"io"
)

// LoadPGM reads a minimal binary PGM (P5) mask image, returning W*H
// bytes. Ungrounded on any pack example (none of them parses PGM); kept
// intentionally small, matching the original's mask reader's own
// simplicity: a header parse followed by a raw byte read.
func LoadPGM(r io.Reader, wantW, wantH int) ([]byte, error) {
	br := bufio.NewReader(r)
	magic, err := readToken(br)
	if err != nil {
		return nil, err
	}
	if magic != "P5" {
		return nil, fmt.Errorf("config: not a binary PGM (magic %q)", magic)
	}
	w, err := readIntToken(br)
	if err != nil {
		return nil, err
	}
	h, err := readIntToken(br)
	if err != nil {
		return nil, err
	}
	maxval, err := readIntToken(br)
	if err != nil {
		return nil, err
	}
	if maxval <= 0 || maxval > 255 {
		return nil, fmt.Errorf("config: unsupported PGM maxval %d", maxval)
	}
	if w != wantW || h != wantH {
		return nil, fmt.Errorf("config: mask size %dx%d does not match camera size %dx%d", w, h, wantW, wantH)
	}
	buf := make([]byte, w*h)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, fmt.Errorf("config: short PGM data: %w", err)
	}
	return buf, nil
}

func readToken(r *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '#' {
			if _, err := r.ReadString('\n'); err != nil {
				return "", err
			}
			continue
		}
		if isSpace(b) {
			if len(tok) == 0 {
				continue
			}
			break
		}
		tok = append(tok, b)
	}
	return string(tok), nil
}

func readIntToken(r *bufio.Reader) (int, error) {
	tok, err := readToken(r)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("config: invalid PGM integer %q", tok)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
