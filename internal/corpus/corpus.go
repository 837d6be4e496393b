// Package corpus reads transcript files: one utterance per line, optionally
// xz-compressed.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/chaz8081/wer/internal/errkind"
)

// maxLine bounds a single utterance.
const maxLine = 4 << 20

// xzMagic is the stream header of an xz file.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// ReadLines returns the lines of the file at path. Files ending in .xz or
// starting with the xz magic bytes are decompressed.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := Lines(f)
	if err != nil {
		return nil, fmt.Errorf("corpus: %s: %w", path, err)
	}
	return lines, nil
}

// Lines reads r line by line, transparently decompressing xz input.
// Trailing carriage returns are dropped; blank lines are kept so line
// numbers stay aligned between reference and hypothesis files.
func Lines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(xzMagic))
	var src io.Reader = br
	if string(head) == string(xzMagic) {
		zr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		src = zr
	}

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", len(lines)+1, err)
	}
	return lines, nil
}

// ReadPair loads a reference and a hypothesis file that must have the same
// number of lines.
func ReadPair(refPath, hypPath string) (refs, hyps []string, err error) {
	refs, err = ReadLines(refPath)
	if err != nil {
		return nil, nil, err
	}
	hyps, err = ReadLines(hypPath)
	if err != nil {
		return nil, nil, err
	}
	if len(refs) != len(hyps) {
		return nil, nil, fmt.Errorf("corpus: %s has %d lines, %s has %d: %w",
			refPath, len(refs), hypPath, len(hyps), errkind.ErrShape)
	}
	return refs, hyps, nil
}

// WriteLines writes lines to path, xz-compressing when the name ends in .xz.
func WriteLines(path string, lines []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("corpus: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("corpus: close %s: %w", path, cerr)
		}
	}()

	var w io.Writer = f
	var zw *xz.Writer
	if strings.HasSuffix(path, ".xz") {
		zw, err = xz.NewWriter(f)
		if err != nil {
			return fmt.Errorf("corpus: xz writer: %w", err)
		}
		w = zw
	}

	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return fmt.Errorf("corpus: write %s: %w", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("corpus: flush %s: %w", path, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("corpus: close xz stream: %w", err)
		}
	}
	return nil
}
