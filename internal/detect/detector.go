// Package detect evaluates the fixed secret pattern set against file contents.
//
// Two evaluation modes exist and one is chosen per run. Line mode streams the
// file and tests each line on its own, so no match can span a newline. Content
// mode reads the file (up to a cap) and tests each pattern once against the
// whole text, so a pattern whose classes admit a newline can match across
// lines: the \s* in the Password pattern lets "password\n= x" match in content
// mode but not in line mode. Otherwise both modes report the same label set
// for any file whose lines fit within the line cap.
package detect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"passcan/internal/model"
)

// ErrUnreadable wraps every failure to open or read a file.
var ErrUnreadable = errors.New("file unreadable")

const (
	DefaultMaxLineBytes    = 10 * 1024 * 1024
	DefaultMaxContentBytes = 32 * 1024 * 1024
)

// Mode selects how a file's content is evaluated.
type Mode int

const (
	ModeLine    Mode = iota // Stream line by line
	ModeContent             // Read the whole file, test once
)

func (m Mode) String() string {
	if m == ModeContent {
		return "content"
	}
	return "line"
}

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line":
		return ModeLine, nil
	case "content", "whole", "whole-file":
		return ModeContent, nil
	}
	return ModeLine, fmt.Errorf("unknown scan mode %q (want line or content)", s)
}

// Options tune a Detector. Zero values select the defaults.
type Options struct {
	Mode            Mode
	MaxLineBytes    int
	MaxContentBytes int64
}

// Detector scans file contents against the pattern set. It holds no mutable
// state and is safe for concurrent use.
type Detector struct {
	mode            Mode
	maxLineBytes    int
	maxContentBytes int64
	log             *zap.Logger
}

// New creates a Detector. A nil logger disables logging.
func New(opts Options, log *zap.Logger) *Detector {
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = DefaultMaxLineBytes
	}
	if opts.MaxContentBytes <= 0 {
		opts.MaxContentBytes = DefaultMaxContentBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{
		mode:            opts.Mode,
		maxLineBytes:    opts.MaxLineBytes,
		maxContentBytes: opts.MaxContentBytes,
		log:             log,
	}
}

// Mode returns the evaluation mode in use.
func (d *Detector) Mode() Mode {
	return d.mode
}

// Scan returns the distinct labels matching the content of r, first-seen
// order preserved.
func (d *Detector) Scan(r io.Reader) ([]string, error) {
	if d.mode == ModeContent {
		return d.scanContent(r)
	}
	return d.scanLines(r)
}

func (d *Detector) scanLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	initial := 64 * 1024
	if initial > d.maxLineBytes {
		initial = d.maxLineBytes
	}
	scanner.Buffer(make([]byte, 0, initial), d.maxLineBytes)

	var found []string
	for scanner.Scan() {
		for _, label := range MatchLine(scanner.Bytes()) {
			found = appendUnique(found, label)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

func (d *Detector) scanContent(r io.Reader) ([]string, error) {
	content, err := io.ReadAll(io.LimitReader(r, d.maxContentBytes))
	if err != nil {
		return nil, err
	}
	return MatchLine(content), nil
}

// ScanFile opens, scans and classifies one file. Failures never escape: they
// become an Error result for this file only.
func (d *Detector) ScanFile(path string) model.ScanResult {
	f, err := os.Open(path)
	if err != nil {
		d.log.Warn("cannot open file", zap.String("path", path), zap.Error(err))
		return model.NewResult(path, nil, fmt.Errorf("%w: %w", ErrUnreadable, err))
	}
	defer f.Close()

	if d.mode == ModeContent {
		if info, err := f.Stat(); err == nil && info.Size() > d.maxContentBytes {
			d.log.Warn("file exceeds content cap, scanning prefix only",
				zap.String("path", path),
				zap.Int64("size", info.Size()),
				zap.Int64("max", d.maxContentBytes))
		}
	}

	labels, err := d.Scan(f)
	if err != nil {
		d.log.Warn("cannot read file", zap.String("path", path), zap.Error(err))
		return model.NewResult(path, nil, fmt.Errorf("%w: %w", ErrUnreadable, err))
	}
	return model.NewResult(path, labels, nil)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
