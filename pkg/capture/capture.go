// Package capture records inbound session events to JSONL, optionally zstd
// compressed, and replays recordings as an offline session transport.
package capture

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/go-mclib/containers/pkg/client"
	"github.com/go-mclib/containers/pkg/protocol"
)

// Entry is one recorded line.
type Entry struct {
	At    time.Time       `json:"at"`
	Frame json.RawMessage `json:"frame"`
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Recorder appends events to a capture file. Paths ending in .zst are zstd
// compressed.
type Recorder struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	now func() time.Time
}

func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating capture dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating capture file: %w", err)
	}
	r := &Recorder{f: f, now: time.Now}
	if compressed(path) {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		r.enc = enc
		r.w = bufio.NewWriterSize(enc, 64*1024)
	} else {
		r.w = bufio.NewWriterSize(f, 64*1024)
	}
	return r, nil
}

// Record appends ev.
func (r *Recorder) Record(ev protocol.Event) error {
	frame, err := protocol.EncodeEvent(ev)
	if err != nil {
		return err
	}
	b, err := json.Marshal(Entry{At: r.now().UTC(), Frame: frame})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return os.ErrClosed
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	return r.w.WriteByte('\n')
}

// Handler returns a client handler that records every event it sees.
func (r *Recorder) Handler(logger *zap.Logger) client.Handler {
	return func(_ *client.Client, ev protocol.Event) {
		if err := r.Record(ev); err != nil {
			logger.Warn("capture: record failed", zap.String("event", ev.Type()), zap.Error(err))
		}
	}
}

// Close flushes and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.w == nil {
		return nil
	}
	err := r.w.Flush()
	if r.enc != nil {
		if cerr := r.enc.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	r.w, r.enc, r.f = nil, nil, nil
	return err
}

// Reader reads a capture file back.
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner
}

func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture: %w", err)
	}
	r := &Reader{f: f}
	var src io.Reader = f
	if compressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		r.dec = dec
		src = dec
	}
	r.sc = bufio.NewScanner(src)
	r.sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	return r, nil
}

// Next returns the next recorded event, or io.EOF at the end. Lines that do
// not decode return an error wrapping protocol.ErrMalformedFrame; reading can
// continue past them.
func (r *Reader) Next() (protocol.Event, error) {
	for r.sc.Scan() {
		line := r.sc.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("%w: capture line: %v", protocol.ErrMalformedFrame, err)
		}
		return protocol.DecodeEvent(e.Frame)
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *Reader) Close() error {
	if r.dec != nil {
		r.dec.Close()
	}
	return r.f.Close()
}
