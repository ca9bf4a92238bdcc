// Package stream consumes newline-delimited JSON responses and turns every
// complete line into an Event.
package stream

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/spigell/interview-prep/internal/utils"
	"go.uber.org/zap"
)

const (
	chunkSize           = 32 << 10
	defaultMaxLogLength = 200
)

// Handler receives events in the order their lines appeared in the stream.
type Handler func(Event)

type Ingester struct {
	logger    *zap.Logger
	maxLogLen int
}

func New(logger *zap.Logger, maxLogLength int) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Ingester{logger: logger, maxLogLen: maxLogLength}
}

// Ingest reads r until EOF, calling handle for every complete line that
// parses into an event. Malformed lines are logged and skipped. Bytes after
// the last newline are discarded when the stream ends. A nil error means the
// transport finished cleanly.
func (in *Ingester) Ingest(ctx context.Context, r io.Reader, handle Handler) error {
	var (
		buf   []byte
		chunk = make([]byte, chunkSize)
		lines int
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for {
				idx := bytes.IndexByte(buf, '\n')
				if idx < 0 {
					break
				}
				in.handleLine(buf[:idx], handle)
				lines++
				buf = buf[idx+1:]
			}
			// Compact so the held-back fragment does not pin consumed bytes.
			buf = append([]byte(nil), buf...)
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				if len(bytes.TrimSpace(buf)) > 0 {
					in.logger.Debug("discarding incomplete trailing line",
						zap.Int("bytes", len(buf)),
						zap.String("preview", utils.TruncateForLog(string(buf), in.maxLogLen)),
					)
				}
				in.logger.Debug("stream completed", zap.Int("lines", lines))
				return nil
			}
			return readErr
		}
	}
}

func (in *Ingester) handleLine(line []byte, handle Handler) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	ev, err := parseLine(line)
	if err != nil {
		level := in.logger.Warn
		if errors.Is(err, errShapeless) {
			level = in.logger.Debug
		}
		level("dropping stream line",
			zap.Error(err),
			zap.String("preview", utils.TruncateForLog(string(line), in.maxLogLen)),
		)
		return
	}

	handle(ev)
}
