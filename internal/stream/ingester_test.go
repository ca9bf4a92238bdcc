package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const document = `{"step": 1, "message": "Чтение резюме"}
{"type": "step", "step_id": 2}
{"type": "partial_update", "data": {"situation": "Migrating a monolith ✓"}}

{"type": "result", "data": {"score": 8}}
{"type": "error", "message": "model overloaded"}
`

// chunkedReader returns the payload split at the given offsets.
type chunkedReader struct {
	chunks []string
}

func newChunkedReader(payload string, cuts ...int) *chunkedReader {
	r := &chunkedReader{}
	prev := 0
	for _, cut := range cuts {
		r.chunks = append(r.chunks, payload[prev:cut])
		prev = cut
	}
	r.chunks = append(r.chunks, payload[prev:])
	return r
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	for len(r.chunks) > 0 && r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	return n, nil
}

func collect(t *testing.T, r io.Reader) []Event {
	t.Helper()
	var events []Event
	err := New(zap.NewNop(), 0).Ingest(context.Background(), r, func(ev Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("unexpected ingest error: %v", err)
	}
	return events
}

func assertDocumentEvents(t *testing.T, events []Event) {
	t.Helper()
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d: %+v", len(events), events)
	}

	if events[0].Kind != KindStep || !events[0].HasStep || events[0].Step != 1 || events[0].Message != "Чтение резюме" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Kind != KindStep || events[1].Step != 2 {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if events[2].Kind != KindPartial || events[2].Data["situation"] != "Migrating a monolith ✓" {
		t.Fatalf("unexpected partial event: %+v", events[2])
	}
	if events[3].Kind != KindResult || events[3].Data["score"] != float64(8) {
		t.Fatalf("unexpected result event: %+v", events[3])
	}
	if events[4].Kind != KindError || events[4].Message != "model overloaded" {
		t.Fatalf("unexpected error event: %+v", events[4])
	}
}

func TestIngestWholeDocument(t *testing.T) {
	t.Parallel()
	assertDocumentEvents(t, collect(t, strings.NewReader(document)))
}

func TestIngestOneByteAtATime(t *testing.T) {
	t.Parallel()
	assertDocumentEvents(t, collect(t, iotest.OneByteReader(strings.NewReader(document))))
}

func TestIngestEveryTwoWaySplit(t *testing.T) {
	t.Parallel()

	// Covers cuts inside lines, on newlines and inside multi-byte runes.
	for cut := 1; cut < len(document); cut++ {
		events := collect(t, newChunkedReader(document, cut))
		if len(events) != 5 {
			t.Fatalf("cut at %d: expected 5 events, got %d", cut, len(events))
		}
	}
}

func TestIngestSplitInsideRune(t *testing.T) {
	t.Parallel()

	cut := strings.Index(document, "Ч") + 1
	assertDocumentEvents(t, collect(t, newChunkedReader(document, cut, cut+1, cut+3)))
}

func TestIngestDropsTrailingPartialLine(t *testing.T) {
	t.Parallel()

	payload := "{\"step\": 1}\n{\"type\": \"result\", \"data\": {}}"
	events := collect(t, strings.NewReader(payload))
	if len(events) != 1 {
		t.Fatalf("expected only the terminated line, got %d events", len(events))
	}
	if events[0].Kind != KindStep {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}

func TestIngestSkipsMalformedLines(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	payload := strings.Join([]string{
		`{"step": 1}`,
		`{not json`,
		`[1, 2, 3]`,
		`{"type": "mystery"}`,
		`{"unrelated": true}`,
		`{"step": 2.5}`,
		`{"step": 3}`,
		``,
	}, "\n")

	var steps []int
	err := New(zap.New(core), 0).Ingest(context.Background(), strings.NewReader(payload), func(ev Event) {
		steps = append(steps, ev.Step)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(steps) != 2 || steps[0] != 1 || steps[1] != 3 {
		t.Fatalf("expected steps [1 3], got %v", steps)
	}

	if dropped := observed.FilterMessage("dropping stream line").Len(); dropped != 5 {
		t.Fatalf("expected 5 dropped lines to be logged, got %d", dropped)
	}
}

func TestIngestCRLF(t *testing.T) {
	t.Parallel()

	events := collect(t, strings.NewReader("{\"step\": 1}\r\n{\"step\": 2}\r\n"))
	if len(events) != 2 || events[1].Step != 2 {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestIngestTransportError(t *testing.T) {
	t.Parallel()

	broken := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("{\"step\": 1}\n{\"step\""), iotest.ErrReader(broken))

	var events []Event
	err := New(nil, 0).Ingest(context.Background(), r, func(ev Event) {
		events = append(events, ev)
	})
	if !errors.Is(err, broken) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected events before the failure to be delivered, got %d", len(events))
	}
}

func TestIngestCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(nil, 0).Ingest(ctx, strings.NewReader(document), func(Event) {
		t.Fatal("no events expected after cancellation")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
