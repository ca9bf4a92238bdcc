package stream

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Kind string

const (
	KindStep    Kind = "step"
	KindPartial Kind = "partial_update"
	KindResult  Kind = "result"
	KindError   Kind = "error"
)

// Event is one parsed line of a stream.
type Event struct {
	Kind Kind
	// Step is meaningful only when HasStep is set.
	Step    int
	HasStep bool
	Message string
	Data    map[string]any
}

var errShapeless = errors.New("line has no recognizable event shape")

type wireLine struct {
	Type    string         `json:"type"`
	Step    *int           `json:"step"`
	StepID  *int           `json:"step_id"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// parseLine converts one complete, non-blank line into an Event.
func parseLine(line []byte) (Event, error) {
	var wire wireLine
	if err := json.Unmarshal(line, &wire); err != nil {
		return Event{}, fmt.Errorf("parse line: %w", err)
	}

	ev := Event{
		Message: wire.Message,
		Data:    wire.Data,
	}

	switch {
	case wire.StepID != nil:
		ev.Step, ev.HasStep = *wire.StepID, true
	case wire.Step != nil:
		ev.Step, ev.HasStep = *wire.Step, true
	}

	switch Kind(wire.Type) {
	case KindStep, KindPartial, KindResult, KindError:
		ev.Kind = Kind(wire.Type)
	case "":
		// Skill-match progress lines omit the type.
		if !ev.HasStep && ev.Message == "" {
			return Event{}, errShapeless
		}
		ev.Kind = KindStep
	default:
		return Event{}, fmt.Errorf("unknown event type %q", wire.Type)
	}

	return ev, nil
}
