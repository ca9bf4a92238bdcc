package session

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// SkillEntry is one matched or missing skill. The server sends either a
// bare name or an object.
type SkillEntry struct {
	Skill  string `mapstructure:"skill" json:"skill"`
	Reason string `mapstructure:"reason" json:"reason,omitempty"`
	Gap    string `mapstructure:"gap" json:"gap,omitempty"`
	Code   string `mapstructure:"code" json:"code,omitempty"`
}

// Explanation returns the reason for a match or the gap for a missing skill.
func (e SkillEntry) Explanation() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Gap
}

type SkillReport struct {
	Matched []SkillEntry `mapstructure:"matched_skills" json:"matched_skills"`
	Missing []SkillEntry `mapstructure:"missing_skills" json:"missing_skills"`
}

var skillEntryType = reflect.TypeOf(SkillEntry{})

func bareSkillHook(from, to reflect.Type, data any) (any, error) {
	if to == skillEntryType && from.Kind() == reflect.String {
		return map[string]any{"skill": data}, nil
	}
	return data, nil
}

// DecodeSkillReport reads the matched and missing skill lists of a result.
func DecodeSkillReport(result map[string]any) (*SkillReport, error) {
	var report SkillReport
	cfg := &mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(bareSkillHook),
		WeaklyTypedInput: true,
		Result:           &report,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(result); err != nil {
		return nil, fmt.Errorf("decode skill report: %w", err)
	}

	return &report, nil
}
