package session

import "strings"

// Inputs is what the skill match trigger looks at.
type Inputs struct {
	ResumeText string
	TargetRole string
	Ready      bool
}

// SkillMatchReady reports whether a skill match could run with in.
func SkillMatchReady(in Inputs) bool {
	return in.Ready && strings.TrimSpace(in.ResumeText) != "" && strings.TrimSpace(in.TargetRole) != ""
}

// ShouldStartSkillMatch decides whether moving from prev to next starts a
// skill match. Role changes and the server becoming ready start one; a
// resume change alone does not.
func ShouldStartSkillMatch(prev, next Inputs) bool {
	if !SkillMatchReady(next) {
		return false
	}
	return prev.TargetRole != next.TargetRole || !prev.Ready
}
