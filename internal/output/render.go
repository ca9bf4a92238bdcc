package output

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/spigell/interview-prep/internal/health"
	"github.com/spigell/interview-prep/internal/session"
)

// BannerText describes a health snapshot in one line.
func BannerText(snap health.Snapshot) string {
	switch snap.Status {
	case health.StatusWaking:
		return fmt.Sprintf("Waking up the server (attempt %d, %s elapsed)...", snap.Attempts, snap.Elapsed.Truncate(time.Second))
	case health.StatusReady:
		return "Server is ready"
	case health.StatusTimeout:
		return fmt.Sprintf("Server did not wake up after %s; retry later", snap.Elapsed.Truncate(time.Second))
	default:
		return "Server is asleep"
	}
}

// Banner writes the health status with a tone matching it.
func (w *Writer) Banner(snap health.Snapshot) {
	text := BannerText(snap)
	switch snap.Status {
	case health.StatusReady:
		w.Success("%s", text)
	case health.StatusTimeout:
		w.Failure("%s", text)
	case health.StatusWaking:
		w.Warning("%s", text)
	default:
		w.Muted("%s", text)
	}
}

// Trace writes the progress messages of every step in order.
func (w *Writer) Trace(title string, snap session.Snapshot) {
	w.Title("%s", title)

	steps := make([]int, 0, len(snap.Trace))
	for step := range snap.Trace {
		steps = append(steps, step)
	}
	slices.Sort(steps)

	for _, step := range steps {
		for _, line := range snap.Trace[step] {
			w.Muted("  [%d] %s", step, line)
		}
	}
}

// SkillReport writes the matched and missing skill cards.
func (w *Writer) SkillReport(report *session.SkillReport) {
	if report == nil {
		w.Warning("No skill report available")
		return
	}

	w.Title("Matched skills (%d)", len(report.Matched))
	for _, entry := range report.Matched {
		w.skillCard(CheckMark, entry)
	}

	w.Title("Missing skills (%d)", len(report.Missing))
	for _, entry := range report.Missing {
		w.skillCard(XMark, entry)
	}
}

func (w *Writer) skillCard(mark string, entry session.SkillEntry) {
	w.Print("  %s %s\n", mark, entry.Skill)
	if explanation := entry.Explanation(); explanation != "" {
		w.Muted("      %s", explanation)
	}
	if entry.Code != "" {
		for _, line := range strings.Split(strings.TrimRight(entry.Code, "\n"), "\n") {
			w.Print("      | %s\n", line)
		}
	}
}

// Result writes an arbitrary result object with keys in sorted order.
func (w *Writer) Result(title string, result map[string]any) {
	w.Title("%s", title)
	if len(result) == 0 {
		w.Muted("  (empty)")
		return
	}
	w.renderMap(result, 1)
}

func (w *Writer) renderMap(m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indent := strings.Repeat("  ", depth)
	for _, k := range keys {
		label := humanize(k)
		switch v := m[k].(type) {
		case map[string]any:
			w.Print("%s%s:\n", indent, label)
			w.renderMap(v, depth+1)
		case []any:
			w.Print("%s%s:\n", indent, label)
			w.renderList(v, depth+1)
		default:
			w.Print("%s%s: %s\n", indent, label, scalar(v))
		}
	}
}

func (w *Writer) renderList(items []any, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			w.Print("%s%s\n", indent, Bullet)
			w.renderMap(v, depth+1)
		case []any:
			w.renderList(v, depth+1)
		default:
			w.Print("%s%s %s\n", indent, Bullet, scalar(v))
		}
	}
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprint(v)
	}
}

// humanize turns snake_case keys into labels.
func humanize(key string) string {
	key = strings.ReplaceAll(key, "_", " ")
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
