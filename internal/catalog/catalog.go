package catalog

import (
	"context"
	"sort"

	"github.com/spigell/interview-prep/internal/backend"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Source is the part of the backend the catalog reads from.
type Source interface {
	Questions(ctx context.Context) ([]backend.Question, error)
	Roles(ctx context.Context) ([]string, error)
}

// Catalog holds the question bank and the role list. Both may be empty when
// the corresponding fetch failed; callers must cope with that.
type Catalog struct {
	Questions []backend.Question
	Roles     []string
}

type Loader struct {
	source Source
	logger *zap.Logger
	tag    language.Tag
}

func NewLoader(source Source, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{source: source, logger: logger, tag: language.English}
}

// Load fetches both lists once. Failures are logged and leave the list empty.
func (l *Loader) Load(ctx context.Context) *Catalog {
	c := &Catalog{}

	questions, err := l.source.Questions(ctx)
	if err != nil {
		l.logger.Warn("fetching questions failed", zap.Error(err))
	} else {
		SortQuestions(questions, l.tag)
		c.Questions = questions
	}

	roles, err := l.source.Roles(ctx)
	if err != nil {
		l.logger.Warn("fetching roles failed", zap.Error(err))
	} else {
		c.Roles = roles
	}

	l.logger.Info("catalog loaded",
		zap.Int("questions", len(c.Questions)),
		zap.Int("roles", len(c.Roles)),
	)

	return c
}

// SortQuestions orders questions by text using the collation rules of tag,
// so case differences do not separate otherwise adjacent entries.
func SortQuestions(questions []backend.Question, tag language.Tag) {
	collator := collate.New(tag)
	sort.SliceStable(questions, func(i, j int) bool {
		return collator.CompareString(questions[i].Text, questions[j].Text) < 0
	})
}

// DefaultQuestion returns the first question of the bank.
func (c *Catalog) DefaultQuestion() (backend.Question, bool) {
	if c == nil || len(c.Questions) == 0 {
		return backend.Question{}, false
	}
	return c.Questions[0], true
}

func (c *Catalog) HasRole(role string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (c *Catalog) QuestionTexts() []string {
	if c == nil {
		return nil
	}
	texts := make([]string, 0, len(c.Questions))
	for _, q := range c.Questions {
		texts = append(texts, q.Text)
	}
	return texts
}
