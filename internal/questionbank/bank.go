// Package questionbank serves a static, embedded question set used when the
// remote question generator is unavailable or disabled.
package questionbank

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

//go:embed bank.yaml
var bankYAML []byte

type entry struct {
	Question    string `yaml:"question"`
	IdealAnswer string `yaml:"ideal_answer"`
}

var (
	loadOnce sync.Once
	bank     map[string][]entry
	loadErr  error
)

func load() (map[string][]entry, error) {
	loadOnce.Do(func() {
		bank = map[string][]entry{}
		loadErr = yaml.Unmarshal(bankYAML, &bank)
	})
	return bank, loadErr
}

// DefaultQuestions returns up to n questions with ideal answers for the given
// category. Role-based templates substitute {role} with the requested role.
// Asking for more questions than the bank holds wraps around so the caller
// always gets n entries.
func DefaultQuestions(category, role string, n int) ([]string, []string, error) {
	b, err := load()
	if err != nil {
		return nil, nil, fmt.Errorf("op=questionbank.DefaultQuestions: %w", err)
	}
	entries, ok := b[category]
	if !ok || len(entries) == 0 {
		return nil, nil, fmt.Errorf("op=questionbank.DefaultQuestions: category %q: %w", category, domain.ErrInvalidArgument)
	}
	if n <= 0 {
		n = len(entries)
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = "professional"
	}
	questions := make([]string, 0, n)
	ideals := make([]string, 0, n)
	for i := 0; i < n; i++ {
		e := entries[i%len(entries)]
		questions = append(questions, strings.ReplaceAll(e.Question, "{role}", role))
		ideals = append(ideals, strings.ReplaceAll(e.IdealAnswer, "{role}", role))
	}
	return questions, ideals, nil
}
