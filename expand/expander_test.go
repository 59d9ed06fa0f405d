package expand

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/juris/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpander(t *testing.T, completer *mock.MockCompleter) *QueryExpander {
	t.Helper()
	e, err := NewQueryExpander(completer)
	require.NoError(t, err)
	return e
}

func TestExpand_ArticleTemplate(t *testing.T) {
	completer := mock.NewMockCompleter("should not be used")
	e := newExpander(t, completer)

	queries := e.Expand(context.Background(), "Que dit l'article 742?")

	require.Len(t, queries, 10)
	assert.Equal(t, "Que dit l'article 742?", queries[0])
	assert.Equal(t, "article 742", queries[1])
	assert.Equal(t, "art. 742", queries[2])
	assert.Equal(t, "article 742 Code civil Québec", queries[4])
	assert.Equal(t, "responsabilité civile extracontractuelle", queries[9])
	assert.Zero(t, completer.CallCount())
}

func TestExpand_ArticleTemplateDedupesQuestion(t *testing.T) {
	e := newExpander(t, mock.NewMockCompleter(""))

	queries := e.Expand(context.Background(), "ARTICLE 742")
	assert.Len(t, queries, 9)
	assert.Equal(t, "ARTICLE 742", queries[0])
}

func TestExpand_ModelRephrasing(t *testing.T) {
	response := strings.Join([]string{
		"1. bail résidentiel obligations locateur",
		"2) résiliation bail logement Québec",
		"- court",
		"",
		"- dépôt de garantie bail interdit",
		"BAIL RÉSIDENTIEL OBLIGATIONS LOCATEUR",
		"augmentation de loyer Tribunal administratif du logement",
		"sixième requête qui doit être ignorée",
	}, "\n")
	completer := mock.NewMockCompleter(response)
	e := newExpander(t, completer)

	queries := e.Expand(context.Background(), "Quelles sont les obligations du locateur dans un bail?")

	assert.Equal(t, []string{
		"Quelles sont les obligations du locateur dans un bail?",
		"bail résidentiel obligations locateur",
		"résiliation bail logement Québec",
		"dépôt de garantie bail interdit",
		"augmentation de loyer Tribunal administratif du logement",
		"bail",
	}, queries)
	assert.Equal(t, 1, completer.CallCount())
	assert.Contains(t, completer.LastPrompt(), "Quelles sont les obligations du locateur dans un bail?")
}

func TestExpand_ModelFailure(t *testing.T) {
	completer := mock.NewMockCompleter("").WithCompleteFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model unavailable")
	})
	e := newExpander(t, completer)

	queries := e.Expand(context.Background(), "Comment contester un testament?")
	assert.Equal(t, []string{"Comment contester un testament?"}, queries)
}

func TestExpand_CapsAtMaxQueries(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, "requête alternative numéro "+string(rune('a'+i)))
	}
	e := newExpander(t, mock.NewMockCompleter(strings.Join(lines, "\n")))

	queries := e.Expand(context.Background(), "Comment fonctionne la prescription en matière de contrat?")
	// question + 5 alternatives + entity query
	assert.Len(t, queries, 7)
	assert.LessOrEqual(t, len(queries), MaxQueries)
	assert.Equal(t, "contrat prescription", queries[6])
}

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "article with code",
			text: "Selon l'art. 1457 C.c.Q., quelle responsabilité?",
			want: []string{"article 1457", "C.c.Q.", "responsabilité"},
		},
		{
			name: "range",
			text: "Que prévoient les articles 516 à 521 sur le divorce?",
			want: []string{"articles 516 à 521", "divorce"},
		},
		{
			name: "decimal article",
			text: "article 12.1 du Code criminel",
			want: []string{"article 12.1", "Code criminel"},
		},
		{
			name: "nothing",
			text: "Bonjour",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEntities(tt.text))
		})
	}
}
