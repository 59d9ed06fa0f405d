package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/juris/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevanceClassifier_Answers(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{"plain yes", "OUI", true},
		{"lower case with punctuation", " oui.", true},
		{"no", "NON", false},
		{"empty", "", false},
		{"sentence containing yes", "Réponse: Oui, c'est juridique", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := mock.NewMockCompleter(tt.response)
			c, err := NewRelevanceClassifier(completer)
			require.NoError(t, err)

			assert.Equal(t, tt.want, c.IsInDomain(context.Background(), "Qu'est-ce qu'un bail?"))
			assert.Equal(t, 1, completer.CallCount())
		})
	}
}

func TestRelevanceClassifier_PromptCarriesQuery(t *testing.T) {
	completer := mock.NewMockCompleter("OUI")
	c, err := NewRelevanceClassifier(completer)
	require.NoError(t, err)

	c.IsInDomain(context.Background(), "Délai de prescription en matière civile")
	prompt := completer.LastPrompt()
	assert.Contains(t, prompt, "Délai de prescription en matière civile")
	assert.Contains(t, prompt, "OUI")
	assert.Contains(t, prompt, "NON")
}

func TestRelevanceClassifier_FailsOpenOnError(t *testing.T) {
	completer := mock.NewMockCompleter("").WithCompleteFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("upstream unavailable")
	})
	c, err := NewRelevanceClassifier(completer)
	require.NoError(t, err)

	assert.True(t, c.IsInDomain(context.Background(), "recette de gâteau"))
}

func TestRelevanceClassifier_FailsOpenOnTimeout(t *testing.T) {
	completer := mock.NewMockCompleter("NON").WithCompleteFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	c, err := NewRelevanceClassifier(completer, WithClassifierTimeout(20*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	assert.True(t, c.IsInDomain(context.Background(), "recette de gâteau"))
	assert.Less(t, time.Since(start), 2*time.Second)
}
