package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/poiesic/juris/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	v1, err := m.EmbedText(ctx, "bail")
	require.NoError(t, err)
	v2, err := m.EmbedText(ctx, "bail")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 384)
	assert.Equal(t, 2, m.CallCount())

	var sum float64
	for _, x := range v1 {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestMockEmbedderConcurrentCount(t *testing.T) {
	m := NewMockEmbedder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.EmbedText(context.Background(), "x")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.CallCount())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
}

func TestMockCompleter(t *testing.T) {
	c := NewMockCompleter("OUI")
	got, err := c.Complete(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "OUI", got)

	boom := errors.New("boom")
	c.WithCompleteFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", boom
	})
	_, err = c.Complete(context.Background(), "p2")
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 2, c.CallCount())
	assert.Equal(t, []string{"p1", "p2"}, c.Prompts())
	assert.Equal(t, "p2", c.LastPrompt())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	mp := p.(*MockProvider)

	got, err := p.Completer(ai.PurposeClassification).Complete(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "OUI", got)
	assert.Equal(t, 1, mp.GetMockCompleter(ai.PurposeClassification).CallCount())
	assert.Equal(t, 0, mp.GetMockCompleter(ai.PurposeSynthesis).CallCount())
	assert.NoError(t, p.Close())

	custom := NewMockProviderWithServices(NewMockEmbedder(), map[ai.Purpose]*MockCompleter{
		ai.PurposeSynthesis: NewMockCompleter("réponse"),
	})
	got, err = custom.Completer(ai.PurposeSynthesis).Complete(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "réponse", got)
	assert.NotNil(t, custom.Completer(ai.PurposeExpansion))
}
