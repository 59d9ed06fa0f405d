package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassageMUS(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		passage Passage
	}{
		{
			name: "full passage",
			passage: Passage{
				Id:         IDFromContent("1457"),
				Namespace:  "ccq",
				Source:     "Code civil du Québec",
				Article:    "Art. 1457",
				ArticleNum: "1457",
				Text:       "Toute personne a le devoir de respecter les règles de conduite...",
				Vector:     []float32{0.6, 0.8},
				Metadata:   map[string]string{"livre": "V", "titre": "Des obligations"},
				InsertedAt: now,
			},
		},
		{
			name:    "zero values",
			passage: Passage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := make([]byte, PassageMUS.Size(tt.passage))
			n := PassageMUS.Marshal(tt.passage, bs)
			assert.Equal(t, len(bs), n)

			got, read, err := PassageMUS.Unmarshal(bs)
			require.NoError(t, err)
			assert.Equal(t, n, read)
			assert.Equal(t, tt.passage, got)
		})
	}
}

func TestPassageMUS_Truncated(t *testing.T) {
	p := Passage{Source: "ccq", Text: "texte", Vector: []float32{1}}
	bs := make([]byte, PassageMUS.Size(p))
	PassageMUS.Marshal(p, bs)

	_, _, err := PassageMUS.Unmarshal(bs[:len(bs)-3])
	assert.Error(t, err)
}
