package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "Art. 1457 C.c.Q.",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "Toute personne a le devoir de respecter les règles de conduite qui lui incombent",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDStringRoundTrip(t *testing.T) {
	id := IDFromContent("article 742")
	parsed, err := ParseID(id.String())
	if err != nil {
		t.Fatalf("ParseID() error = %v", err)
	}
	if parsed != id {
		t.Errorf("ParseID(String()) = %d, want %d", parsed, id)
	}

	if _, err := ParseID("not-hex"); err == nil {
		t.Error("ParseID() expected error for invalid input")
	}
}

func TestQueryCounts(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantChars int
		wantWords int
	}{
		{name: "plain", text: "Qu'est-ce qu'un bail?", wantChars: 21, wantWords: 2},
		{name: "padded", text: "   abc   ", wantChars: 3, wantWords: 1},
		{name: "accented runes", text: "délai", wantChars: 5, wantWords: 1},
		{name: "empty", text: "", wantChars: 0, wantWords: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(tt.text, "u1")
			if got := q.CharCount(); got != tt.wantChars {
				t.Errorf("CharCount() = %d, want %d", got, tt.wantChars)
			}
			if got := q.WordCount(); got != tt.wantWords {
				t.Errorf("WordCount() = %d, want %d", got, tt.wantWords)
			}
		})
	}
}

func TestRiskAssessmentReason(t *testing.T) {
	r := RiskAssessment{Reasons: []string{"a", "b"}}
	if got := r.Reason(); got != "a | b" {
		t.Errorf("Reason() = %q, want %q", got, "a | b")
	}
	if got := (RiskAssessment{}).Reason(); got != "" {
		t.Errorf("Reason() = %q, want empty", got)
	}
}

func TestPassageAttributes(t *testing.T) {
	p := &Passage{
		Source:     "ccq.pdf",
		Article:    "Art. 1457",
		ArticleNum: "1457",
		Text:       "Toute personne...",
		Metadata:   map[string]string{"chapter": "III", MetaSource: "overridden"},
	}

	attrs := p.Attributes()
	want := map[string]string{
		"chapter":      "III",
		MetaSource:     "ccq.pdf",
		MetaArticle:    "Art. 1457",
		MetaArticleNum: "1457",
		MetaText:       "Toute personne...",
	}
	if len(attrs) != len(want) {
		t.Fatalf("Attributes() has %d keys, want %d", len(attrs), len(want))
	}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("Attributes()[%q] = %q, want %q", k, attrs[k], v)
		}
	}
}

func TestFusedContextEmpty(t *testing.T) {
	var nilCtx *FusedContext
	if !nilCtx.Empty() {
		t.Error("nil FusedContext should be empty")
	}
	if !(&FusedContext{}).Empty() {
		t.Error("zero FusedContext should be empty")
	}
	if (&FusedContext{Text: "x"}).Empty() {
		t.Error("FusedContext with text should not be empty")
	}
}

func TestOriginString(t *testing.T) {
	if OriginKnowledgeBase.String() != "knowledge_base" {
		t.Errorf("got %q", OriginKnowledgeBase.String())
	}
	if OriginWeb.String() != "web" {
		t.Errorf("got %q", OriginWeb.String())
	}
	if Origin(0).String() != "unknown" {
		t.Errorf("got %q", Origin(0).String())
	}
}

func TestArticleNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"Que dit l'article 742?", "742", true},
		{"art. 1457 C.c.Q.", "1457", true},
		{"Art 12 et art 13", "12", true},
		{"ARTICLE   2925", "2925", true},
		{"Qu'est-ce qu'un bail?", "", false},
		{"les articles sont clairs", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ArticleNumber(tt.text)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ArticleNumber(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}
