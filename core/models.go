package core

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored passages.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID the way it appears in search matches.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 16)
}

// ParseID is the inverse of ID.String.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// Query is a user question together with the identity of whoever asked it.
type Query struct {
	Text   string
	UserID string
}

// NewQuery builds a Query from raw input.
func NewQuery(text, userID string) Query {
	return Query{Text: text, UserID: userID}
}

// CharCount returns the number of characters in the trimmed text.
func (q Query) CharCount() int {
	return utf8.RuneCountInString(strings.TrimSpace(q.Text))
}

// WordCount returns the number of whitespace separated words.
func (q Query) WordCount() int {
	return len(strings.Fields(q.Text))
}

// MaliciousThreshold is the risk score at which a query is treated as adversarial.
const MaliciousThreshold = 5

// RiskAssessment is the outcome of scoring a query against the injection rules.
type RiskAssessment struct {
	Score     int
	Reasons   []string
	Malicious bool
}

// Reason joins the triggered reasons into a single line.
func (r RiskAssessment) Reason() string {
	return strings.Join(r.Reasons, " | ")
}

// Origin identifies where a candidate passage came from.
type Origin int

const (
	// OriginKnowledgeBase marks passages retrieved from the vector index.
	OriginKnowledgeBase Origin = iota + 1
	// OriginWeb marks passages retrieved from web search.
	OriginWeb
)

func (o Origin) String() string {
	switch o {
	case OriginKnowledgeBase:
		return "knowledge_base"
	case OriginWeb:
		return "web"
	default:
		return "unknown"
	}
}

// Candidate is one retrieved passage with its relevance score.
type Candidate struct {
	ID      string
	Score   float32
	Source  string
	Article string
	Text    string
	Origin  Origin
}

// CandidateInfo is the lightweight view of a kept candidate used for citations.
type CandidateInfo struct {
	Source  string  `json:"source"`
	Article string  `json:"article"`
	Score   float32 `json:"score"`
	Text    string  `json:"text"`
}

// FusedContext is the ranked, budgeted result of one fusion pass.
type FusedContext struct {
	Candidates []Candidate
	Text       string
	Info       []CandidateInfo
}

// Empty reports whether the fusion pass produced no usable context.
func (f *FusedContext) Empty() bool {
	return f == nil || f.Text == ""
}

// QueryOutcome is the metadata returned alongside every answer.
type QueryOutcome struct {
	UsedKnowledgeBase bool   `json:"used_knowledge_base"`
	UsedWeb           bool   `json:"used_web"`
	ChunksFound       int    `json:"chunks_found"`
	QueriesGenerated  int    `json:"queries_generated"`
	Blocked           bool   `json:"blocked"`
	BlockReason       string `json:"block_reason,omitempty"`
	RiskScore         int    `json:"risk_score"`
	Warning           bool   `json:"warning,omitempty"`
	Error             bool   `json:"error,omitempty"`
}

// Passage is a knowledge base entry as stored by a passage repository.
type Passage struct {
	Id         ID
	Namespace  string
	Source     string
	Article    string // Human readable article/section label
	ArticleNum string // Bare article number used for exact-match filtering
	Text       string
	Vector     []float32         // Unit-normalized embedding
	Metadata   map[string]string // Free-form extra attributes
	InsertedAt time.Time
}

// Metadata keys exposed on search matches.
const (
	MetaSource     = "source"
	MetaFilename   = "filename"
	MetaArticle    = "article"
	MetaArticleNum = "article_num"
	MetaText       = "text"
)

// Attributes flattens the passage into the metadata map returned with search matches.
func (p *Passage) Attributes() map[string]string {
	attrs := make(map[string]string, len(p.Metadata)+4)
	for k, v := range p.Metadata {
		attrs[k] = v
	}
	attrs[MetaSource] = p.Source
	attrs[MetaArticle] = p.Article
	attrs[MetaArticleNum] = p.ArticleNum
	attrs[MetaText] = p.Text
	return attrs
}

// ContentKey is the string hashed to derive a passage ID.
func (p *Passage) ContentKey() string {
	return p.Namespace + "\x00" + p.Source + "\x00" + p.Article + "\x00" + p.Text
}

// SearchRequest describes one vector similarity query.
type SearchRequest struct {
	Vector          []float32
	TopK            int
	Namespace       string
	Filter          map[string]string // exact-match metadata filter
	IncludeMetadata bool
}

// Match is a single vector search hit.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]string
}

// WebResult is a single web search hit.
type WebResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
