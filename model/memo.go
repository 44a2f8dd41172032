package model

import (
	"time"

	"github.com/google/uuid"
)

// Memo represents a user memo read from the document store. The knowledge
// core only consumes the content and tags; the remaining fields exist so
// tests and examples can seed the store.
type Memo struct {
	ID         int64     `json:"id"`
	RID        uuid.UUID `json:"rid"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Similarity *float64  `json:"similarity,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToRelevantNote projects a memo into the read-only note shape consumed by
// the retrieval pipeline.
func (m *Memo) ToRelevantNote(score float64) RelevantNote {
	tags := make([]string, len(m.Tags))
	copy(tags, m.Tags)
	return RelevantNote{
		Content:        m.Content,
		Tags:           tags,
		RelevanceScore: score,
	}
}
