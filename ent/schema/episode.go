package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Episode is one remembered conversational moment: a short piece of text
// worth recalling in later sessions, with its embedding vector for
// similarity search. Episodes are append-only.
type Episode struct {
	ent.Schema
}

func (Episode) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			Immutable().
			Comment("Session the episode was captured in"),
		field.String("kind").
			Immutable().
			Comment("What kind of moment this is: user_message, insight, assessment_result"),
		field.Text("content").
			Immutable().
			Comment("The remembered text"),
		field.JSON("embedding", []float32{}).
			Optional().
			Comment("Embedding vector; empty when no embedder was available at capture time"),
		field.Time("created_at").
			Default(time.Now).
			Immutable().
			Comment("UTC wall-clock time of capture"),
	}
}

func (Episode) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("created_at"),
	}
}
