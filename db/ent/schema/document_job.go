package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/amenity-parser/constants"
	"github.com/joseph-ayodele/amenity-parser/db/ent/schema/utils"
)

// DocumentJob is one row of the per-document processing ledger.
type DocumentJob struct{ ent.Schema }

func (DocumentJob) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "document_jobs"},
	}
}

func (DocumentJob) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.String("source_url").Default(""),
		field.String("local_path").Default(""),
		field.String("content_hash").Default(""),
		field.String("status").
			Validate(utils.EnumValidator(
				string(constants.JobStatusQueued),
				string(constants.JobStatusRunning),
				string(constants.JobStatusTextOK),
				string(constants.JobStatusParsed),
				string(constants.JobStatusFailed),
			)),
		field.String("method").Default(""),
		field.Int("lines").Default(0),
		field.Int("blocks").Default(0),
		field.Int("records").Default(0),
		field.Int("rejected").Default(0),
		field.String("error_message").Optional().Nillable(),
		field.Time("started_at").Default(time.Now),
		field.Time("finished_at").Optional().Nillable(),
	}
}

func (DocumentJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("content_hash", "status"),
	}
}
