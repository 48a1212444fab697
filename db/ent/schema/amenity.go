package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/joseph-ayodele/amenity-parser/constants"
	"github.com/joseph-ayodele/amenity-parser/db/ent/schema/utils"
)

// Amenity is one catalog object in the database-backed stores.
type Amenity struct{ ent.Schema }

func (Amenity) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "amenities"},
	}
}

func (Amenity) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Immutable(),
		field.String("name").NotEmpty().Validate(utils.MaxRunes(200)),
		field.String("address").NotEmpty(),
		field.String("district").NotEmpty(),
		field.String("category").Validate(utils.EnumValidator(constants.AsStringSlice()...)),
		field.String("status").Validate(utils.EnumValidator(constants.StatusStrings()...)),
		field.String("description").Default("").Validate(utils.MaxRunes(2000)).
			SchemaType(map[string]string{dialect.Postgres: "text"}),
		field.Float("lat"),
		field.Float("lng"),
		// exact decimal strings
		field.String("budget").Optional().Nillable(),
		field.String("contractor").Default(""),
		field.String("customer").Default(""),
		field.String("start_date").Default(""),
		field.String("end_date").Default(""),
		field.String("source_label").Default(""),
		field.String("source_url").Default(""),
		field.Int("object_number").Default(0),
		field.String("region").Default(""),
		field.String("status_detailed").Default(""),
		field.String("area_sqm").Optional().Nillable(),
		field.Bool("photo_hint").Default(false),
		field.Bool("map_hint").Default(false),
		field.String("dedup_key").NotEmpty(),
		field.String("search_key").Default(""),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (Amenity) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("dedup_key").Unique(),
	}
}
