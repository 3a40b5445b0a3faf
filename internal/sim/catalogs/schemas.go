package catalogs

import (
	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Catalog entries are validated against these schemas before parsing.
// An entry that fails validation is dropped, never partially applied.

//go:embed schemas/recipe.schema.json
var recipeSchemaSrc string

//go:embed schemas/order_channel.schema.json
var channelSchemaSrc string

//go:embed schemas/research.schema.json
var researchSchemaSrc string

//go:embed schemas/commercial.schema.json
var commercialSchemaSrc string

var (
	recipeSchema     = jsonschema.MustCompileString("recipe.schema.json", recipeSchemaSrc)
	channelSchema    = jsonschema.MustCompileString("order_channel.schema.json", channelSchemaSrc)
	researchSchema   = jsonschema.MustCompileString("research.schema.json", researchSchemaSrc)
	commercialSchema = jsonschema.MustCompileString("commercial.schema.json", commercialSchemaSrc)
)
