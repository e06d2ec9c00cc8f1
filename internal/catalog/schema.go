package catalog

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// ContentSchema reflects the content-pack format into a JSON schema document
// for validation and editor tooling.
func ContentSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.ReflectFromType(reflect.TypeOf(Pack{}))
	if schema == nil {
		return nil, fmt.Errorf("catalog: failed to reflect pack schema")
	}
	schema.Title = "Eryndor Content Pack"
	schema.Description = "Designer-authored abilities, items, enemies, quests, passives, and NPCs consumed by the simulation core."
	return schema, nil
}

// ContentSchemaJSON renders the content-pack schema as indented JSON.
func ContentSchemaJSON() ([]byte, error) {
	schema, err := ContentSchema()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("catalog: marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
