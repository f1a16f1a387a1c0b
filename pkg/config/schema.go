package config

import (
	"bytes"
	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

// configSchema validates raw config documents before unmarshaling. The
// schema ships with the binary, so a compile failure is a build defect.
var configSchema = func() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", doc); err != nil {
		panic(err)
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		panic(err)
	}
	return schema
}()
