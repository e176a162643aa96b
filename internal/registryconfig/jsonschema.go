package registryconfig

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// lookupComment reads descriptions from the `lc:`/`hc:` struct tags, the
// same single-source-of-truth scheme the default config writer's
// yaml-comment annotations use.
func lookupComment(t reflect.Type, fieldName string) string {
	if fieldName == "" {
		return ""
	}
	f, found := t.FieldByName(fieldName)
	if !found {
		return ""
	}
	if desc := f.Tag.Get("lc"); desc != "" {
		return capitalizeFirst(desc)
	}
	return capitalizeFirst(f.Tag.Get("hc"))
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// GenerateSchema produces a JSON Schema for `.tql.yml` for editor
// autocomplete/validation, exposed via `tql config schema`.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: false,
		LookupComment:  lookupComment,
	}
	s := r.Reflect(&Config{})
	s.ID = "https://raw.githubusercontent.com/orhun/tql/main/schema.json"
	s.Title = "tql registry config"
	s.Description = "Schema for tql extensibility configuration files (.tql.yml)"
	return json.MarshalIndent(s, "", "  ")
}
