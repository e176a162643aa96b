package registryconfig

import (
	"bytes"
	"os"

	yamlcomment "github.com/zijiren233/yaml-comment"
)

// defaultConfig is written by `tql config init`: a starter alias plus one
// example expr-lang function, annotated via the `lc`/`hc` tags that also
// drive the JSON Schema descriptions.
var defaultConfig = Config{
	Aliases: map[string]string{
		"grab": "text",
	},
	Functions: []FunctionDecl{
		{
			Name:        "shout",
			Arity:       0,
			Expr:        `upper(current) + "!"`,
			Description: "uppercase the current value and append !",
		},
	},
}

// CreateDefaultFile writes a commented starter `.tql.yml` using the same
// yaml-comment-driven annotation approach the teacher uses for its own
// config scaffolding.
func CreateDefaultFile(path string) error {
	var buf bytes.Buffer
	enc := yamlcomment.NewEncoder(&buf)
	if err := enc.Encode(&defaultConfig); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
