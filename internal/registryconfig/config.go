// Package registryconfig loads a `.tql.yml` extensibility file and wires
// its declarations into a query.Registry: additional function aliases, and
// expr-lang-backed custom functions, without writing Go (§6/§C6).
package registryconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of a `.tql.yml` file.
type Config struct {
	// Aliases maps an additional function name to an existing one already
	// registered in the registry (builtin or custom).
	Aliases map[string]string `yaml:"aliases,omitempty" json:"aliases,omitempty" lc:"additional function name aliases"`

	// Functions declares expr-lang-backed custom functions.
	Functions []FunctionDecl `yaml:"functions,omitempty" json:"functions,omitempty" lc:"custom functions backed by expr-lang expressions"`
}

// FunctionDecl declares one custom function: its name, arity, and the
// expr-lang expression evaluated per call. The expression sees `current`
// (the input value, as its Go JSON-like representation) and `args` (the
// call arguments, already-evaluated-to-text).
type FunctionDecl struct {
	Name        string `yaml:"name" json:"name" lc:"function name as used in queries"`
	Arity       int    `yaml:"arity" json:"arity" lc:"number of arguments the function takes"`
	Expr        string `yaml:"expr" json:"expr" lc:"expr-lang expression producing the result"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" lc:"shown in 'tql functions'"`
}

// Load reads and parses a `.tql.yml` file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing registry config YAML: %w", err)
	}
	return &cfg, nil
}

// Find discovers a `.tql.yml` by walking up from startPath, mirroring the
// teacher's schema discovery.
func Find(startPath string) (string, error) {
	dir := startPath
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, ".tql.yml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no .tql.yml found in directory hierarchy")
}
