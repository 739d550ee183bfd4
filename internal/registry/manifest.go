package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk description of one script.
type Manifest struct {
	Description string         `yaml:"description" toml:"description"`
	Entry       string         `yaml:"entry" toml:"entry"`
	Help        string         `yaml:"help" toml:"help"`
	Config      map[string]any `yaml:"config" toml:"config"`
}

// manifestExtensions lists the file extensions recognized as manifests.
var manifestExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".toml": true,
}

// IsManifestFile reports whether name is an eligible manifest file name.
// Names starting with "_" or "." are private and never loaded.
func IsManifestFile(name string) bool {
	if name == "" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return false
	}
	return manifestExtensions[strings.ToLower(filepath.Ext(name))]
}

// ScriptName derives the script name from a manifest file name.
func ScriptName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseManifest decodes data according to the extension of fileName.
// Unknown fields are rejected so typos surface as load problems.
func ParseManifest(fileName string, data []byte) (Manifest, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".toml":
		return parseTOML(data)
	default:
		return Manifest{}, fmt.Errorf("unsupported manifest type %q", filepath.Ext(fileName))
	}
}

func parseYAML(data []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		// An empty document is a valid manifest with every field defaulted.
		if errors.Is(err, io.EOF) {
			return Manifest{}, nil
		}
		return Manifest{}, fmt.Errorf("parsing yaml: %w", err)
	}
	return m, nil
}

func parseTOML(data []byte) (Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("parsing toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			// Anything below config is free-form script configuration.
			if len(k) > 0 && k[0] == "config" {
				continue
			}
			keys = append(keys, k.String())
		}
		if len(keys) > 0 {
			sort.Strings(keys)
			return Manifest{}, fmt.Errorf("parsing toml: unknown fields %s", strings.Join(keys, ", "))
		}
	}
	return m, nil
}
