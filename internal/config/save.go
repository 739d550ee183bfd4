package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/scli/internal/log"
)

// SaveValue sets a scalar at a dot-notated key (e.g. "log.level") in the
// config file, creating intermediate mappings as needed.
// Comments and formatting in other sections are preserved by editing the
// yaml.Node tree instead of re-encoding a struct.
func SaveValue(configPath, key, value string) error {
	if key == "" {
		return fmt.Errorf("empty config key")
	}

	data, err := os.ReadFile(configPath) //nolint:gosec // G304: caller-chosen config path
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	if err := setNode(doc.Content[0], strings.Split(key, "."), value); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved config value", "path", configPath, "key", key)
	return nil
}

func setNode(mapping *yaml.Node, path []string, value string) error {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value != path[0] {
			continue
		}
		child := mapping.Content[i+1]
		if len(path) == 1 {
			mapping.Content[i+1] = &yaml.Node{
				Kind:        yaml.ScalarNode,
				Value:       value,
				LineComment: child.LineComment,
			}
			return nil
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("config key %q is not a mapping", path[0])
		}
		return setNode(child, path[1:], value)
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: path[0]}
	if len(path) == 1 {
		mapping.Content = append(mapping.Content, keyNode, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
		return nil
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	mapping.Content = append(mapping.Content, keyNode, child)
	return setNode(child, path[1:], value)
}

// writeAtomic writes to a temp file in the same directory, then renames.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".scli.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
