package groups

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Definition is the serialised form of a group. A definition without
// attributes and widgets matches every field.
type Definition struct {
	Name       string         `json:"name" yaml:"name"`
	Attributes []string       `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Widgets    []string       `json:"widgets,omitempty" yaml:"widgets,omitempty"`
	Props      map[string]any `json:"templateOptions,omitempty" yaml:"templateOptions,omitempty"`
	Source     string         `json:"-" yaml:"-"`
}

// Config converts the definition into a group config.
func (d Definition) Config() model.FieldGroupConfig {
	cfg := model.FieldGroupConfig{Name: d.Name}

	byAttr := len(d.Attributes) > 0
	byWidget := len(d.Widgets) > 0
	switch {
	case byAttr && byWidget:
		attr, widget := ByProperty(d.Attributes...), ByWidget(d.Widgets...)
		cfg.Filter = func(field model.FieldConfig) bool {
			return attr(field) || widget(field)
		}
	case byAttr:
		cfg.Filter = ByProperty(d.Attributes...)
	case byWidget:
		cfg.Filter = ByWidget(d.Widgets...)
	}

	if len(d.Props) > 0 {
		props := make(map[string]any, len(d.Props))
		for k, v := range d.Props {
			props[k] = v
		}
		cfg.Settings = &model.GroupSettings{Props: props}
	}
	return cfg
}

type documentFile struct {
	Groups []Definition `json:"groups" yaml:"groups"`
}

// LoadFS walks fsys and parses JSON/YAML group definition files. Files are
// visited in lexical order and groups keep their order within a file. A nil
// fsys yields no definitions.
func LoadFS(fsys fs.FS) ([]Definition, error) {
	if fsys == nil {
		return nil, nil
	}

	var (
		out  []Definition
		seen = make(map[string]string)
	)
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("groups: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for idx, def := range doc.Groups {
			def.Name = strings.TrimSpace(def.Name)
			if def.Name == "" {
				return fmt.Errorf("groups: file %s defines a group without name at index %d", path, idx)
			}
			if prev, exists := seen[def.Name]; exists {
				return fmt.Errorf("groups: duplicate group %q (files %s, %s)", def.Name, prev, path)
			}
			seen[def.Name] = path
			def.Source = path
			out = append(out, def)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Configs converts definitions into group configs.
func Configs(defs []Definition) []model.FieldGroupConfig {
	out := make([]model.FieldGroupConfig, 0, len(defs))
	for _, def := range defs {
		out = append(out, def.Config())
	}
	return out
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("groups: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("groups: parse %s: invalid JSON or YAML", source)
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
