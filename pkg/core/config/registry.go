package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"asi_schedules/pkg/core/pipeline"
	"asi_schedules/pkg/core/schedule"
)

// RegistryEntry maps one block to its blank-template file.
type RegistryEntry struct {
	ID       string `yaml:"id"`
	Template string `yaml:"template"`
}

// Registry is the on-disk catalog of blocks the pipeline may run.
type Registry struct {
	Blocks []RegistryEntry `yaml:"blocks"`
}

// LoadRegistry parses the block registry YAML.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read registry %s: %w", path, err)
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("config: failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// TemplateCatalog serves blank templates from a directory, according to the
// registry mapping. It implements pipeline.TemplateSource.
type TemplateCatalog struct {
	dir   string
	files map[pipeline.BlockID]string
}

var _ pipeline.TemplateSource = (*TemplateCatalog)(nil)

// NewTemplateCatalog builds a catalog from a registry and a template
// directory.
func NewTemplateCatalog(dir string, reg *Registry) *TemplateCatalog {
	files := make(map[pipeline.BlockID]string, len(reg.Blocks))
	for _, entry := range reg.Blocks {
		files[pipeline.BlockID(entry.ID)] = entry.Template
	}
	return &TemplateCatalog{dir: dir, files: files}
}

// Template loads and parses the blank template for a block. Templates are
// re-read on every call: they are small, and a fresh parse guarantees the
// caller can mutate the result freely.
func (c *TemplateCatalog) Template(block pipeline.BlockID) (*schedule.Schedule, error) {
	name, ok := c.files[block]
	if !ok {
		return nil, fmt.Errorf("config: no template registered for block %s", block)
	}
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, fmt.Errorf("config: failed to read template for block %s: %w", block, err)
	}
	return schedule.Decode(data)
}
