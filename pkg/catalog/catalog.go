// Package catalog holds the static content of the home page: category
// shortcuts, banners and the layout of the recommendation panels.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

type Filter struct {
	Name  string `yaml:"name" json:"name"`
	Param string `yaml:"param" json:"param"`
}

type Category struct {
	Title   string   `yaml:"title" json:"title"`
	Param   string   `yaml:"param" json:"param"`
	Filters []Filter `yaml:"filters" json:"filters"`
}

type Banner struct {
	ImgURL  string `yaml:"img_url" json:"img_url"`
	LinkURL string `yaml:"link_url" json:"link_url"`
}

// Source selects how a recommendation panel is filled
type Source string

const (
	SourceRandom Source = "random"
	SourceNewest Source = "newest"
	SourceTop    Source = "top"
)

// Section is a named recommendation panel
type Section struct {
	Name   string `yaml:"name"`
	Source Source `yaml:"source"`
	Size   int    `yaml:"size"`
}

const defaultSectionSize = 12

type Catalog struct {
	Categories         []Category `yaml:"categories"`
	Banners            []Banner   `yaml:"banners"`
	RecommendJobs      []Section  `yaml:"recommend_jobs"`
	RecommendCompanies []Section  `yaml:"recommend_companies"`
}

// Load reads the catalog from path. An empty path or a missing file falls
// back to the embedded catalog.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			data = raw
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
	}
	return Parse(data)
}

// Default returns the embedded catalog
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) normalize() error {
	for i := range c.RecommendJobs {
		s := &c.RecommendJobs[i]
		if s.Source != SourceRandom && s.Source != SourceNewest {
			return fmt.Errorf("catalog: job section %q has unknown source %q", s.Name, s.Source)
		}
		if s.Size <= 0 {
			s.Size = defaultSectionSize
		}
	}
	for i := range c.RecommendCompanies {
		s := &c.RecommendCompanies[i]
		if s.Source != SourceRandom && s.Source != SourceTop {
			return fmt.Errorf("catalog: company section %q has unknown source %q", s.Name, s.Source)
		}
		if s.Size <= 0 {
			s.Size = defaultSectionSize
		}
	}
	if c.Categories == nil {
		c.Categories = []Category{}
	}
	if c.Banners == nil {
		c.Banners = []Banner{}
	}
	return nil
}
