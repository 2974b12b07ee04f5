package sources

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Kind string

const (
	KindMock    Kind = "mock"
	KindJSON    Kind = "json"
	KindBrowser Kind = "browser"
)

// FieldMap names the JSON paths of listing fields within one feed item.
// Empty entries fall back to the field's own snake_case name.
type FieldMap struct {
	Title       string `yaml:"title"`
	Price       string `yaml:"price"`
	Currency    string `yaml:"currency"`
	Location    string `yaml:"location"`
	Latitude    string `yaml:"latitude"`
	Longitude   string `yaml:"longitude"`
	Bedrooms    string `yaml:"bedrooms"`
	Bathrooms   string `yaml:"bathrooms"`
	Area        string `yaml:"area"`
	Description string `yaml:"description"`
	Images      string `yaml:"images"`
	URL         string `yaml:"url"`
}

// Selectors are CSS selectors evaluated relative to each listing card.
type Selectors struct {
	Item        string `yaml:"item"`
	Title       string `yaml:"title"`
	Price       string `yaml:"price"`
	Location    string `yaml:"location"`
	Bedrooms    string `yaml:"bedrooms"`
	Bathrooms   string `yaml:"bathrooms"`
	Area        string `yaml:"area"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	Image       string `yaml:"image"`
}

type SourceConfig struct {
	Name      string            `yaml:"name"`
	Kind      Kind              `yaml:"kind"`
	URL       string            `yaml:"url"`
	ItemsPath string            `yaml:"items_path"`
	Currency  string            `yaml:"currency"`
	Headers   map[string]string `yaml:"headers"`
	Fields    FieldMap          `yaml:"fields"`
	Selectors Selectors         `yaml:"selectors"`
	// Schedule is an optional cron expression for recurring imports.
	Schedule string        `yaml:"schedule"`
	Wait     time.Duration `yaml:"wait"`
	Timeout  time.Duration `yaml:"timeout"`
	ExecPath string        `yaml:"exec_path"`
}

type configFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

func (c SourceConfig) Validate() error {
	if c.Name == "" {
		return errors.New("source name is required")
	}
	switch c.Kind {
	case KindMock:
	case KindJSON:
		if c.URL == "" {
			return fmt.Errorf("source %s: url is required for json sources", c.Name)
		}
	case KindBrowser:
		if c.URL == "" {
			return fmt.Errorf("source %s: url is required for browser sources", c.Name)
		}
		if c.Selectors.Item == "" || c.Selectors.Title == "" {
			return fmt.Errorf("source %s: selectors.item and selectors.title are required for browser sources", c.Name)
		}
	default:
		return fmt.Errorf("source %s: unknown kind %q", c.Name, c.Kind)
	}
	return nil
}

// LoadConfig reads a sources file. Unknown keys are rejected.
func LoadConfig(path string) ([]SourceConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	defer f.Close()
	return decodeConfig(f)
}

func ParseConfig(data []byte) ([]SourceConfig, error) {
	return decodeConfig(bytes.NewReader(data))
}

func decodeConfig(r io.Reader) ([]SourceConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file configFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	seen := make(map[string]bool, len(file.Sources))
	for _, sc := range file.Sources {
		if err := sc.Validate(); err != nil {
			return nil, err
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("duplicate source name %q", sc.Name)
		}
		seen[sc.Name] = true
	}
	return file.Sources, nil
}

// Build constructs the Source described by cfg.
func Build(cfg SourceConfig, httpClient *http.Client) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case KindJSON:
		return NewJSONFeedSource(cfg, httpClient), nil
	case KindBrowser:
		return NewBrowserSource(cfg), nil
	default:
		return NewMockSource(cfg.Name), nil
	}
}

// NewRegistryFromConfig builds every configured source.
func NewRegistryFromConfig(cfgs []SourceConfig, httpClient *http.Client) (*Registry, error) {
	reg := NewRegistry()
	for _, cfg := range cfgs {
		s, err := Build(cfg, httpClient)
		if err != nil {
			return nil, err
		}
		reg.Register(s)
	}
	return reg, nil
}
