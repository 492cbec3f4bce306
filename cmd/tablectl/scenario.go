package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	opSearch      = "search"
	opClearSearch = "clear-search"
	opFilter      = "filter"
	opReset       = "reset"
	opPage        = "page"
	opPageSize    = "page-size"
	opWait        = "wait"
)

// Duration reads "300ms"-style values from both scenario formats.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Scenario struct {
	BaseURL       string            `yaml:"base_url" toml:"base_url"`
	Path          string            `yaml:"path" toml:"path"`
	Subject       string            `yaml:"subject" toml:"subject"`
	SubjectHeader string            `yaml:"subject_header" toml:"subject_header"`
	Only          []string          `yaml:"only" toml:"only"`
	PerPage       int               `yaml:"per_page" toml:"per_page"`
	Debounce      Duration          `yaml:"debounce" toml:"debounce"`
	Filters       map[string]string `yaml:"filters" toml:"filters"`
	Steps         []Step            `yaml:"steps" toml:"steps"`
}

// Step is one table intent. Page is 1-based, as shown to the user.
type Step struct {
	Op      string   `yaml:"op" toml:"op"`
	Key     string   `yaml:"key" toml:"key"`
	Value   string   `yaml:"value" toml:"value"`
	Page    int      `yaml:"page" toml:"page"`
	PerPage int      `yaml:"per_page" toml:"per_page"`
	Delay   Duration `yaml:"delay" toml:"delay"`
}

func (s Step) String() string {
	switch s.Op {
	case opSearch:
		return fmt.Sprintf("%s %q", s.Op, s.Value)
	case opFilter:
		return fmt.Sprintf("%s %s=%q", s.Op, s.Key, s.Value)
	case opPage:
		return fmt.Sprintf("%s %d", s.Op, s.Page)
	case opPageSize:
		return fmt.Sprintf("%s %d", s.Op, s.PerPage)
	case opWait:
		if s.Delay > 0 {
			return fmt.Sprintf("%s %s", s.Op, time.Duration(s.Delay))
		}
	}
	return s.Op
}

// LoadScenario reads a .yaml, .yml or .toml scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(raw), &sc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &sc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", filepath.Ext(path))
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

func (s *Scenario) Validate() error {
	if !strings.HasPrefix(s.Path, "/") {
		return errors.New("path must start with /")
	}
	if s.PerPage < 0 {
		return errors.New("per_page must not be negative")
	}
	for i, step := range s.Steps {
		var err error
		switch step.Op {
		case opSearch, opClearSearch, opReset, opWait:
		case opFilter:
			if strings.TrimSpace(step.Key) == "" {
				err = errors.New("filter needs a key")
			}
		case opPage:
			if step.Page < 1 {
				err = errors.New("page must be at least 1")
			}
		case opPageSize:
			if step.PerPage < 1 {
				err = errors.New("page-size needs a positive per_page")
			}
		default:
			err = fmt.Errorf("unknown op %q", step.Op)
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}
