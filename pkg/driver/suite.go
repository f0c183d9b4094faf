// Package driver loads benchmark suite manifests and runs their scripts
// against a solver backend.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suite represents the parsed contents of suite.yml: a named collection of
// SMT-LIB scripts with optional expected results and git sources to fetch
// them from.
type Suite struct {
	Path        string
	Name        string
	Description string
	Options     map[string]string
	Sources     map[string]*SourceSpec
	Benchmarks  []*BenchmarkSpec
}

// SourceSpec describes a git repository benchmarks can be fetched from.
type SourceSpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
}

// BenchmarkSpec describes one script in the suite. File is relative to the
// suite manifest, or to the named source's checkout when Source is set.
type BenchmarkSpec struct {
	Name   string
	File   string
	Source string
	Expect string
}

// ValidationError aggregates suite validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "suite: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("suite validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadSuite parses suite.yml from disk, returning a validated suite.
func LoadSuite(path string) (*Suite, error) {
	if path == "" {
		return nil, fmt.Errorf("suite: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("suite: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("suite: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw suiteFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("suite: %s is empty", absPath)
		}
		return nil, fmt.Errorf("suite: parse %s: %w", absPath, err)
	}

	suite := raw.toSuite(absPath)
	if err := suite.validate(); err != nil {
		return nil, err
	}
	return suite, nil
}

func (s *Suite) validate() error {
	var errs ValidationError
	if s.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for name, src := range s.Sources {
		if src == nil {
			continue
		}
		if src.Git == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("sources.%s: git URL must be provided", name))
		}
		if src.Rev == "" && src.Tag == "" && src.Branch == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("sources.%s: rev, tag, or branch must be provided", name))
		}
	}
	if len(s.Benchmarks) == 0 {
		errs.Issues = append(errs.Issues, "benchmarks must not be empty")
	}
	for i, b := range s.Benchmarks {
		if b == nil {
			continue
		}
		label := b.Name
		if label == "" {
			label = fmt.Sprintf("benchmarks[%d]", i)
		}
		if b.File == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: file must be provided", label))
		}
		if b.Source != "" {
			if _, ok := s.Sources[b.Source]; !ok {
				errs.Issues = append(errs.Issues, fmt.Sprintf("%s: unknown source %q", label, b.Source))
			}
		}
		switch b.Expect {
		case "", "sat", "unsat", "unknown", "any":
		default:
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s: expect must be sat, unsat, unknown, or any", label))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

type suiteFile struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Options     map[string]string `yaml:"options"`
	Sources     sourceMap         `yaml:"sources"`
	Benchmarks  []benchmarkYAML   `yaml:"benchmarks"`
}

type sourceMap map[string]*SourceSpec

func (sm *sourceMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*sm = make(sourceMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("suite: sources must be a mapping")
	}
	result := make(sourceMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("suite: source names must be non-empty")
		}
		var raw struct {
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
		}
		if err := value.Content[i+1].Decode(&raw); err != nil {
			return fmt.Errorf("suite: source %q: %w", key, err)
		}
		result[key] = &SourceSpec{
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
		}
	}
	*sm = result
	return nil
}

type benchmarkYAML struct {
	spec BenchmarkSpec
}

// A benchmark entry is either a bare file path or a mapping with the full
// fields.
func (b *benchmarkYAML) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		b.spec = BenchmarkSpec{File: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Name   string `yaml:"name"`
			File   string `yaml:"file"`
			Source string `yaml:"source"`
			Expect string `yaml:"expect"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		b.spec = BenchmarkSpec{
			Name:   strings.TrimSpace(raw.Name),
			File:   strings.TrimSpace(raw.File),
			Source: strings.TrimSpace(raw.Source),
			Expect: strings.TrimSpace(raw.Expect),
		}
		return nil
	case yaml.AliasNode:
		return b.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

func (sf suiteFile) toSuite(path string) *Suite {
	suite := &Suite{
		Path:        path,
		Name:        strings.TrimSpace(sf.Name),
		Description: strings.TrimSpace(sf.Description),
		Options:     make(map[string]string, len(sf.Options)),
		Sources:     map[string]*SourceSpec(sf.Sources),
		Benchmarks:  make([]*BenchmarkSpec, 0, len(sf.Benchmarks)),
	}
	if suite.Sources == nil {
		suite.Sources = make(map[string]*SourceSpec)
	}
	for k, v := range sf.Options {
		suite.Options[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	for _, b := range sf.Benchmarks {
		spec := b.spec
		if spec.Name == "" {
			spec.Name = strings.TrimSuffix(filepath.Base(spec.File), filepath.Ext(spec.File))
		}
		suite.Benchmarks = append(suite.Benchmarks, &spec)
	}
	return suite
}

// Dir returns the directory holding the manifest, the base for relative
// benchmark paths.
func (s *Suite) Dir() string {
	return filepath.Dir(s.Path)
}
