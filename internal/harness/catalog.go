package harness

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Catalog is a named, ordered set of test cases.
type Catalog struct {
	Name        string
	Description string
	Cases       []TestCase
}

// catalogFile is the on-disk shape shared by YAML and CUE catalogs.
type catalogFile struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	Cases       []caseFile `yaml:"cases" json:"cases"`
}

type caseFile struct {
	Name    string     `yaml:"name" json:"name"`
	Pattern string     `yaml:"pattern" json:"pattern"`
	Subject string     `yaml:"subject" json:"subject"`
	Expect  expectFile `yaml:"expect" json:"expect"`
}

type expectFile struct {
	// Match is the expected found flag. Nil when the case asserts groups.
	Match *bool `yaml:"match,omitempty" json:"match,omitempty"`

	// Groups maps group index (as text) to expected capture.
	// A null value asserts the group is unset.
	Groups map[string]*string `yaml:"groups,omitempty" json:"groups,omitempty"`
}

// CatalogExtensions lists the file extensions LoadCatalog understands.
var CatalogExtensions = []string{".yaml", ".yml", ".cue"}

// LoadCatalog reads a catalog file. The format is chosen by extension:
// .yaml and .yml are decoded as YAML, .cue is evaluated as CUE.
//
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (YAML), or fails validation.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &file)
	case ".cue":
		err = decodeCUE(path, data, &file)
	default:
		return nil, fmt.Errorf("unsupported catalog extension %q: must be one of %v", ext, CatalogExtensions)
	}
	if err != nil {
		return nil, err
	}

	cat, err := file.build()
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

// decodeYAML parses with strict field validation so a typo such as
// "expects:" is reported instead of silently ignored.
func decodeYAML(data []byte, file *catalogFile) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(file); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func decodeCUE(path string, data []byte, file *catalogFile) error {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("failed to validate CUE: %w", err)
	}
	if err := v.Decode(file); err != nil {
		return fmt.Errorf("failed to decode CUE: %w", err)
	}
	return nil
}

// build validates the file and converts it to a Catalog.
func (f *catalogFile) build() (*Catalog, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if f.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("cases list is required and must be non-empty")
	}

	cat := &Catalog{
		Name:        f.Name,
		Description: f.Description,
		Cases:       make([]TestCase, 0, len(f.Cases)),
	}
	seen := make(map[string]int, len(f.Cases))

	for i, cf := range f.Cases {
		if cf.Name == "" {
			return nil, fmt.Errorf("cases[%d]: name is required", i)
		}
		if prev, dup := seen[cf.Name]; dup {
			return nil, fmt.Errorf("cases[%d]: duplicate name %q (first used by cases[%d])", i, cf.Name, prev)
		}
		seen[cf.Name] = i

		if cf.Pattern == "" {
			return nil, fmt.Errorf("cases[%d] (%s): pattern is required", i, cf.Name)
		}

		expect, err := cf.Expect.build()
		if err != nil {
			return nil, fmt.Errorf("cases[%d] (%s).expect: %w", i, cf.Name, err)
		}

		cat.Cases = append(cat.Cases, TestCase{
			Name:    cf.Name,
			Pattern: cf.Pattern,
			Subject: cf.Subject,
			Expect:  expect,
		})
	}

	return cat, nil
}

func (e expectFile) build() (Expectation, error) {
	switch {
	case e.Match != nil && e.Groups != nil:
		return Expectation{}, fmt.Errorf("match and groups are mutually exclusive")
	case e.Match != nil:
		return BooleanMatch(*e.Match), nil
	case e.Groups != nil:
		if len(e.Groups) == 0 {
			return Expectation{}, fmt.Errorf("groups must list at least one index")
		}
		groups := make(map[int]*string, len(e.Groups))
		for key, val := range e.Groups {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return Expectation{}, fmt.Errorf("group index %q must be a non-negative integer", key)
			}
			groups[idx] = val
		}
		return GroupCapture(groups), nil
	default:
		return Expectation{}, fmt.Errorf("one of match or groups is required")
	}
}

// Filter returns the cases whose names match the glob pattern.
// An empty pattern returns every case.
func (c *Catalog) Filter(pattern string) ([]TestCase, error) {
	if pattern == "" {
		return c.Cases, nil
	}

	var out []TestCase
	for _, tc := range c.Cases {
		matched, err := filepath.Match(pattern, tc.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if matched {
			out = append(out, tc)
		}
	}
	return out, nil
}

// FindCatalogFiles returns every catalog file under dir, sorted by path.
func FindCatalogFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isCatalogFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func isCatalogFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range CatalogExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
