package manager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"vigil-hq/vigil/pkg/vpl/ast"
	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
	"vigil-hq/vigil/pkg/vpl/parser"
	"vigil-hq/vigil/pkg/vpl/validator"
)

// Loader reads VPL documents from the file system, parses them, and
// validates every property. Properties whose reports carry errors reject
// the whole load; warnings are collected but do not.
type Loader struct {
	config    *Config
	parser    *parser.Parser
	validator *validator.Validator
}

// NewLoader creates a loader. A nil validator validates against the
// default function registry.
func NewLoader(config *Config, v *validator.Validator) *Loader {
	if config == nil {
		config = DefaultConfig()
	}
	if v == nil {
		v = validator.New(nil)
	}
	return &Loader{
		config:    config,
		parser:    parser.NewParser().WithMaxFileSize(config.MaxFileSize),
		validator: v,
	}
}

// LoadFile loads one document and returns its accepted properties with
// their reports.
func (l *Loader) LoadFile(path string) (*LoadResult, error) {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "cannot access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{Path: path, Message: "not a regular file"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "cannot read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{Path: path, Message: "document is not valid UTF-8"}
	}

	spec, err := l.parser.ParseBytes(data, path)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{
		Reports: map[string]*vplErrors.Report{},
		Files:   1,
	}
	rejected := 0
	for i, property := range spec.Properties {
		key := propertyKey(property, path, i)
		report := l.validator.Validate(property)
		result.Reports[key] = report
		if !report.Accepted() {
			rejected += len(report.Errors)
			continue
		}
		result.Properties = append(result.Properties, property)
		result.IDs = append(result.IDs, key)
	}
	result.Duration = time.Since(start)
	if rejected > 0 {
		return result, &ValidationError{Path: path, Errors: rejected}
	}
	return result, nil
}

// LoadDirectory loads every document under the directory, recursively,
// in lexical path order so repeated loads are deterministic.
func (l *Loader) LoadDirectory(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Message: "cannot access directory", Cause: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Path: dir, Message: "not a directory"}
	}

	files, err := l.collectFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &LoadError{Path: dir, Message: "no property documents found"}
	}

	start := time.Now()
	combined := &LoadResult{Reports: map[string]*vplErrors.Report{}}
	var errs []error
	for _, path := range files {
		result, err := l.LoadFile(path)
		if err != nil {
			errs = append(errs, err)
		}
		if result != nil {
			combined.Properties = append(combined.Properties, result.Properties...)
			combined.IDs = append(combined.IDs, result.IDs...)
			for key, report := range result.Reports {
				combined.Reports[key] = report
			}
		}
		combined.Files++
	}
	combined.Duration = time.Since(start)
	if len(errs) > 0 {
		return combined, errors.Join(errs...)
	}
	return combined, nil
}

// Load dispatches on whether the source is a file or a directory.
func (l *Loader) Load(source string) (*LoadResult, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, &LoadError{Path: source, Message: "cannot access source", Cause: err}
	}
	if info.IsDir() {
		return l.LoadDirectory(source)
	}
	return l.LoadFile(source)
}

func (l *Loader) collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if l.hasDocumentExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{Path: dir, Message: "directory walk failed", Cause: err}
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) hasDocumentExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range l.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// propertyKey names a property for registration: its declared id, or a
// positional fallback for anonymous properties.
func propertyKey(property *ast.Property, path string, index int) string {
	if id := property.UID(); id != "" {
		return id
	}
	return fmt.Sprintf("%s#%d", path, index)
}
