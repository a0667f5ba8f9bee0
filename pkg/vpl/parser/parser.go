package parser

import (
	"fmt"
	"os"

	"vigil-hq/vigil/pkg/vpl/ast"
)

// Parser parses VPL documents into AST specifications. Parsing enforces
// only the local invariants the node constructors check; semantic
// validation is a separate step over the resulting trees.
type Parser struct {
	maxFileSize int64
}

// NewParser creates a parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// WithMaxFileSize sets the maximum document size in bytes.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// Parse reads and parses the VPL document at the given path.
func (p *Parser) Parse(path string) (*ast.Specification, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	if info.Size() > p.maxFileSize {
		return nil, fmt.Errorf("parser: %s is %d bytes, exceeding the %d byte limit",
			path, info.Size(), p.maxFileSize)
	}

	doc, err := parseYAMLFile(path)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", path, err)
	}
	return newBuilder(path).buildSpecification(doc)
}

// ParseBytes parses a VPL document from memory. The source name is used
// only in error messages.
func (p *Parser) ParseBytes(data []byte, source string) (*ast.Specification, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, fmt.Errorf("parser: %s is %d bytes, exceeding the %d byte limit",
			source, len(data), p.maxFileSize)
	}

	doc, err := parseYAMLBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", source, err)
	}
	return newBuilder(source).buildSpecification(doc)
}
