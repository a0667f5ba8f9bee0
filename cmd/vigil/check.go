package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vigil-hq/vigil/pkg/cli"
	"vigil-hq/vigil/pkg/vpl"
	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

var checkFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate property documents",
	Long: `Parse and validate VPL property documents.

The check command runs the full validation pipeline:
  - YAML syntax and document structure
  - Structural validation (disjunctions, aliases, predicates, functions)
  - Alias binding across pattern events
  - Pattern sanity (unbound-response detection)

Examples:
  # Check a single document
  vigil check --file props.yaml

  # Check a directory
  vigil check --dir props/

  # Strict mode (warnings as errors)
  vigil check --file props.yaml --strict

  # JSON output for CI
  vigil check --file props.yaml --format json`,
	RunE: checkDocuments,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.file, "file", "f", "", "property document to validate")
	checkCmd.Flags().StringVarP(&checkFlags.dir, "dir", "d", "", "directory of property documents")
	checkCmd.Flags().BoolVar(&checkFlags.strict, "strict", false, "treat warnings as errors")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
}

// DocumentResult is the validation outcome for one document.
type DocumentResult struct {
	File       string  `json:"file"`
	Valid      bool    `json:"valid"`
	Properties int     `json:"properties"`
	Errors     []Issue `json:"errors,omitempty"`
	Warnings   []Issue `json:"warnings,omitempty"`
}

// Issue is a single diagnostic in command output.
type Issue struct {
	Code       string `json:"code,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Severity   string `json:"severity"`
}

func checkDocuments(cmd *cobra.Command, args []string) error {
	if checkFlags.file == "" && checkFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if checkFlags.file != "" {
		files = append(files, checkFlags.file)
	}
	if checkFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(checkFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list property documents: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no property documents found")
	}

	results := make([]DocumentResult, 0, len(files))
	for _, file := range files {
		results = append(results, checkDocument(file))
	}

	if checkFlags.format == "json" {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, results); err != nil {
			return err
		}
		return summarizeResults(results, checkFlags.strict, true)
	}
	printResults(results)
	return summarizeResults(results, checkFlags.strict, false)
}

func checkDocument(path string) DocumentResult {
	result := DocumentResult{File: path, Valid: true}

	spec, report, err := vpl.ParseAndValidate(path)
	if spec != nil {
		result.Properties = len(spec.Properties)
	}
	if report != nil {
		for _, d := range report.Errors {
			result.Errors = append(result.Errors, issueFrom(d))
		}
		for _, d := range report.Warnings {
			result.Warnings = append(result.Warnings, issueFrom(d))
		}
	} else if err != nil {
		result.Errors = append(result.Errors, Issue{
			Message:  err.Error(),
			Severity: "error",
		})
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func issueFrom(d *vplErrors.Diagnostic) Issue {
	severity := "error"
	if d.Severity == vplErrors.SeverityWarning {
		severity = "warning"
	}
	return Issue{
		Code:       string(d.Code),
		Subject:    d.Subject,
		Message:    d.Message,
		Suggestion: d.Suggestion,
		Severity:   severity,
	}
}

func printResults(results []DocumentResult) {
	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Printf("✓ %d propert%s accepted\n", result.Properties, plural(result.Properties, "y", "ies"))
		}
		for _, issue := range result.Errors {
			fmt.Printf("✗ Error: %s", issue.Message)
			if issue.Code != "" {
				fmt.Printf(" [%s]", issue.Code)
			}
			fmt.Println()
			if issue.Suggestion != "" {
				fmt.Printf("  suggestion: %s\n", issue.Suggestion)
			}
		}
		for _, issue := range result.Warnings {
			fmt.Printf("⚠  Warning: %s", issue.Message)
			if issue.Code != "" {
				fmt.Printf(" [%s]", issue.Code)
			}
			fmt.Println()
		}
		fmt.Println()
	}
}

func summarizeResults(results []DocumentResult, strict, quiet bool) error {
	totalErrors, totalWarnings := 0, 0
	for _, result := range results {
		totalErrors += len(result.Errors)
		totalWarnings += len(result.Warnings)
	}

	if !quiet {
		fmt.Println("Summary:")
		fmt.Printf("  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)
		if strict && totalWarnings > 0 {
			fmt.Println("  Strict mode enabled: treating warnings as errors")
		}
	}

	if totalErrors > 0 || (strict && totalWarnings > 0) {
		return cli.NewCommandError("check", fmt.Errorf("validation failed"))
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
