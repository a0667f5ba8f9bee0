package main

import (
	"os"
	"path/filepath"
	"testing"
)

const checkValidDoc = `
properties:
  - id: ack-requests
    pattern:
      kind: response
      trigger: { channel: svc/request, alias: req }
      behaviour:
        channel: svc/ack
        alias: ack
        predicate:
          compare:
            lhs: { field: ack.request_id }
            op: "=="
            rhs: { field: req.id }
`

const checkInvalidDoc = `
properties:
  - id: broken
    pattern:
      kind: existence
      behaviour:
        channel: svc/state
        alias: s
        predicate:
          compare:
            lhs: { field: ghost.mode }
            op: "=="
            rhs: { value: "auto" }
`

func writeTempDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "props.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCheckDocument_Valid(t *testing.T) {
	result := checkDocument(writeTempDoc(t, checkValidDoc))

	if !result.Valid {
		t.Fatalf("valid document rejected: %+v", result.Errors)
	}
	if result.Properties != 1 {
		t.Errorf("Properties = %d, want 1", result.Properties)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestCheckDocument_UnboundAlias(t *testing.T) {
	result := checkDocument(writeTempDoc(t, checkInvalidDoc))

	if result.Valid {
		t.Fatal("document with unbound alias accepted")
	}
	if len(result.Errors) == 0 {
		t.Fatal("no errors reported")
	}
	found := false
	for _, issue := range result.Errors {
		if issue.Code == "UnboundAlias" {
			found = true
		}
	}
	if !found {
		t.Errorf("no UnboundAlias issue in %+v", result.Errors)
	}
}

func TestCheckDocument_ParseFailure(t *testing.T) {
	result := checkDocument(writeTempDoc(t, "properties: [\n"))

	if result.Valid {
		t.Fatal("unparseable document accepted")
	}
	if len(result.Errors) == 0 {
		t.Fatal("no errors reported for parse failure")
	}
}

func TestSummarizeResults(t *testing.T) {
	clean := DocumentResult{File: "a.yaml", Valid: true}
	warned := DocumentResult{File: "b.yaml", Valid: true, Warnings: []Issue{{Message: "w", Severity: "warning"}}}
	failed := DocumentResult{File: "c.yaml", Errors: []Issue{{Message: "e", Severity: "error"}}}

	if err := summarizeResults([]DocumentResult{clean, warned}, false, true); err != nil {
		t.Errorf("warnings failed non-strict run: %v", err)
	}
	if err := summarizeResults([]DocumentResult{clean, warned}, true, true); err == nil {
		t.Error("strict mode ignored warnings")
	}
	if err := summarizeResults([]DocumentResult{clean, failed}, false, true); err == nil {
		t.Error("errors did not fail the run")
	}
}
