package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	vplErrors "vigil-hq/vigil/pkg/vpl/errors"
)

func TestRecordValidation(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(nil, registry)

	accepted := vplErrors.NewReport()
	accepted.AddWarning(vplErrors.CodeSuspiciousUnboundResponse, "", "response", "independent response")
	c.RecordValidation(accepted, 50*time.Microsecond)

	rejected := vplErrors.NewReport()
	rejected.AddError(vplErrors.CodeUnboundAlias, "", "x", "alias %q is not bound", "x")
	rejected.AddError(vplErrors.CodeUnknownFunction, "", "nope", "unknown function")
	c.RecordValidation(rejected, 80*time.Microsecond)

	if got := testutil.ToFloat64(c.validationsTotal.WithLabelValues("accepted")); got != 1 {
		t.Errorf("accepted validations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.validationsTotal.WithLabelValues("rejected")); got != 1 {
		t.Errorf("rejected validations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.diagnosticsTotal.WithLabelValues("UnboundAlias", "error")); got != 1 {
		t.Errorf("UnboundAlias diagnostics = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.diagnosticsTotal.WithLabelValues("SuspiciousUnboundResponse", "warning")); got != 1 {
		t.Errorf("warning diagnostics = %v, want 1", got)
	}
}

func TestRecordReloadAndGauge(t *testing.T) {
	c := NewCollector(nil, nil)

	c.RecordReload(nil)
	c.RecordReload(errValue{})
	c.SetPropertiesLoaded(7)

	if got := testutil.ToFloat64(c.reloadsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("successful reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.reloadsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.propertiesLoaded); got != 7 {
		t.Errorf("properties loaded = %v, want 7", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	c := NewCollector(nil, nil)
	c.SetPropertiesLoaded(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "vigil_vpl_properties_loaded 3") {
		t.Errorf("exposition missing gauge:\n%s", body)
	}
}

type errValue struct{}

func (errValue) Error() string { return "reload failed" }
