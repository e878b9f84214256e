package metrics

import (
	"strings"
	"testing"
)

func TestRecordRequestAndExport(t *testing.T) {
	RecordRequest("GET", "/api/jobs", 200, 42)

	out := Export()
	if !strings.Contains(out, "jobsearch_http_requests_total{method=\"GET\",path=\"/api/jobs\",status=\"200\"}") {
		t.Fatalf("expected HTTP request metric for GET /api/jobs in export, got:\n%s", out)
	}
	if !strings.Contains(out, "jobsearch_http_request_duration_ms_sum") || !strings.Contains(out, "jobsearch_http_request_duration_ms_count") {
		t.Fatalf("expected latency metrics headers in export, got:\n%s", out)
	}
}

func TestRecordLLMExtractMetrics(t *testing.T) {
	RecordLLMExtract("openai", "gpt-4o", true)
	RecordLLMExtract("ollama", "llama3", false)

	out := Export()
	if !strings.Contains(out, `jobsearch_llm_analysis_requests_total{provider="openai",model="gpt-4o",success="true"}`) {
		t.Fatalf("expected llm analysis success metric for openai/gpt-4o, got:\n%s", out)
	}
	if !strings.Contains(out, `jobsearch_llm_analysis_requests_total{provider="ollama",model="llama3",success="false"}`) {
		t.Fatalf("expected llm analysis failure metric for ollama/llama3, got:\n%s", out)
	}
}
