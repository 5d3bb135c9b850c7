package visionai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestExtractJSONBlockFromProse(t *testing.T) {
	text := `Here you go: [{"ruleId":"x","status":"pass","confidence":90,"reason":"ok"}] thanks`
	block := ExtractJSONBlock(text)
	if !strings.HasPrefix(block, "[") || !strings.HasSuffix(block, "]") {
		t.Fatalf("expected a bare array, got %q", block)
	}
	if strings.Contains(block, "thanks") || strings.Contains(block, "Here") {
		t.Fatalf("extraction leaked surrounding prose: %q", block)
	}
}

func TestExtractJSONBlockSpansLines(t *testing.T) {
	text := "Sure.\n[\n  {\"ruleId\": \"a\", \"status\": \"pass\"}\n]\nDone."
	if block := ExtractJSONBlock(text); block == "" {
		t.Fatal("expected multi-line array to be found")
	}
}

func TestExtractJSONBlockNoMatch(t *testing.T) {
	if block := ExtractJSONBlock("no structured data here"); block != "" {
		t.Fatalf("expected empty extraction, got %q", block)
	}
}

func TestParseResultsHappyPath(t *testing.T) {
	text := `Here you go: [{"ruleId":"x","status":"pass","confidence":90,"reason":"ok"}] thanks`
	results := ParseResults(ExtractJSONBlock(text))

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.RuleID != "x" || r.Status != "pass" || r.Confidence != 90 {
		t.Fatalf("unexpected result: %+v", r)
	}
	if r.Description != "ok" {
		t.Fatalf("expected reason to become description, got %q", r.Description)
	}
}

func TestParseResultsAcceptsIdKey(t *testing.T) {
	results := ParseResults(`[{"id":"y","status":"fail","confidence":30,"description":"bad light"}]`)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].RuleID != "y" {
		t.Fatalf("expected id fallback, got %q", results[0].RuleID)
	}
	if results[0].Description != "bad light" {
		t.Fatalf("expected description fallback, got %q", results[0].Description)
	}
}

func TestParseResultsInvalidInput(t *testing.T) {
	for _, input := range []string{"", "not json at all", ExtractJSONBlock("plain prose")} {
		results := ParseResults(input)
		if len(results) != 1 {
			t.Fatalf("input %q: expected single synthetic result, got %d", input, len(results))
		}
		r := results[0]
		if r.RuleID != "error" || r.Status != "fail" || r.Confidence != 0 {
			t.Fatalf("input %q: unexpected synthetic result: %+v", input, r)
		}
		if r.Description != InvalidResponseDescription {
			t.Fatalf("input %q: unexpected description %q", input, r.Description)
		}
	}
}

func TestParseResultsRepairsNearJSON(t *testing.T) {
	// Trailing comma: invalid for encoding/json, recoverable by repair.
	input := `[{"ruleId": "x", "status": "pass", "confidence": 88, "reason": "ok",}]`
	results := ParseResults(input)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].RuleID != "x" || results[0].Confidence != 88 {
		t.Fatalf("expected repaired parse, got %+v", results[0])
	}
}

func TestBuildMultiPromptIsDeterministic(t *testing.T) {
	prompts := map[string]string{
		"b_rule": "Check B.",
		"a_rule": "Check A.",
	}

	p := BuildMultiPrompt(prompts)
	if !strings.Contains(p, "respond with ONLY a JSON array") {
		t.Fatal("prompt must demand a raw JSON array")
	}
	aIdx := strings.Index(p, `Evaluate ruleId: "a_rule"`)
	bIdx := strings.Index(p, `Evaluate ruleId: "b_rule"`)
	if aIdx < 0 || bIdx < 0 {
		t.Fatalf("missing rule blocks in prompt:\n%s", p)
	}
	if aIdx > bIdx {
		t.Fatal("rule blocks must be emitted in sorted id order")
	}
	if !strings.Contains(p, "Instruction: Check A.") {
		t.Fatal("rule instruction missing from prompt")
	}

	if again := BuildMultiPrompt(prompts); again != p {
		t.Fatal("prompt must be deterministic across calls")
	}
}

func TestAnalyzeUnconfiguredReturnsFallbackString(t *testing.T) {
	c := NewClient("", "", 0, zap.NewNop())
	if c.Configured() {
		t.Fatal("client without API key must not be configured")
	}
	if got := c.Analyze(context.Background(), nil, "prompt"); got != NotConfiguredMessage {
		t.Fatalf("expected not-configured message, got %q", got)
	}
}

func TestAnalyzeMultiUnconfiguredReturnsError(t *testing.T) {
	c := NewClient("", "", 0, zap.NewNop())
	if _, err := c.AnalyzeMulti(context.Background(), nil, map[string]string{"r": "p"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
