package capability

import (
	"errors"
	"testing"

	"github.com/founding-ai/orchestra/agent/contract"
)

func TestExtractJSONPlainObject(t *testing.T) {
	t.Parallel()

	out, err := ExtractJSON(`{"mode":"LAUNCH","required_agents":["strategy"]}`)
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	if out["mode"] != "LAUNCH" {
		t.Fatalf("unexpected mode: %v", out["mode"])
	}
}

func TestExtractJSONCodeFence(t *testing.T) {
	t.Parallel()

	out, err := ExtractJSON("```json\n{\"decision\":\"PASS\"}\n```")
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	if out["decision"] != "PASS" {
		t.Fatalf("unexpected decision: %v", out["decision"])
	}
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	t.Parallel()

	out, err := ExtractJSON(`Sure, here is the plan: {"execution_plan":["step one"]} Hope that helps!`)
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	plan, ok := out["execution_plan"].([]any)
	if !ok || len(plan) != 1 {
		t.Fatalf("unexpected execution_plan: %#v", out["execution_plan"])
	}
}

func TestExtractJSONDoubleEncoded(t *testing.T) {
	t.Parallel()

	out, err := ExtractJSON(`"{\"decision\":\"FAIL\"}"`)
	if err != nil {
		t.Fatalf("ExtractJSON() error = %v", err)
	}
	if out["decision"] != "FAIL" {
		t.Fatalf("unexpected decision: %v", out["decision"])
	}
}

func TestExtractJSONMalformed(t *testing.T) {
	t.Parallel()

	_, err := ExtractJSON("I could not produce any structured output, sorry.")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !errors.Is(err, contract.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestExtractJSONNonObject(t *testing.T) {
	t.Parallel()

	_, err := ExtractJSON(`[1, 2, 3]`)
	if !errors.Is(err, contract.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}
