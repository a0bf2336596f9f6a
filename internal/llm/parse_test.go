package llm

import (
	"testing"
)

func TestUnmarshalResponse_CleanObject(t *testing.T) {
	var out rawVerdict
	err := UnmarshalResponse(`{"verdict": "supported", "confidence": 0.9, "explanation": "ok"}`, &out)
	if err != nil {
		t.Fatalf("UnmarshalResponse: %v", err)
	}
	if out.Verdict != "supported" || out.Confidence != 0.9 {
		t.Errorf("got %+v", out)
	}
}

func TestUnmarshalResponse_FencedArray(t *testing.T) {
	text := "```json\n[{\"claim_id\": \"c1\", \"fallacy_type\": \"ad_hominem\", \"severity\": 0.6}]\n```"
	var out []rawFinding
	if err := UnmarshalResponse(text, &out); err != nil {
		t.Fatalf("UnmarshalResponse: %v", err)
	}
	if len(out) != 1 || out[0].ClaimID != "c1" || out[0].FallacyType != "ad_hominem" {
		t.Errorf("got %+v", out)
	}
}

func TestUnmarshalResponse_ProseWrapped(t *testing.T) {
	text := `Here is my assessment of the claim:

{"verdict": "refuted", "confidence": 0.8, "explanation": "contradicted by official figures"}

Let me know if you need more detail.`
	var out rawVerdict
	if err := UnmarshalResponse(text, &out); err != nil {
		t.Fatalf("UnmarshalResponse: %v", err)
	}
	if out.Verdict != "refuted" {
		t.Errorf("verdict = %q, want refuted", out.Verdict)
	}
}

func TestUnmarshalResponse_RepairsTrailingComma(t *testing.T) {
	text := `[{"claim_id": "c1", "fallacy_type": "strawman", "severity": 0.5,}]`
	var out []rawFinding
	if err := UnmarshalResponse(text, &out); err != nil {
		t.Fatalf("UnmarshalResponse: %v", err)
	}
	if len(out) != 1 || out[0].FallacyType != "strawman" {
		t.Errorf("got %+v", out)
	}
}

func TestUnmarshalResponse_EmptyArray(t *testing.T) {
	var out []rawFinding
	if err := UnmarshalResponse("[]", &out); err != nil {
		t.Fatalf("UnmarshalResponse: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %+v, want empty", out)
	}
}

func TestUnmarshalResponse_Hopeless(t *testing.T) {
	var out rawVerdict
	if err := UnmarshalResponse("I cannot verify this claim, sorry.", &out); err == nil {
		t.Errorf("expected error for response without JSON, got %+v", out)
	}
}
