package workflow

import "testing"

func TestFallbackIntentResponse(t *testing.T) {
	resp := fallbackIntentResponse()
	if resp.Action != "CLARIFY" || resp.IntentCategory != "INQUIRY" {
		t.Fatalf("fallback = %+v", resp)
	}
	if resp.ClarifyingQuestion == nil || *resp.ClarifyingQuestion == "" {
		t.Fatal("fallback carries no clarifying question")
	}
	if resp.ConfidenceScore != 0 {
		t.Fatalf("confidence = %v, want 0", resp.ConfidenceScore)
	}
	if resp.Bundle == nil || len(resp.Bundle) != 0 {
		t.Fatalf("bundle = %#v, want empty non-nil", resp.Bundle)
	}
}
