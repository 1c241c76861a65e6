package logger

import (
	"strings"
	"testing"
)

func TestSanitizeValueRedactsSecrets(t *testing.T) {
	cases := map[string]interface{}{
		"openai_api_key": "sk-live",
		"Authorization":  "Bearer abc",
		"serper_apikey":  "k",
	}
	for key, val := range cases {
		got := sanitizeValue(strings.ToLower(key), val)
		if got != "[REDACTED]" {
			t.Fatalf("%s: want=[REDACTED] got=%v", key, got)
		}
	}
}

func TestSanitizeValueKeepsOrdinaryFields(t *testing.T) {
	if got := sanitizeValue("phase", "questioning"); got != "questioning" {
		t.Fatalf("phase: want=questioning got=%v", got)
	}
	nested := sanitizeValue("payload", map[string]interface{}{"api_key": "x", "stage": "research"})
	m, ok := nested.(map[string]interface{})
	if !ok {
		t.Fatalf("nested: want map got %T", nested)
	}
	if m["api_key"] != "[REDACTED]" || m["stage"] != "research" {
		t.Fatalf("nested: got=%v", m)
	}
}

func TestHashValueIsStable(t *testing.T) {
	a := hashValue("c0ffee")
	b := hashValue("c0ffee")
	if a != b || len(a) != len("hash:")+12 {
		t.Fatalf("hash: a=%q b=%q", a, b)
	}
	if hashValue("") != "" {
		t.Fatalf("empty value should hash to empty")
	}
}
