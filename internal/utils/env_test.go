package utils

import "testing"

func TestSafeEnv(t *testing.T) {
	t.Setenv("STILLPATH_TEST_KEY", "value")
	if got := SafeEnv("STILLPATH_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("want value, got %s", got)
	}
	if got := SafeEnv("STILLPATH_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("want fallback, got %s", got)
	}
}
