package env

import "testing"

func TestFirstHonoursOrder(t *testing.T) {
	t.Setenv("ANUNCIOS_LOG_FORMAT", "")
	t.Setenv("LOG_FORMAT", " console ")
	if got := First("json", "ANUNCIOS_LOG_FORMAT", "LOG_FORMAT"); got != "console" {
		t.Fatalf("expected console, got %q", got)
	}
	t.Setenv("ANUNCIOS_LOG_FORMAT", "json")
	if got := First("x", "ANUNCIOS_LOG_FORMAT", "LOG_FORMAT"); got != "json" {
		t.Fatalf("expected json, got %q", got)
	}
}

func TestGetFallback(t *testing.T) {
	t.Setenv("ANUNCIOS_UNSET_FOR_TEST", "")
	if got := Get("ANUNCIOS_UNSET_FOR_TEST", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
