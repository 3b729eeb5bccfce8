package instance

import "testing"

func TestGetIDPrefersDyno(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("ANUNCIOS_INSTANCE_ID", "api-7")
	if got := GetID("local"); got != "web.1" {
		t.Fatalf("expected web.1, got %q", got)
	}
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv("DYNO", "")
	t.Setenv("ANUNCIOS_INSTANCE_ID", "")
	if got := GetID("local"); got != "local" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("ANUNCIOS_INSTANCE_ID", "api-7")
	if got := GetID("local"); got != "api-7" {
		t.Fatalf("expected api-7, got %q", got)
	}
}
