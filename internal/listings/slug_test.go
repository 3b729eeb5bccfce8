package listings

import (
	"testing"
	"time"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Piso luminoso en Chamberí", "piso-luminoso-en-chamberi"},
		{"  Ático   con  terraza!! ", "atico-con-terraza"},
		{"Casa_de_campo / 3 habitaciones", "casa-de-campo-3-habitaciones"},
		{"Niño & Peña", "nino-pena"},
		{"¿¡!?", fallbackSlugBase},
		{"", fallbackSlugBase},
	}
	for _, tt := range tests {
		if got := NormalizeSlug(tt.in); got != tt.want {
			t.Fatalf("NormalizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildSlugs(t *testing.T) {
	at := time.UnixMilli(1717171717171)
	if got := BuildSlug("Local Comercial", at); got != "local-comercial-1717171717171" {
		t.Fatalf("unexpected slug %q", got)
	}
	if got := BuildCopySlug("Local Comercial", at); got != "local-comercial-copy-1717171717171" {
		t.Fatalf("unexpected copy slug %q", got)
	}
}
