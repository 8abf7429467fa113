package validation

import (
	"strings"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		slug string
		ok   bool
	}{
		{name: "lowercase", slug: "sitrep", ok: true},
		{name: "mixed case with digits", slug: "SitRep-2025", ok: true},
		{name: "underscore", slug: "wash_4w", ok: true},
		{name: "single char", slug: "a", ok: true},
		{name: "maximum length", slug: strings.Repeat("a", 100), ok: true},
		{name: "too long", slug: strings.Repeat("a", 101), ok: false},
		{name: "empty", slug: "", ok: false},
		{name: "space", slug: "shelter map", ok: false},
		{name: "slash", slug: "shelter/map", ok: false},
		{name: "symbol", slug: "map!", ok: false},
		{name: "dot", slug: "map.v2", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSlug(tc.slug)
			if tc.ok && err != nil {
				t.Fatalf("expected valid slug, got error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected invalid slug, got nil error")
			}
		})
	}
}
