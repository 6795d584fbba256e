package tui

import "testing"

func TestKeyMapHasNoOverlappingKeys(t *testing.T) {
	seen := map[string]string{}
	for _, sec := range keys.helpSections() {
		for _, b := range sec.bindings {
			h := b.Help()
			if h.Key == "" || h.Desc == "" {
				t.Fatalf("binding %v has no help text", b.Keys())
			}
			for _, k := range b.Keys() {
				if prev, ok := seen[k]; ok {
					t.Fatalf("key %q bound to both %q and %q", k, prev, h.Desc)
				}
				seen[k] = h.Desc
			}
		}
	}
}
