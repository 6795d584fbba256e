package theme

import "testing"

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("no-such-theme"); got.Name != FlexokiDark.Name {
		t.Fatalf("ByName fallback = %q", got.Name)
	}
	if got := ByName("tokyo-night"); got.Name != "tokyo-night" {
		t.Fatalf("ByName = %q", got.Name)
	}
}

func TestMoneyColor(t *testing.T) {
	th := FlexokiDark
	if th.Money(true) != th.Red || th.Money(false) != th.Green {
		t.Fatal("negative amounts should be red and others green")
	}
	if len(Names()) != len(All) {
		t.Fatal("Names should list every theme")
	}
}
