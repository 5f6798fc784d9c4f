package tier

import "testing"

func TestLoadBuiltin(t *testing.T) {
	c, err := LoadBuiltin()
	if err != nil {
		t.Fatalf("LoadBuiltin failed: %v", err)
	}
	if len(c.Tiers) != 4 {
		t.Errorf("Expected 4 tiers, got %d", len(c.Tiers))
	}
}

func TestLookup(t *testing.T) {
	c, err := LoadBuiltin()
	if err != nil {
		t.Fatal(err)
	}

	free, ok := c.Lookup("free")
	if !ok {
		t.Fatal("free tier not found")
	}
	if free.MaxBasic != 25 || free.MaxAdvanced != 5 {
		t.Errorf("free caps = %d/%d, want 25/5", free.MaxBasic, free.MaxAdvanced)
	}

	basic, ok := c.Lookup("basic")
	if !ok {
		t.Fatal("basic tier not found")
	}
	if basic.MaxBasic != 75 || basic.MaxAdvanced != 25 {
		t.Errorf("basic caps = %d/%d, want 75/25", basic.MaxBasic, basic.MaxAdvanced)
	}

	if _, ok := c.Lookup("platinum"); ok {
		t.Error("unknown tier should not resolve")
	}
}

func TestDefaultIsFree(t *testing.T) {
	c, err := LoadBuiltin()
	if err != nil {
		t.Fatal(err)
	}
	if c.Default().ID != "free" {
		t.Errorf("default tier = %s, want free", c.Default().ID)
	}
}
