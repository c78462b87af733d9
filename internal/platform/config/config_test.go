package config

import "testing"

func TestPrefixAndKey(t *testing.T) {
	mig := New().Prefix("EVQ_")
	if got := mig.key("KEYS"); got != "EVQ_KEYS" {
		t.Fatalf("key() = %q, want %q", got, "EVQ_KEYS")
	}
	nested := mig.Prefix("MIGRATE_")
	if got := nested.key("WORKERS"); got != "EVQ_MIGRATE_WORKERS" {
		t.Fatalf("nested key() = %q, want %q", got, "EVQ_MIGRATE_WORKERS")
	}
}

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q, want %q", got, "def")
	}
	t.Setenv("S_NAME", " evq ")
	if got := c.MayString("NAME", "x"); got != "evq" {
		t.Fatalf("MayString value = %q, want %q", got, "evq")
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 9); got != 9 {
		t.Fatalf("MayInt default = %d, want %d", got, 9)
	}
	t.Setenv("I_OK", " 7 ")
	if got := c.MayInt("OK", 0); got != 7 {
		t.Fatalf("MayInt ok = %d, want %d", got, 7)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 3); got != 3 {
		t.Fatalf("MayInt bad -> default = %d, want %d", got, 3)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if got := c.MayBool("MISSING", true); !got {
		t.Fatalf("MayBool default true expected")
	}
	t.Setenv("B_T", "true")
	if got := c.MayBool("T", false); !got {
		t.Fatalf("MayBool true expected")
	}
	t.Setenv("B_BAD", "nope")
	if got := c.MayBool("BAD", false); got {
		t.Fatalf("MayBool bad -> default false expected")
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	def := []string{"event_origin"}
	if got := c.MayCSV("MISS", def); len(got) != 1 || got[0] != "event_origin" {
		t.Fatalf("MayCSV default mismatch: %#v", got)
	}
	t.Setenv("CSV_VALS", " one, two , ,three ,, ")
	got := c.MayCSV("VALS", nil)
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	t.Setenv("CSV_EMPTY", " , ,  ,")
	if got := c.MayCSV("EMPTY", def); len(got) != 1 || got[0] != "event_origin" {
		t.Fatalf("MayCSV all-empty -> default mismatch: %#v", got)
	}
}
