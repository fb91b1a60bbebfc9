package migrations

import "testing"

func TestDialectFor(t *testing.T) {
	cases := map[string]string{"": "sqlite3", "sqlite": "sqlite3", "postgres": "postgres"}
	for driver, want := range cases {
		got, err := dialectFor(driver)
		if err != nil {
			t.Fatalf("dialectFor(%q): %v", driver, err)
		}
		if got != want {
			t.Fatalf("dialectFor(%q)=%q, want %q", driver, got, want)
		}
	}
	if _, err := dialectFor("mysql"); err == nil {
		t.Fatal("expected error for mysql")
	}
}
