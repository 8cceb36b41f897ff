package statusfile

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleStatusFile = `{
    States = {
        CurrentVolume = 42;
        CurrentMuteState = OFF;
        "Current Input" = "HDMI 1";
        Zone1 = {
            Power = ON;
        };
        Host = 192.168.1.10;
        Version = "8.5";
    };
    UISHost = 127.0.0.1;
}`

func TestParseComponentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Receiver.statusfile")
	if err := os.WriteFile(path, []byte(sampleStatusFile), 0600); err != nil {
		t.Fatal(err)
	}

	states, err := ParseComponentFile(path)
	if err != nil {
		t.Fatalf("ParseComponentFile() error = %v", err)
	}

	want := map[string]string{
		"CurrentVolume":    "42",
		"CurrentMuteState": "OFF",
		"Current Input":    "HDMI 1",
		"Zone1.Power":      "ON",
	}
	if len(states) != len(want) {
		t.Errorf("got %d keys %v, want %d", len(states), states, len(want))
	}
	for k, v := range want {
		if states[k] != v {
			t.Errorf("states[%q] = %q, want %q", k, states[k], v)
		}
	}

	// Bookkeeping keys are filtered
	for _, k := range []string{"Host", "Version"} {
		if _, ok := states[k]; ok {
			t.Errorf("bookkeeping key %q leaked into state", k)
		}
	}
}

func TestParseComponentFile_NoStates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Broken.statusfile")
	if err := os.WriteFile(path, []byte(`{ Version = 1; }`), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseComponentFile(path); err == nil {
		t.Error("ParseComponentFile() expected error for document without States")
	}
}

func TestParse_Malformed(t *testing.T) {
	inputs := []string{
		``,
		`{ States = { A = 1; }`,  // unterminated outer dict
		`{ States = { A 1; }; }`, // missing equals
		`{ States = { A = "unterminated; }; }`,
		`{ A = 1; } trailing`,
	}
	for _, input := range inputs {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", input)
		}
	}
}

func TestParse_QuotedEscapes(t *testing.T) {
	doc, err := Parse(`{ Name = "say \"hi\""; }`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc["Name"] != `say "hi"` {
		t.Errorf("Name = %q", doc["Name"])
	}
}
