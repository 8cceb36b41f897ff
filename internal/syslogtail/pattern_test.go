package syslogtail

import "testing"

func TestParseLine(t *testing.T) {
	line := `Aug 30 10:15:02 savant RPMSomeProc[123]: Received service event: Family Room-AudioSwitch-Audio_switch-1-SVC_AV_GENERALAUDIO-SetVolume with arguments: {VolumeValue = 45; }`

	ev, ok := parseLine(line)
	if !ok {
		t.Fatal("parseLine() did not match a valid event line")
	}
	if ev.Zone != "Family Room" {
		t.Errorf("Zone = %q, want Family Room", ev.Zone)
	}
	if ev.Component != "AudioSwitch" {
		t.Errorf("Component = %q", ev.Component)
	}
	if ev.LogicalComponent != "Audio_switch" {
		t.Errorf("LogicalComponent = %q", ev.LogicalComponent)
	}
	if ev.VariantID != "1" {
		t.Errorf("VariantID = %q", ev.VariantID)
	}
	if ev.Service != "SVC_AV_GENERALAUDIO" {
		t.Errorf("Service = %q", ev.Service)
	}
	if ev.Command != "SetVolume" {
		t.Errorf("Command = %q", ev.Command)
	}
	if ev.Arguments["VolumeValue"] != "45" {
		t.Errorf("Arguments = %v, want VolumeValue=45", ev.Arguments)
	}
}

func TestParseLine_NullArguments(t *testing.T) {
	line := `Received service event: Kitchen-Receiver-Audio_receiver-1-SVC_AV_GENERALAUDIO-PowerOn with arguments: (null)`

	ev, ok := parseLine(line)
	if !ok {
		t.Fatal("parseLine() did not match")
	}
	if ev.Command != "PowerOn" {
		t.Errorf("Command = %q, want PowerOn", ev.Command)
	}
	if ev.Arguments != nil {
		t.Errorf("Arguments = %v, want nil for (null)", ev.Arguments)
	}
}

func TestParseLine_MultipleArguments(t *testing.T) {
	line := `Received service event: Den-Lutron-Lighting_controller-1-SVC_ENV_LIGHTING-DimmerSet with arguments: {Address1 = 14; DimmerLevel = 75; FadeTime = 2; }`

	ev, ok := parseLine(line)
	if !ok {
		t.Fatal("parseLine() did not match")
	}
	want := map[string]string{"Address1": "14", "DimmerLevel": "75", "FadeTime": "2"}
	if len(ev.Arguments) != len(want) {
		t.Fatalf("Arguments = %v, want %v", ev.Arguments, want)
	}
	for k, v := range want {
		if ev.Arguments[k] != v {
			t.Errorf("Arguments[%q] = %q, want %q", k, ev.Arguments[k], v)
		}
	}
}

func TestParseLine_NonEventLines(t *testing.T) {
	lines := []string{
		"",
		"Aug 30 10:15:02 savant kernel: usb 1-1: new device",
		"Received service event: malformed with arguments: (null)",
	}
	for _, line := range lines {
		if _, ok := parseLine(line); ok {
			t.Errorf("parseLine(%q) matched, want no match", line)
		}
	}
}

func TestParseArguments_QuotedValues(t *testing.T) {
	args := parseArguments(`{Name = "Living Room"; Level = 10;}`)
	if args["Name"] != "Living Room" {
		t.Errorf("Name = %q, want Living Room", args["Name"])
	}
	if args["Level"] != "10" {
		t.Errorf("Level = %q, want 10", args["Level"])
	}
}

func TestParseArguments_MalformedEntriesSkipped(t *testing.T) {
	args := parseArguments(`{Good = 1; bad-entry; = orphan;}`)
	if len(args) != 1 || args["Good"] != "1" {
		t.Errorf("args = %v, want only Good=1", args)
	}
}
