package uis

import (
	"strings"
	"testing"
)

func TestBuildEnvelope(t *testing.T) {
	envelope, err := buildEnvelope(Command{
		Zone:             "Family Room",
		Component:        "Lutron",
		LogicalComponent: "Lighting_controller",
		Service:          "SVC_ENV_LIGHTING",
		ServiceVariantID: "1",
		Command:          "DimmerSet",
		Arguments: map[string]string{
			"DimmerLevel": "75",
			"Address1":    "14",
		},
	})
	if err != nil {
		t.Fatalf("buildEnvelope() error = %v", err)
	}

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`xmlns:ctl="urn:rpm-controlinterface"`,
		`<ctl:serviceEventRequest>`,
		`<zoneString>Family Room</zoneString>`,
		`<componentString>Lutron</componentString>`,
		`<logicalComponentString>Lighting_controller</logicalComponentString>`,
		`<serviceString>SVC_ENV_LIGHTING</serviceString>`,
		`<serviceVariantIDString>1</serviceVariantIDString>`,
		`<commandString>DimmerSet</commandString>`,
		`</ctl:serviceEventRequest></SOAP-ENV:Body></SOAP-ENV:Envelope>`,
	} {
		if !strings.Contains(envelope, want) {
			t.Errorf("envelope missing %q", want)
		}
	}

	// Arguments are emitted in sorted key order.
	args := `<arg name="Address1" value="14"/><arg name="DimmerLevel" value="75"/>`
	if !strings.Contains(envelope, args) {
		t.Errorf("envelope arguments not in sorted order:\n%s", envelope)
	}
}

func TestBuildEnvelope_EscapesXML(t *testing.T) {
	envelope, err := buildEnvelope(Command{
		Zone:             `Bed & Breakfast <Suite>`,
		Component:        "Receiver",
		LogicalComponent: "Audio_receiver",
		Service:          "SVC_AV_GENERALAUDIO",
		ServiceVariantID: "1",
		Command:          "PowerOn",
		Arguments:        map[string]string{"Note": `a "quoted" value`},
	})
	if err != nil {
		t.Fatalf("buildEnvelope() error = %v", err)
	}

	if !strings.Contains(envelope, "<zoneString>Bed &amp; Breakfast &lt;Suite&gt;</zoneString>") {
		t.Error("zone not XML-escaped")
	}
	if !strings.Contains(envelope, `value="a &#34;quoted&#34; value"`) {
		t.Errorf("argument value not escaped:\n%s", envelope)
	}
	if strings.Contains(envelope, `<Suite>`) {
		t.Error("raw angle brackets leaked into envelope")
	}
}

func TestBuildEnvelope_NoArguments(t *testing.T) {
	envelope, err := buildEnvelope(Command{
		Zone:             "Kitchen",
		Component:        "Receiver",
		LogicalComponent: "Audio_receiver",
		Service:          "SVC_AV_GENERALAUDIO",
		ServiceVariantID: "1",
		Command:          "PowerOff",
	})
	if err != nil {
		t.Fatalf("buildEnvelope() error = %v", err)
	}
	if strings.Contains(envelope, "<arg ") {
		t.Error("argument elements present for command without arguments")
	}
	if !strings.Contains(envelope, "<commandString>PowerOff</commandString>") {
		t.Error("command element missing")
	}
}

func TestCommandValidate(t *testing.T) {
	cmd := Command{
		Zone:             "Den",
		Component:        "Receiver",
		LogicalComponent: "Audio_receiver",
		Service:          "SVC_AV_GENERALAUDIO",
		Command:          "PowerOn",
	}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cmd.ServiceVariantID != "1" {
		t.Errorf("ServiceVariantID = %q, want default 1", cmd.ServiceVariantID)
	}
}

func TestCommandValidate_MissingFields(t *testing.T) {
	cmd := Command{Zone: "Den", Command: "PowerOn"}
	err := cmd.Validate()
	if err == nil {
		t.Fatal("Validate() accepted command with missing fields")
	}
	for _, want := range []string{"component", "logicalComponent", "service"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not name missing field %q", err, want)
		}
	}
}
