package uis

import (
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// soapHeader carries the full namespace set the controller's user
// interface service expects on every request. The service rejects
// envelopes with a trimmed-down namespace list, so the whole block is
// reproduced even though only ctl: is used.
const soapHeader = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<SOAP-ENV:Envelope` +
	` xmlns:SOAP-ENV="http://www.w3.org/2003/05/soap-envelope"` +
	` xmlns:SOAP-ENC="http://www.w3.org/2003/05/soap-encoding"` +
	` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` +
	` xmlns:xsd="http://www.w3.org/2001/XMLSchema"` +
	` xmlns:wsdl="http://tempuri.org/wsdl.xsd"` +
	` xmlns:md="urn:rpm-metadatainterface"` +
	` xmlns:ctl="urn:rpm-controlinterface"` +
	` xmlns:rdm="urn:rpm-rdminterface"` +
	` xmlns:rpm="urn:rpm-common"` +
	` xmlns:sm="urn:rpm-stateManagementInterface"` +
	` xmlns:smrdm="urn:sm-rdminterface"` +
	` xmlns:snsr="urn:rpm-userSNSRInterface"` +
	` xmlns:sync="urn:rpm-syncinterface">` +
	`<SOAP-ENV:Body><ctl:serviceEventRequest>`

const soapFooter = `</ctl:serviceEventRequest></SOAP-ENV:Body></SOAP-ENV:Envelope>`

// Command is one service invocation to deliver to the controller.
type Command struct {
	Zone             string            `json:"zone"`
	Component        string            `json:"component"`
	LogicalComponent string            `json:"logicalComponent"`
	Service          string            `json:"service"`
	ServiceVariantID string            `json:"serviceVariantID"`
	Command          string            `json:"command"`
	Arguments        map[string]string `json:"arguments,omitempty"`
}

// Validate checks required fields and fills the variant default.
func (c *Command) Validate() error {
	var missing []string
	for _, field := range []struct {
		name, value string
	}{
		{"zone", c.Zone},
		{"component", c.Component},
		{"logicalComponent", c.LogicalComponent},
		{"service", c.Service},
		{"command", c.Command},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if c.ServiceVariantID == "" {
		c.ServiceVariantID = "1"
	}
	return nil
}

// buildEnvelope renders a command as the controller's SOAP request.
// Arguments are emitted in sorted key order so output is deterministic.
func buildEnvelope(cmd Command) (string, error) {
	if cmd.Zone == "" || cmd.Command == "" {
		return "", errors.New("envelope requires at least zone and command")
	}

	var b strings.Builder
	b.WriteString(soapHeader)
	writeElement(&b, "zoneString", cmd.Zone)
	writeElement(&b, "componentString", cmd.Component)
	writeElement(&b, "logicalComponentString", cmd.LogicalComponent)
	writeElement(&b, "serviceString", cmd.Service)
	writeElement(&b, "serviceVariantIDString", cmd.ServiceVariantID)
	writeElement(&b, "commandString", cmd.Command)

	names := make([]string, 0, len(cmd.Arguments))
	for name := range cmd.Arguments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(`<arg name="`)
		b.WriteString(escapeXML(name))
		b.WriteString(`" value="`)
		b.WriteString(escapeXML(cmd.Arguments[name]))
		b.WriteString(`"/>`)
	}

	b.WriteString(soapFooter)
	return b.String(), nil
}

func writeElement(b *strings.Builder, tag, value string) {
	b.WriteString("<")
	b.WriteString(tag)
	b.WriteString(">")
	b.WriteString(escapeXML(value))
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
}

func escapeXML(s string) string {
	var b strings.Builder
	// EscapeText cannot fail when writing to a strings.Builder.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
