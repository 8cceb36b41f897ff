package syslogtail

import (
	"regexp"
	"strings"
)

// eventPattern matches the service-event lines the controller writes to the
// system log. This is the de-facto wire format of an otherwise undocumented
// event stream; treat changes with suspicion.
//
// Example:
//
//	Received service event: Family Room-AudioSwitch-Audio_switch-1-SVC_AV_GENERALAUDIO-SetVolume with arguments: {VolumeValue = 45; }
var eventPattern = regexp.MustCompile(
	`Received service event: (.+?)-(.+?)-(.+?)-(.+?)-(.+?)-(\S+) with arguments: (.+)$`,
)

// nullArguments is what the controller logs for commands without arguments.
const nullArguments = "(null)"

// ServiceEvent is one parsed service invocation from the system log.
type ServiceEvent struct {
	Zone             string
	Component        string
	LogicalComponent string
	VariantID        string
	Service          string
	Command          string
	Arguments        map[string]string
}

// parseLine extracts a ServiceEvent from one log line. Lines that do not
// match the pattern return ok=false and are ignored by the tailer.
func parseLine(line string) (ServiceEvent, bool) {
	m := eventPattern.FindStringSubmatch(line)
	if m == nil {
		return ServiceEvent{}, false
	}
	return ServiceEvent{
		Zone:             m[1],
		Component:        m[2],
		LogicalComponent: m[3],
		VariantID:        m[4],
		Service:          m[5],
		Command:          m[6],
		Arguments:        parseArguments(m[7]),
	}, true
}

// parseArguments decodes the argument block trailing a service event:
// either the literal null marker or a {key = value; key2 = value2;} block.
// Malformed entries are skipped rather than failing the whole event.
func parseArguments(block string) map[string]string {
	block = strings.TrimSpace(block)
	if block == "" || block == nullArguments {
		return nil
	}

	block = strings.TrimPrefix(block, "{")
	block = strings.TrimSuffix(block, "}")

	args := make(map[string]string)
	for _, entry := range strings.Split(block, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, value, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if key == "" {
			continue
		}
		args[key] = value
	}
	if len(args) == 0 {
		return nil
	}
	return args
}
