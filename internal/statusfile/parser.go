package statusfile

import (
	"fmt"
	"os"
	"strings"
)

// statesKey is the top-level dictionary that holds actual component state.
// Everything else in a status file is controller bookkeeping.
const statesKey = "States"

// bookkeepingKeys are state entries that describe the controller's own
// connection rather than device state. Matched case-insensitively against
// the final key segment.
var bookkeepingKeys = map[string]struct{}{
	"host":     {},
	"address":  {},
	"port":     {},
	"user":     {},
	"username": {},
	"password": {},
	"version":  {},
}

// ParseComponentFile reads one status file and returns its flattened,
// filtered state map.
//
// Status files are GNUstep-style property lists:
//
//	{
//	    States = {
//	        CurrentVolume = 42;
//	        "Current Input" = "HDMI 1";
//	        Zone1 = { Power = ON; };
//	    };
//	    Host = 127.0.0.1;
//	    Version = "8.5";
//	}
//
// Only the States dictionary is extracted. Nested dictionaries flatten to
// dotted keys (Zone1.Power). Bookkeeping keys are dropped.
func ParseComponentFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading status file: %w", err)
	}

	doc, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing status file %s: %w", path, err)
	}

	states, ok := doc[statesKey].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("status file %s has no States dictionary", path)
	}

	flat := make(map[string]string)
	flatten("", states, flat)
	return flat, nil
}

// flatten walks a parsed dictionary, joining nested keys with dots and
// dropping bookkeeping entries.
func flatten(prefix string, dict map[string]any, out map[string]string) {
	for key, value := range dict {
		if _, skip := bookkeepingKeys[strings.ToLower(key)]; skip {
			continue
		}
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case string:
			out[full] = v
		}
	}
}

// Parse decodes a GNUstep-style property list into nested maps.
// Values are either string or map[string]any.
func Parse(input string) (map[string]any, error) {
	p := &parser{input: input}
	p.skipSpace()
	dict, err := p.parseDict()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("trailing data at offset %d", p.pos)
	}
	return dict, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) expect(c byte) error {
	if p.pos >= len(p.input) || p.input[p.pos] != c {
		return fmt.Errorf("expected %q at offset %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

func (p *parser) parseDict() (map[string]any, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	dict := make(map[string]any)
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unterminated dictionary")
		}
		if p.input[p.pos] == '}' {
			p.pos++
			return dict, nil
		}

		key, err := p.parseString()
		if err != nil {
			return nil, fmt.Errorf("dictionary key: %w", err)
		}
		p.skipSpace()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		p.skipSpace()

		var value any
		if p.pos < len(p.input) && p.input[p.pos] == '{' {
			value, err = p.parseDict()
		} else {
			value, err = p.parseString()
		}
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}

		p.skipSpace()
		if err := p.expect(';'); err != nil {
			return nil, err
		}
		dict[key] = value
	}
}

// parseString reads a quoted or bare string token.
func (p *parser) parseString() (string, error) {
	if p.pos >= len(p.input) {
		return "", fmt.Errorf("unexpected end of input")
	}
	if p.input[p.pos] == '"' {
		return p.parseQuoted()
	}

	start := p.pos
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\r', '\n', '=', ';', '{', '}':
			if p.pos == start {
				return "", fmt.Errorf("empty token at offset %d", p.pos)
			}
			return p.input[start:p.pos], nil
		}
		p.pos++
	}
	return p.input[start:], nil
}

func (p *parser) parseQuoted() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.input) {
				return "", fmt.Errorf("unterminated escape")
			}
			sb.WriteByte(p.input[p.pos])
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string")
}
