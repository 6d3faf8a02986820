// Package extract turns raw LLM replies into bill fields. The model is
// asked for strict JSON but does not always comply, so this boundary
// adapter scrapes the widest JSON-looking window before giving up, and
// validates whatever it finds against a schema so wrong-shaped replies
// fail loudly instead of flowing into the calculator.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hfarrukh/solaradvisor/internal/solar"
)

// ErrParseFailure is the sentinel wrapped by every ParseError. Handlers
// map it to 502.
var ErrParseFailure = errors.New("llm reply is not a valid bill document")

// ParseError describes why a reply could not be interpreted.
type ParseError struct {
	Reason  string
	Snippet string
}

func (e *ParseError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("extract: %s", e.Reason)
	}
	return fmt.Sprintf("extract: %s: %q", e.Reason, e.Snippet)
}

func (e *ParseError) Unwrap() error { return ErrParseFailure }

const billSchemaJSON = `{
  "type": "object",
  "properties": {
    "unitsKWh":     {"type": ["number", "null"]},
    "totalCost":    {"type": ["number", "null"]},
    "costPerUnit":  {"type": ["number", "null"]},
    "location":     {"type": ["string", "null"]},
    "billingDate":  {"type": ["string", "null"]},
    "tariff":       {"type": ["string", "null"]},
    "peakDemandKw": {"type": ["number", "null"]}
  },
  "additionalProperties": false
}`

var billSchema = mustCompileSchema(billSchemaJSON)

func mustCompileSchema(src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("bill_fields.schema.json", strings.NewReader(src)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("bill_fields.schema.json")
}

// numericKeys are coerced from lenient string forms like "350", "45,000",
// or "Rs 30.5" before schema validation.
var numericKeys = []string{"unitsKWh", "totalCost", "costPerUnit", "peakDemandKw"}

var knownKeys = map[string]struct{}{
	"unitsKWh": {}, "totalCost": {}, "costPerUnit": {}, "location": {},
	"billingDate": {}, "tariff": {}, "peakDemandKw": {},
}

// BillFields parses a raw completion reply into bill fields. It never
// panics; every failure is a *ParseError wrapping ErrParseFailure.
func BillFields(raw string) (*solar.BillFields, error) {
	doc, perr := decodeObject(raw)
	if perr != nil {
		return nil, perr
	}

	sanitizeDocument(doc)

	if err := billSchema.Validate(doc); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("reply does not match bill schema: %v", err), Snippet: snippet(raw)}
	}

	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("re-encode bill document: %v", err), Snippet: snippet(raw)}
	}
	var fields solar.BillFields
	if err := json.Unmarshal(buf, &fields); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("decode bill document: %v", err), Snippet: snippet(raw)}
	}
	return &fields, nil
}

// decodeObject strips markdown fences, tries a strict unmarshal, and falls
// back to the widest {...} window in the reply.
func decodeObject(raw string) (map[string]any, *ParseError) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err == nil {
		return doc, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, &ParseError{Reason: "no JSON object in reply", Snippet: snippet(raw)}
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &doc); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid JSON object in reply: %v", err), Snippet: snippet(raw)}
	}
	return doc, nil
}

// sanitizeDocument coerces lenient numeric strings, normalizes empty
// strings to null, and drops keys outside the schema.
func sanitizeDocument(doc map[string]any) {
	for key := range doc {
		if _, ok := knownKeys[key]; !ok {
			delete(doc, key)
		}
	}
	for _, key := range numericKeys {
		v, ok := doc[key]
		if !ok {
			continue
		}
		if s, isString := v.(string); isString {
			if f, ok := parseLenientNumber(s); ok {
				doc[key] = f
			} else {
				doc[key] = nil
			}
		}
	}
	for _, key := range []string{"location", "billingDate", "tariff"} {
		if s, ok := doc[key].(string); ok && strings.TrimSpace(s) == "" {
			doc[key] = nil
		}
	}
}

// parseLenientNumber accepts currency-flavored strings like "45,000" or
// "Rs 30.5 per kWh" and pulls the first numeric token out.
func parseLenientNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	var b strings.Builder
	started := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
			started = true
		case r == '-' && !started && b.Len() == 0:
			b.WriteRune(r)
		case r == ',' && started:
			// thousands separator
		default:
			if started {
				goto done
			}
		}
	}
done:
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func snippet(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
