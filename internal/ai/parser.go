package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Shape is the structure expected in a model response.
type Shape string

const (
	ShapeBatch  Shape = "batch"
	ShapeSingle Shape = "single"
)

// Defaults substituted for missing or malformed result fields.
const (
	defaultScore          = 50
	defaultReasoning      = "Analysis completed"
	defaultComplexity     = model.ComplexityMedium
	defaultTimeToValue    = "6-12 months"
	defaultStrategicValue = "Under evaluation"
)

// Envelope schemas. Field-level problems are normalized, not rejected.
const (
	batchEnvelopeSchema = `{
		"type": "object",
		"required": ["analyses"],
		"properties": {
			"analyses": {"type": "array", "minItems": 1, "items": {"type": "object"}}
		}
	}`
	singleEnvelopeSchema = `{
		"type": "object",
		"anyOf": [{"required": ["score"]}, {"required": ["reasoning"]}]
	}`
)

var (
	batchSchema  = mustSchema(batchEnvelopeSchema)
	singleSchema = mustSchema(singleEnvelopeSchema)

	// thinkTagPattern matches <think>...</think> blocks emitted by reasoning models.
	thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile response schema: %v", err))
	}
	return s
}

// markers are the keys whose presence identifies the JSON object we want.
func (s Shape) markers() []string {
	if s == ShapeBatch {
		return []string{`"analyses"`}
	}
	return []string{`"score"`, `"reasoning"`}
}

func (s Shape) schema() *gojsonschema.Schema {
	if s == ShapeBatch {
		return batchSchema
	}
	return singleSchema
}

// NamedResult is one entry of a batch response before it is matched to a company.
type NamedResult struct {
	CompanyID   string
	CompanyName string
	Result      model.AnalysisResult
}

// ParseBatch extracts and normalizes the "analyses" array from raw model text.
func ParseBatch(raw string) ([]NamedResult, error) {
	obj, err := decodeObject(raw, ShapeBatch)
	if err != nil {
		return nil, err
	}

	items, _ := obj["analyses"].([]any)
	results := make([]NamedResult, 0, len(items))
	for _, item := range items {
		// The envelope schema guarantees every entry is an object.
		fields := item.(map[string]any)
		results = append(results, NamedResult{
			CompanyID:   scalarString(fields["companyId"]),
			CompanyName: scalarString(fields["companyName"]),
			Result:      Normalize(fields),
		})
	}
	return results, nil
}

// ParseSingle extracts and normalizes one flat result object from raw model text.
func ParseSingle(raw string) (model.AnalysisResult, error) {
	obj, err := decodeObject(raw, ShapeSingle)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	return Normalize(obj), nil
}

// decodeObject finds the first well-formed object carrying the shape's marker
// key, validates it against the shape's envelope schema and decodes it.
func decodeObject(raw string, shape Shape) (map[string]any, error) {
	candidate, err := extractObject(raw, shape.markers())
	if err != nil {
		return nil, &model.ParseError{Shape: string(shape), Err: err}
	}

	result, err := shape.schema().Validate(gojsonschema.NewStringLoader(candidate))
	if err != nil {
		return nil, &model.ParseError{Shape: string(shape), Err: fmt.Errorf("validate envelope: %w", err)}
	}
	if !result.Valid() {
		return nil, &model.ParseError{Shape: string(shape), Err: schemaViolation(result.Errors())}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, &model.ParseError{Shape: string(shape), Err: fmt.Errorf("decode: %w", err)}
	}
	return obj, nil
}

func schemaViolation(errs []gojsonschema.ResultError) error {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		if field == "" {
			field = "(root)"
		}
		parts = append(parts, field+": "+e.Description())
	}
	return fmt.Errorf("response does not match expected structure: %s", strings.Join(parts, "; "))
}

// extractObject scans every '{' in order and returns the first balanced,
// valid JSON object whose text contains one of markers.
func extractObject(text string, markers []string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(text, "")

	sawCandidate := false
	for offset := 0; offset < len(cleaned); {
		idx := strings.IndexByte(cleaned[offset:], '{')
		if idx < 0 {
			break
		}
		start := offset + idx
		offset = start + 1

		span, ok := balancedObject(cleaned[start:])
		if !ok || !containsAny(span, markers) {
			continue
		}
		sawCandidate = true
		if json.Valid([]byte(span)) {
			return span, nil
		}
	}

	if sawCandidate {
		return "", errors.New("candidate JSON object is malformed")
	}
	return "", fmt.Errorf("no JSON object containing %s found", strings.Join(markers, " or "))
}

// balancedObject returns the prefix of s from its leading '{' through the
// matching '}', honoring string literals and escapes.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Normalize builds a fully populated result from a decoded object,
// substituting defaults for anything missing or of the wrong type.
func Normalize(fields map[string]any) model.AnalysisResult {
	return model.AnalysisResult{
		Score:                 normalizeScore(fields["score"]),
		Reasoning:             textOr(fields["reasoning"], defaultReasoning),
		Synergies:             stringList(fields["synergies"]),
		Risks:                 stringList(fields["risks"]),
		IntegrationComplexity: normalizeComplexity(fields["integrationComplexity"]),
		TimeToValue:           textOr(fields["timeToValue"], defaultTimeToValue),
		StrategicValue:        textOr(fields["strategicValue"], defaultStrategicValue),
	}
}

// normalizeScore accepts JSON numbers and numeric strings ("85", "85/100"),
// rounds and clamps into [0,100]. Anything else yields the default.
func normalizeScore(v any) int {
	var f float64
	switch s := v.(type) {
	case json.Number:
		parsed, err := s.Float64()
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return defaultScore
		}
		f = parsed // ±Inf on overflow, clamped below
	case float64:
		f = s
	case string:
		str := strings.TrimSpace(s)
		if i := strings.IndexByte(str, '/'); i >= 0 {
			str = strings.TrimSpace(str[:i])
		}
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(str, "%"), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return defaultScore
		}
		f = parsed
	default:
		return defaultScore
	}

	if math.IsNaN(f) {
		return defaultScore
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func normalizeComplexity(v any) model.Complexity {
	s, ok := v.(string)
	if !ok {
		return defaultComplexity
	}
	for _, c := range []model.Complexity{model.ComplexityLow, model.ComplexityMedium, model.ComplexityHigh, model.ComplexityUnknown} {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c
		}
	}
	return defaultComplexity
}

func textOr(v any, def string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

// stringList returns the string items of a JSON array, or an empty slice
// when v is not an array.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(scalarString(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
