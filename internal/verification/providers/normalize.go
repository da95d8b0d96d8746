package providers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Field names a NormalizedFields member.
type Field string

const (
	FieldLegalName       Field = "legal_name"
	FieldInstitution     Field = "institution"
	FieldProgramOrDegree Field = "program_or_degree"
	FieldGraduationYear  Field = "graduation_year"
	FieldLicenseStatus   Field = "license_status"
	FieldExpirationDate  Field = "expiration_date"
	FieldAffiliations    Field = "affiliations"
	FieldPhoto           Field = "photo"
	FieldCitationCount   Field = "citation_count"
)

// FieldMap maps a normalized field to one or more dotted source keys. When
// several keys are listed their non-empty values are joined with a space,
// so {"legal_name": ["nombre", "apellido_paterno"]} yields "Ana Ruiz".
type FieldMap map[Field][]string

// Normalize projects a decoded source record onto NormalizedFields.
func Normalize(record map[string]any, fm FieldMap) NormalizedFields {
	var out NormalizedFields
	for field, keys := range fm {
		switch field {
		case FieldLegalName:
			out.LegalName = joinValues(record, keys)
		case FieldInstitution:
			out.Institution = joinValues(record, keys)
		case FieldProgramOrDegree:
			out.ProgramOrDegree = joinValues(record, keys)
		case FieldGraduationYear:
			out.GraduationYear = yearOf(joinValues(record, keys))
		case FieldLicenseStatus:
			out.LicenseStatus = strings.ToLower(joinValues(record, keys))
		case FieldExpirationDate:
			out.ExpirationDate = joinValues(record, keys)
		case FieldAffiliations:
			for _, k := range keys {
				out.Affiliations = append(out.Affiliations, listValue(Lookup(record, k))...)
			}
		case FieldPhoto:
			v := joinValues(record, keys)
			out.HasPhoto = v != "" && v != "false"
		case FieldCitationCount:
			n, _ := strconv.Atoi(joinValues(record, keys))
			out.CitationCount = n
		}
	}
	return out
}

// Lookup resolves a dotted path ("data.records", "education.0.school")
// inside a decoded document. Numeric segments index into arrays.
func Lookup(doc map[string]any, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

func joinValues(record map[string]any, keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if s := scalarString(Lookup(record, k)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func listValue(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := scalarString(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

// yearOf accepts "2012", "2012-06-30" or "30/06/2012".
func yearOf(s string) int {
	s = strings.TrimSpace(s)
	if len(s) >= 4 {
		if y, err := strconv.Atoi(s[:4]); err == nil {
			return y
		}
		if y, err := strconv.Atoi(s[len(s)-4:]); err == nil {
			return y
		}
	}
	return 0
}

// Schema validates raw source payloads before normalization.
type Schema struct {
	schema *gojsonschema.Schema
}

// CompileSchema parses a JSON schema document. An empty document yields a
// nil schema, which accepts everything.
func CompileSchema(doc string) (*Schema, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// Validate checks a raw payload against the schema.
func (s *Schema) Validate(body []byte) error {
	if s == nil {
		return nil
	}
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}
	return nil
}
