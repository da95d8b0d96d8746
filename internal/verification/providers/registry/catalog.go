package registry

import "credverify/internal/verification/providers"

// Known source identifiers.
const (
	SourceNationalUS = "national-us"
	SourceCedulaMX   = "cedula-mx"
	SourceBoardCA    = "board-us-ca"
	SourceBoardNY    = "board-us-ny"
	SourceBoardTX    = "board-us-tx"
)

const stateBoardSchema = `{
	"type": "object",
	"required": ["license"],
	"properties": {
		"license": {"type": "object", "required": ["number"]}
	}
}`

func stateBoard(id, jurisdiction string) Config {
	return Config{
		ID:            id,
		Jurisdictions: []string{jurisdiction},
		Fields: providers.FieldMap{
			providers.FieldLegalName:       {"licensee.full_name"},
			providers.FieldInstitution:     {"education.school"},
			providers.FieldProgramOrDegree: {"education.degree"},
			providers.FieldGraduationYear:  {"education.graduation_year"},
			providers.FieldLicenseStatus:   {"license.status"},
			providers.FieldExpirationDate:  {"license.expires_on"},
		},
		Schema: stateBoardSchema,
	}
}

// Catalog returns the field mappings of every known registry source. URLs
// and credentials come from configuration; sources without a primary URL
// are not registered.
func Catalog() []Config {
	return []Config{
		{
			ID:            SourceNationalUS,
			Jurisdictions: []string{"US"},
			RecordPath:    "results",
			Fields: providers.FieldMap{
				providers.FieldLegalName:       {"basic.first_name", "basic.middle_name", "basic.last_name"},
				providers.FieldLicenseStatus:   {"basic.status"},
				providers.FieldProgramOrDegree: {"basic.credential"},
				providers.FieldExpirationDate:  {"basic.license_expiration"},
			},
			Schema: `{"type":"object","required":["results"],"properties":{"results":{"type":"array"}}}`,
		},
		{
			ID:            SourceCedulaMX,
			Jurisdictions: []string{"MX"},
			RecordPath:    "items",
			Fields: providers.FieldMap{
				providers.FieldLegalName:       {"nombre", "paterno", "materno"},
				providers.FieldInstitution:     {"desins"},
				providers.FieldProgramOrDegree: {"titulo"},
				providers.FieldGraduationYear:  {"anioreg"},
			},
			Schema: `{"type":"object","properties":{"items":{"type":"array"}}}`,
		},
		stateBoard(SourceBoardCA, "US-CA"),
		stateBoard(SourceBoardNY, "US-NY"),
		stateBoard(SourceBoardTX, "US-TX"),
	}
}
