package llm

// FieldType is the JSON type of a schema field
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
)

// Field is one required property of a result object
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

// Schema is a flat JSON object with required fields.
// Each provider translates it into its own structured-output mechanism.
type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

// Required returns the field names in declaration order
func (s Schema) Required() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Properties returns the JSON Schema "properties" object
func (s Schema) Properties() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = map[string]any{
			"type":        string(f.Type),
			"description": f.Description,
		}
	}
	return props
}

// JSONSchema returns the schema as a JSON Schema document
func (s Schema) JSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           s.Properties(),
		"required":             s.Required(),
		"additionalProperties": false,
	}
}

// FactSchema is the reply shape of a fact check
var FactSchema = Schema{
	Name:        "fact_check_result",
	Description: "Verdict of a fact check",
	Fields: []Field{
		{Name: "result", Type: FieldString, Description: "The final verdict: 'True' or 'False'. If uncertain, use 'Insufficient data'."},
		{Name: "confidence", Type: FieldString, Description: "Confidence level: 'High', 'Medium', or 'Low'. If uncertain, use 'N/A'."},
		{Name: "detailedExplanation", Type: FieldString, Description: "A clear, human-style explanation written for a general user. Always provide this."},
		{Name: "accuracyScore", Type: FieldNumber, Description: "A numerical score from 0 to 100 representing the confidence in the verification."},
	},
}

// LegalSchema is the reply shape of a legal check
var LegalSchema = Schema{
	Name:        "legal_check_result",
	Description: "Verdict of a legal check",
	Fields: []Field{
		{Name: "verdict", Type: FieldString, Description: "The final verdict: 'Original', 'Fake', or 'Needs Further Verification'."},
		{Name: "reason", Type: FieldString, Description: "A clear, human-friendly detailed explanation for the verdict."},
		{Name: "summary", Type: FieldString, Description: "A short, simplified one or two-line summary for the user."},
		{Name: "accuracyScore", Type: FieldNumber, Description: "A numerical score from 0 to 100 representing the confidence in the verification."},
	},
}
