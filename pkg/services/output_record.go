package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dukex/hl7autoct/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// outputRecordSchema accepts the final output of the pipeline. Current
// pipelines list artifact references under final_status.artifacts; older ones
// wrote presigned URLs directly into final_status.
const outputRecordSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["final_status"],
	"properties": {
		"final_status": {
			"type": "object",
			"properties": {
				"total_segments": {"type": "integer", "minimum": 0},
				"total_rows": {"type": "integer", "minimum": 0},
				"artifacts": {
					"type": "object",
					"required": ["specification", "validation"],
					"properties": {
						"specification": {"type": "string", "minLength": 1},
						"validation": {"type": "string", "minLength": 1},
						"xmljs": {"type": "string", "minLength": 1}
					}
				},
				"specification_download_url": {"type": "string", "minLength": 1},
				"validation_report_download_url": {"type": "string", "minLength": 1},
				"xmljs_download_url": {"type": "string", "minLength": 1}
			},
			"anyOf": [
				{"required": ["artifacts"]},
				{"required": ["specification_download_url", "validation_report_download_url"]}
			]
		}
	}
}`

var compiledOutputRecordSchema = mustCompileSchema(outputRecordSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Errorf("invalid output record schema: %w", err))
	}

	return compiled
}

type outputRecord struct {
	FinalStatus struct {
		TotalSegments counter `json:"total_segments"`
		TotalRows     counter `json:"total_rows"`
		Artifacts     struct {
			Specification string `json:"specification"`
			Validation    string `json:"validation"`
			XMLJS         string `json:"xmljs"`
		} `json:"artifacts"`
		SpecificationDownloadURL    string `json:"specification_download_url"`
		ValidationReportDownloadURL string `json:"validation_report_download_url"`
		XMLJSDownloadURL            string `json:"xmljs_download_url"`
	} `json:"final_status"`
}

var errCounterRange = errors.New("counter is not an integer in the int64 range")

// counter decodes a JSON integer without passing through float64. Integral
// values written with a fraction or exponent, such as 12.0 or 1e3, are accepted.
type counter int64

func (c *counter) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	if v, err := n.Int64(); err == nil {
		*c = counter(v)

		return nil
	}

	r, ok := new(big.Rat).SetString(n.String())
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return fmt.Errorf("%w: %s", errCounterRange, n)
	}

	*c = counter(r.Num().Int64())

	return nil
}

// parseOutputRecord validates raw against the schema and decodes it.
func parseOutputRecord(raw json.RawMessage) (*outputRecord, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrInvalidOutputRecord)
	}

	result, err := compiledOutputRecordSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutputRecord, err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidOutputRecord, strings.Join(errors, "; "))
	}

	var record outputRecord

	err = json.Unmarshal(raw, &record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutputRecord, err)
	}

	return &record, nil
}

// reference returns where the artifact of the given kind lives, preferring
// the artifacts map over legacy download URLs. Empty when the run did not
// produce it.
func (r *outputRecord) reference(t models.ArtifactType) string {
	fs := r.FinalStatus

	switch t {
	case models.ArtifactSpecification:
		return firstNonEmpty(fs.Artifacts.Specification, fs.SpecificationDownloadURL)
	case models.ArtifactValidation:
		return firstNonEmpty(fs.Artifacts.Validation, fs.ValidationReportDownloadURL)
	case models.ArtifactXMLJS:
		return firstNonEmpty(fs.Artifacts.XMLJS, fs.XMLJSDownloadURL)
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
