package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"task-manager/internal/config"
	apperrors "task-manager/internal/errors"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBaseURL = "https://task-manager.local/schemas/"

// Default bounds used when no configuration is supplied
const (
	DefaultTitleMinLength    = 1
	DefaultTitleMaxLength    = 100
	DefaultPasswordMinLength = 8
)

// Validator holds the configured bounds and compiles request schemas
type Validator struct {
	config *config.Config
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{
		config: cfg,
	}
}

// TitleBounds returns the inclusive title length bounds, counted in characters
func (v *Validator) TitleBounds() (int, int) {
	if v.config != nil {
		return v.config.Validation.TitleMinLength, v.config.Validation.TitleMaxLength
	}
	return DefaultTitleMinLength, DefaultTitleMaxLength
}

// PasswordMinLength returns the configured minimum password length
func (v *Validator) PasswordMinLength() int {
	if v.config != nil {
		return v.config.Validation.PasswordMinLength
	}
	return DefaultPasswordMinLength
}

// requestSchema is a compiled schema plus what is needed to explain its failures
type requestSchema struct {
	schema   *jsonschema.Schema
	fields   []string          // field order for reporting
	required []string          // mirrors the schema's required list
	types    map[string]string // expected type wording per field
	lengths  map[string][2]int // min/max characters per field, 0 for unbounded
	formats  map[string]string // expected format wording per field
}

// compile compiles a schema document and panics if it is invalid
func compile(name, document string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	url := schemaBaseURL + name
	if err := compiler.AddResource(url, strings.NewReader(document)); err != nil {
		panic(fmt.Sprintf("validation: add schema %s: %v", name, err))
	}
	return compiler.MustCompile(url)
}

// decode reads exactly one JSON document. Numbers are kept as json.Number.
// Top-level strings whose bytes were not valid UTF-8 fail validation instead
// of being silently rewritten to U+FFFD.
func decode(body io.Reader) (interface{}, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperrors.NewMalformedError(err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.NewMalformedError(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, apperrors.NewMalformedError(fmt.Errorf("unexpected data after JSON document"))
	}

	if !utf8.Valid(data) {
		replaced := func(s string) bool { return strings.ContainsRune(s, utf8.RuneError) }
		if ve := invalidText(doc, replaced); ve.HasErrors() {
			return nil, failed(ve)
		}
	}
	return doc, nil
}

// invalidText reports top-level string fields for which bad returns true.
func invalidText(doc interface{}, bad func(string) bool) *ValidationError {
	ve := NewValidationError()
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return ve
	}
	names := make([]string, 0, len(obj))
	for name, v := range obj {
		if s, ok := v.(string); ok && bad(s) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		ve.AddInvalidValueError(name, nil, "must be valid UTF-8 text")
	}
	return ve
}

// trimField trims surrounding whitespace from a string field in place
func trimField(doc interface{}, field string) {
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return
	}
	if s, ok := obj[field].(string); ok {
		obj[field] = strings.TrimSpace(s)
	}
}

// check validates doc against rs and returns the collected field errors, or nil
func (rs *requestSchema) check(doc interface{}) *ValidationError {
	err := rs.schema.Validate(doc)
	if err == nil {
		return nil
	}

	ve := NewValidationError()
	schemaErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		ve.AddInvalidValueError("body", nil, err.Error())
		return ve
	}

	rs.collect(ve, doc, schemaErr)
	if !ve.HasErrors() {
		ve.AddInvalidValueError("body", nil, schemaErr.Message)
	}
	rs.sort(ve)
	return ve
}

// collect walks the leaves of a schema error tree
func (rs *requestSchema) collect(ve *ValidationError, doc interface{}, err *jsonschema.ValidationError) {
	if len(err.Causes) > 0 {
		for _, cause := range err.Causes {
			rs.collect(ve, doc, cause)
		}
		return
	}

	field := fieldName(err.InstanceLocation)
	value := fieldValue(doc, field)
	keyword := path.Base(err.KeywordLocation)

	switch {
	case keyword == "required":
		obj, _ := doc.(map[string]interface{})
		for _, name := range rs.required {
			if _, present := obj[name]; !present {
				ve.AddRequiredError(name)
			}
		}
	case field == "":
		ve.AddInvalidTypeError("body", nil, "JSON object")
	case strings.Contains(err.KeywordLocation, "/anyOf/"), keyword == "minimum", keyword == "pattern":
		ve.AddInvalidValueError(field, value, "must be a positive integer")
	case keyword == "type":
		ve.AddInvalidTypeError(field, value, rs.types[field])
	case keyword == "minLength" && value == "":
		ve.AddRequiredError(field)
	case keyword == "minLength":
		ve.AddInvalidLengthError(field, value, rs.lengths[field][0], 0)
	case keyword == "maxLength":
		ve.AddInvalidLengthError(field, value, 0, rs.lengths[field][1])
	case keyword == "format":
		ve.AddInvalidFormatError(field, value, rs.formats[field])
	default:
		ve.AddInvalidValueError(field, value, err.Message)
	}
}

// sort orders errors by the schema's field order so output is stable
func (rs *requestSchema) sort(ve *ValidationError) {
	rank := func(field string) int {
		for i, f := range rs.fields {
			if f == field {
				return i
			}
		}
		return -1
	}
	sort.SliceStable(ve.Errors, func(i, j int) bool {
		return rank(ve.Errors[i].Field) < rank(ve.Errors[j].Field)
	})
}

// fieldName returns the top-level property a JSON pointer refers to
func fieldName(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "#")
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return ""
	}
	name := strings.SplitN(pointer, "/", 2)[0]
	name = strings.ReplaceAll(name, "~1", "/")
	return strings.ReplaceAll(name, "~0", "~")
}

func fieldValue(doc interface{}, field string) interface{} {
	if obj, ok := doc.(map[string]interface{}); ok {
		return obj[field]
	}
	return nil
}

// failed wraps field errors into the application's validation error
func failed(ve *ValidationError) error {
	return apperrors.NewValidationError("Validation failed", ve)
}

// ParseTaskID parses a positive decimal task identifier
func ParseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidInputError("id", raw, "must be a positive integer")
	}
	return id, nil
}
