package validation

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/url"
	"unicode/utf8"

	"task-manager/internal/config"
)

const createTaskSchema = `{
	"type": "object",
	"required": ["title"],
	"properties": {
		"title": {"type": "string", "minLength": %d, "maxLength": %d}
	}
}`

const updateTaskSchema = `{
	"type": "object",
	"required": ["id", "title", "completed"],
	"properties": {
		"id": {
			"anyOf": [
				{"type": "integer", "minimum": 1},
				{"type": "string", "pattern": "^0*[1-9][0-9]*$"}
			]
		},
		"title": {"type": "string", "minLength": %d, "maxLength": %d},
		"completed": {"type": "boolean"}
	}
}`

// CreateTaskInput is a validated create request
type CreateTaskInput struct {
	Title string
}

// UpdateTaskInput is a validated update request. All fields are replaced.
type UpdateTaskInput struct {
	ID        int64
	Title     string
	Completed bool
}

// TaskValidator validates task payloads from JSON bodies and HTML forms
type TaskValidator struct {
	validator *Validator
	create    *requestSchema
	update    *requestSchema
}

// NewTaskValidator creates a task validator using default bounds
func NewTaskValidator() *TaskValidator {
	return NewTaskValidatorWithConfig(nil)
}

// NewTaskValidatorWithConfig creates a task validator with configured title bounds
func NewTaskValidatorWithConfig(cfg *config.Config) *TaskValidator {
	v := NewValidatorWithConfig(cfg)
	minLen, maxLen := v.TitleBounds()
	lengths := map[string][2]int{"title": {minLen, maxLen}}

	return &TaskValidator{
		validator: v,
		create: &requestSchema{
			schema:   compile("create_task.json", fmt.Sprintf(createTaskSchema, minLen, maxLen)),
			fields:   []string{"title"},
			required: []string{"title"},
			types:    map[string]string{"title": "string"},
			lengths:  lengths,
		},
		update: &requestSchema{
			schema:   compile("update_task.json", fmt.Sprintf(updateTaskSchema, minLen, maxLen)),
			fields:   []string{"id", "title", "completed"},
			required: []string{"id", "title", "completed"},
			types:    map[string]string{"title": "string", "completed": "boolean"},
			lengths:  lengths,
		},
	}
}

// ValidateCreateTask decodes and validates a create request body.
// The returned title is trimmed.
func (tv *TaskValidator) ValidateCreateTask(body io.Reader) (CreateTaskInput, error) {
	doc, err := decode(body)
	if err != nil {
		return CreateTaskInput{}, err
	}
	return tv.createFromDocument(doc)
}

// ValidateCreateForm validates a form-encoded create request
func (tv *TaskValidator) ValidateCreateForm(form url.Values) (CreateTaskInput, error) {
	doc := map[string]interface{}{}
	if form.Has("title") {
		doc["title"] = form.Get("title")
	}
	return tv.createFromDocument(doc)
}

func notUTF8(s string) bool { return !utf8.ValidString(s) }

func (tv *TaskValidator) createFromDocument(doc interface{}) (CreateTaskInput, error) {
	if ve := invalidText(doc, notUTF8); ve.HasErrors() {
		return CreateTaskInput{}, failed(ve)
	}
	trimField(doc, "title")
	if ve := tv.create.check(doc); ve != nil {
		return CreateTaskInput{}, failed(ve)
	}

	obj := doc.(map[string]interface{})
	return CreateTaskInput{Title: obj["title"].(string)}, nil
}

// ValidateUpdateTask decodes and validates an update request body.
// id may be a JSON integer or a string of digits.
func (tv *TaskValidator) ValidateUpdateTask(body io.Reader) (UpdateTaskInput, error) {
	doc, err := decode(body)
	if err != nil {
		return UpdateTaskInput{}, err
	}
	return tv.updateFromDocument(doc)
}

// ValidateUpdateForm validates a form-encoded update request.
// An unchecked checkbox is absent from the form and means not completed.
func (tv *TaskValidator) ValidateUpdateForm(form url.Values) (UpdateTaskInput, error) {
	doc := map[string]interface{}{}
	if form.Has("id") {
		doc["id"] = form.Get("id")
	}
	if form.Has("title") {
		doc["title"] = form.Get("title")
	}
	switch form.Get("completed") {
	case "on", "true", "1":
		doc["completed"] = true
	default:
		doc["completed"] = false
	}
	return tv.updateFromDocument(doc)
}

func (tv *TaskValidator) updateFromDocument(doc interface{}) (UpdateTaskInput, error) {
	if ve := invalidText(doc, notUTF8); ve.HasErrors() {
		return UpdateTaskInput{}, failed(ve)
	}
	trimField(doc, "title")
	if ve := tv.update.check(doc); ve != nil {
		return UpdateTaskInput{}, failed(ve)
	}

	obj := doc.(map[string]interface{})
	id, ok := coerceID(obj["id"])
	if !ok {
		ve := NewValidationError()
		ve.AddInvalidValueError("id", obj["id"], "must be a positive integer")
		return UpdateTaskInput{}, failed(ve)
	}

	return UpdateTaskInput{
		ID:        id,
		Title:     obj["title"].(string),
		Completed: obj["completed"].(bool),
	}, nil
}

// coerceID converts a schema-valid id into the store's identifier type
func coerceID(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		// 1.0 is a valid JSON Schema integer but not a valid ParseInt input
		r, ok := new(big.Rat).SetString(v.String())
		if !ok || !r.IsInt() || !r.Num().IsInt64() {
			return 0, false
		}
		id := r.Num().Int64()
		return id, id > 0
	case string:
		id, err := ParseTaskID(v)
		return id, err == nil
	default:
		return 0, false
	}
}
