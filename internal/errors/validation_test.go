package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidationError(t *testing.T) {
	// Test NewValidationError
	err := NewValidationError("test_field", "test message", "test_value")

	if err.Field != "test_field" {
		t.Errorf("Expected field to be 'test_field', got '%s'", err.Field)
	}

	if err.Message != "test message" {
		t.Errorf("Expected message to be 'test message', got '%s'", err.Message)
	}

	if err.Value != "test_value" {
		t.Errorf("Expected value to be 'test_value', got '%v'", err.Value)
	}

	// Test Error method
	expected := "validation error on field 'test_field': test message"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Test empty ValidationErrors
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Test single ValidationError
	errs = append(errs, *NewValidationError("field1", "message1", nil))
	expected := "validation failed: field1 message1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Test multiple ValidationErrors
	errs = append(errs, *NewValidationError("field2", "message2", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("test_field", "test message", "required", "test_value")

	if err.Rule != "required" {
		t.Errorf("Expected rule to be 'required', got '%s'", err.Rule)
	}

	if err.Field != "test_field" {
		t.Errorf("Expected field to be 'test_field', got '%s'", err.Field)
	}
}

func TestValidationErrorsFields(t *testing.T) {
	errs := ValidationErrors{
		*NewValidationError("form_url", "is required", ""),
		*NewValidationErrorWithRule("mode", "must be a valid session mode (normal, voice)", "session_mode", "loud"),
	}

	fields := errs.Fields()
	if len(fields) != 2 || fields[0] != "form_url" || fields[1] != "mode" {
		t.Errorf("Expected fields [form_url mode], got %v", fields)
	}

	if errs.Error() != "validation failed: 2 field errors" {
		t.Errorf("Unexpected error text '%s'", errs.Error())
	}
}

type startRequest struct {
	FormURL string `validate:"required,url"`
	Count   int    `validate:"gte=1,lte=500"`
}

func TestToValidationErrors(t *testing.T) {
	err := validator.New().Struct(startRequest{Count: 900})
	errs := ToValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(errs))
	}

	if errs[0].Rule != "required" || errs[0].Message != "is required" {
		t.Errorf("Unexpected first error %+v", errs[0])
	}
	if errs[1].Rule != "lte" || errs[1].Message != "must be 500 or less" {
		t.Errorf("Unexpected second error %+v", errs[1])
	}

	if got := ToValidationErrors(nil); len(got) != 0 {
		t.Errorf("Expected no errors for nil, got %v", got)
	}
}
