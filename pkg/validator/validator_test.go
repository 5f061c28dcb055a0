package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type reminderPayload struct {
	Title    string `json:"title" validate:"required"`
	DateTime int64  `json:"dateTime" validate:"gt=0"`
	Type     string `json:"type" validate:"required"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := reminderPayload{
		Title:    "Pay rent",
		DateTime: 1735689600000,
		Type:     "general",
	}

	if err := ValidateStruct(payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	payload := reminderPayload{
		Title:    "",
		DateTime: 0,
		Type:     "",
	}

	err := ValidateStruct(payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	if len(vErrs) != 3 {
		t.Fatalf("expected 3 validation errors, got %d", len(vErrs))
	}

	foundTitle := false
	for _, v := range vErrs {
		if v.Field == "title" {
			foundTitle = true
		}
	}

	if !foundTitle {
		t.Fatal("expected title field to be present in validation errors")
	}
}

func TestEpochMillisRule(t *testing.T) {
	type payload struct {
		DateTime int64 `json:"dateTime" validate:"required,epochmillis"`
	}

	if err := ValidateStruct(payload{DateTime: 1750000000000}); err != nil {
		t.Fatalf("expected millisecond timestamp to pass, got %v", err)
	}

	// A client sending seconds lands two decades before the floor.
	err := ValidateStruct(payload{DateTime: 1750000000})
	if err == nil {
		t.Fatal("expected second-resolution timestamp to fail")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(vErrs) != 1 || vErrs[0].Tag != "epochmillis" {
		t.Fatalf("expected single epochmillis failure, got %v", vErrs)
	}
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation("scope", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "upcoming" || value == "past"
	})
	if err != nil {
		t.Fatalf("register validation: %v", err)
	}

	type query struct {
		Scope string `validate:"scope"`
	}

	if err := ValidateStruct(query{Scope: "upcoming"}); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
	if err := ValidateStruct(query{Scope: "everything"}); err == nil {
		t.Fatal("expected validation to fail for non-matching value")
	}
}
