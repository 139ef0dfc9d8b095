package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type countRequest struct {
	Count     *int   `json:"count" validate:"omitempty,gte=1,lte=10000"`
	MasterKey string `json:"masterKey"`
}

// Test that counts are accepted exactly inside the allowed range.
func TestProperty_RangeValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("count in [1, 10000] passes, anything else fails", prop.ForAll(
		func(count int) bool {
			body, _ := json.Marshal(map[string]interface{}{"count": count, "masterKey": "k"})
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))

			var parsed countRequest
			err := DecodeAndValidate(req, &parsed)

			if count >= 1 && count <= 10000 {
				return err == nil && parsed.Count != nil && *parsed.Count == count
			}
			return err != nil && len(FormatValidationErrors(err)) == 1
		},
		gen.IntRange(-20000, 20000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidateEmptyBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", nil)

	var parsed countRequest
	if err := DecodeAndValidate(req, &parsed); err != nil {
		t.Fatalf("Empty body should decode as an empty object: %v", err)
	}
	if parsed.Count != nil {
		t.Error("Count should stay unset")
	}
}

func TestDecodeAndValidateMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"count":`))

	var parsed countRequest
	err := DecodeAndValidate(req, &parsed)
	if err == nil {
		t.Fatal("Expected a decode error")
	}
	if len(FormatValidationErrors(err)) != 0 {
		t.Error("A decode error must not be reported as a validation error")
	}
}

func TestFormatValidationErrorsMessages(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"count": 0}`))

	var parsed countRequest
	errs := FormatValidationErrors(DecodeAndValidate(req, &parsed))
	if len(errs) != 1 {
		t.Fatalf("Expected one validation error, got %v", errs)
	}
	if errs[0].Field != "Count" || errs[0].Message != "Value must be greater than or equal to 1" {
		t.Errorf("Unexpected validation error %+v", errs[0])
	}
}
