package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// fieldMessages holds the message reported for a failed rule, keyed
// "field.tag"
var fieldMessages = map[string]string{
	"name.required":                 "Name is required",
	"name.min":                      "Name must be between 3 and 20 characters",
	"name.max":                      "Name must be between 3 and 20 characters",
	"email.required":                "Email is required",
	"email.email":                   "Invalid email format",
	"password.required":             "Password is required",
	"password.min":                  "Password must be at least 6 characters",
	"description.required":          "Description is required",
	"description.min":               "Description must be at least 3 characters",
	"gender.required":               "Gender is required",
	"programmingLanguages.required": "At least one programming language is required",
	"programmingLanguages.min":      "At least one programming language is required",
	"price.gt":                      "Price must be positive",
	"quantity.gte":                  "Quantity cannot be negative",
	"rating.min":                    "Rating must be between 1 and 5",
	"rating.max":                    "Rating must be between 1 and 5",
}

func newValidator() *validator.Validate {
	validate := validator.New()

	// Report failures under their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// "notblank" rejects whitespace-only strings
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return validate
}

// validationMessages maps validator failures to field -> message
func validationMessages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = msg
		}
	}
	return out
}

func sortedKeys(details map[string]string) []string {
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// sortedMessages flattens field messages into a stable list
func sortedMessages(details map[string]string) []string {
	msgs := make([]string, 0, len(details))
	for _, f := range sortedKeys(details) {
		msgs = append(msgs, details[f])
	}
	return msgs
}

// bindJSON decodes and validates a JSON body. Failures are answered with the
// structured error carrying per-field details.
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid input data", validationMessages(err))
		return false
	}
	return true
}

// bindValuePart decodes the JSON `value` part of a multipart request
func (s *Server) bindValuePart(c *gin.Context, dst any) bool {
	raw := c.PostForm("value")
	if raw == "" {
		writeError(c, http.StatusBadRequest, "Missing value part", nil)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid JSON format", nil)
		return false
	}
	return true
}
