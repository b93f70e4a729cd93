package clinic

import (
	"fmt"
	"strings"
)

// MaxTelephoneDigits is the longest telephone number the customers service accepts
const MaxTelephoneDigits = 12

// ValidationError describes one invalid request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (v ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", v.Field, v.Message)
}

// ValidationErrors collects every invalid field of a request
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 1 {
		return v[0].Error()
	}
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return fmt.Sprintf("%d validation errors occurred: %s", len(v), strings.Join(parts, "; "))
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

func (v ValidationErrors) errOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) notBlank(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "must not be blank")
	}
}

// Validate checks that every field is present and the telephone is an
// integer of at most MaxTelephoneDigits digits
func (r OwnerRequest) Validate() error {
	var errs ValidationErrors
	errs.notBlank("firstName", r.FirstName)
	errs.notBlank("lastName", r.LastName)
	errs.notBlank("address", r.Address)
	errs.notBlank("city", r.City)
	if strings.TrimSpace(r.Telephone) == "" {
		errs.add("telephone", "must not be blank")
	} else if msg := checkDigits(r.Telephone, MaxTelephoneDigits); msg != "" {
		errs.add("telephone", msg)
	}
	return errs.errOrNil()
}

// Validate checks the pet name and that the type is one of the known pet types
func (r PetRequest) Validate() error {
	var errs ValidationErrors
	errs.notBlank("name", r.Name)
	if _, ok := PetTypeNames[r.TypeID]; !ok {
		errs.add("typeId", fmt.Sprintf("unknown pet type %d, allowed 1..%d", r.TypeID, len(PetTypeNames)))
	}
	return errs.errOrNil()
}

func checkDigits(s string, max int) string {
	if strings.ContainsAny(s, ".,") {
		return "must not have a fractional part"
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "must contain digits only"
		}
	}
	if len(s) > max {
		return fmt.Sprintf("numeric value out of bounds (<%d digits>.<0 digits> expected)", max)
	}
	return ""
}
