package validator

import "strings"

type Validator struct {
	Errors []string `json:",omitempty"`
}

func (v Validator) HasErrors() bool {
	return len(v.Errors) != 0
}

func (v *Validator) AddError(message string) {
	if v.Errors == nil {
		v.Errors = []string{}
	}

	v.Errors = append(v.Errors, message)
}

func (v *Validator) Check(ok bool, message string) {
	if !ok {
		v.AddError(message)
	}
}

// Required records the names of blank fields, in the order given.
type Required struct {
	missing []string
}

func (req *Required) Field(name, value string) {
	if !NotBlank(value) {
		req.missing = append(req.missing, name)
	}
}

func (req *Required) Missing() []string {
	return req.missing
}

// Message is the client-facing error for the missing fields, or "" when none are.
func (req *Required) Message() string {
	if len(req.missing) == 0 {
		return ""
	}
	return "Missing required fields: " + strings.Join(req.missing, ", ")
}
