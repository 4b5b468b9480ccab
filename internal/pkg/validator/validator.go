package validator

// Validator validates request and domain structs.
type Validator interface {
	// Validate checks the value and returns an error describing violations.
	Validate(data any) error
}
