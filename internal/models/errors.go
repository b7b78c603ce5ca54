package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNameRequired is returned when a record has no student name.
var ErrNameRequired = errors.New("student name is required")

// StudentExistsError is returned when registering a name already on the roster.
type StudentExistsError struct {
	Name string
}

func (e *StudentExistsError) Error() string {
	return fmt.Sprintf("student %s is already registered", e.Name)
}

// IsStudentExists reports whether err is a duplicate registration.
func IsStudentExists(err error) bool {
	var existsErr *StudentExistsError
	return errors.As(err, &existsErr)
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
