package naming

import (
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
)

var snakePattern = regexp.MustCompile(`^[a-z]+(_[a-z0-9]+)*$`)

// Converter decides which names are candidates and what they become.
type Converter interface {
	IsSource(name string) bool
	ToTarget(name string) string
}

// SnakeToCamel converts lower snake_case to lowerCamelCase.
type SnakeToCamel struct{}

func (SnakeToCamel) IsSource(name string) bool { return IsSnakeCase(name) }

func (SnakeToCamel) ToTarget(name string) string { return ToCamel(name) }

// IsSnakeCase reports whether name has at least one underscore and only lowercase
// alphanumeric segments, the first of them starting with letters.
func IsSnakeCase(name string) bool {
	return strings.Contains(name, "_") && snakePattern.MatchString(name)
}

func ToCamel(name string) string {
	return strcase.ToLowerCamel(name)
}
