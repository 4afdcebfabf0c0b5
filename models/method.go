package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Method represents a supported REST verb
type Method string

const (
	MethodGet    Method = "GET"
	MethodPut    Method = "PUT"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
)

// Methods lists every supported method in declaration order
var Methods = []Method{MethodGet, MethodPut, MethodPost, MethodDelete}

func (m Method) String() string {
	return string(m)
}

// IsValid checks if the method is one of the supported verbs
func (m Method) IsValid() bool {
	switch m {
	case MethodGet, MethodPut, MethodPost, MethodDelete:
		return true
	default:
		return false
	}
}

// ParseMethod converts a verb name to a Method, ignoring case
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("invalid method '%s': must be one of 'GET', 'PUT', 'POST', 'DELETE'", s)
	}
	return m, nil
}

// UnmarshalYAML implements custom YAML unmarshaling for Method
func (m *Method) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	parsed, err := ParseMethod(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
