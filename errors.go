package osmlinks

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEdgeNotFound = errors.New("edge not found")
	ErrNodeNotFound = errors.New("node not found")
)

// ConfigurationError is returned when road classes table or check parameters are malformed
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: field '%s': %s", e.Field, e.Message)
}

func configurationErrorf(field string, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
