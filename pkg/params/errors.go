package params

import "fmt"

// ConfigurationError reports malformed or inconsistent parameters. It is
// never retried.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Path, e.Reason)
}

// Errorf returns a *ConfigurationError for the given path.
func Errorf(path, format string, args ...interface{}) error {
	return &ConfigurationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
