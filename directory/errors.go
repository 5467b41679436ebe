package directory

import "fmt"

// ConfigError reports a missing or invalid configuration property.
type ConfigError struct {
	Property string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("directory: invalid %s: %s", e.Property, e.Reason)
}

// SchemaError reports a schema resource that could not be read or parsed.
type SchemaError struct {
	Resource string
	Err      error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("directory: schema %s: %v", e.Resource, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ImportError reports an LDIF resource that could not be read or imported.
type ImportError struct {
	Resource string
	Err      error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("directory: import %s: %v", e.Resource, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
