package ldapclient

import "fmt"

// ConfigError reports a missing or invalid configuration property.
type ConfigError struct {
	Property string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ldapclient: invalid %s: %s", e.Property, e.Reason)
}

// ConnectionError reports a failure to reach the server or complete the
// TLS handshake.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ldapclient: connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// AuthError reports a failed bind on an otherwise healthy connection.
type AuthError struct {
	BindDN string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("ldapclient: bind as %s: %v", e.BindDN, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
