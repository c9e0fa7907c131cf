package config

import (
	"os"
	"strings"
)

// DefaultCredentialVars are checked in order; the first non-blank value wins.
var DefaultCredentialVars = []string{"API_KEY", "GEMINI_API_KEY"}

// EnvCredentials resolves the generation API key from the process environment.
// The environment is read on every call so a rotated key takes effect without a restart.
type EnvCredentials struct {
	Vars []string
}

// NewEnvCredentials returns a source reading DefaultCredentialVars.
func NewEnvCredentials() *EnvCredentials {
	return &EnvCredentials{Vars: DefaultCredentialVars}
}

func (e *EnvCredentials) APIKey() (string, bool) {
	for _, name := range e.Vars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, true
		}
	}
	return "", false
}
