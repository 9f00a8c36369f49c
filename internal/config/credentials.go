package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrMissingCredentials = errors.New("las credenciales de inicio de sesión no están configuradas")

// Credentials are only ever read from the process environment.
type Credentials struct {
	Email    string `env:"EMAIL,notEmpty"`
	Password string `env:"PASSWORD,notEmpty"`
}

// LoadCredentials loads dotenvPath (when present) without overriding
// variables that are already set, then parses EMAIL and PASSWORD.
func LoadCredentials(dotenvPath string) (Credentials, error) {
	if dotenvPath != "" {
		_ = godotenv.Load(dotenvPath)
	}

	var c Credentials
	if err := env.Parse(&c); err != nil {
		return Credentials{}, fmt.Errorf("%w (%v)", ErrMissingCredentials, err)
	}

	return c, nil
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Email: %q, Password: ***}", c.Email)
}
