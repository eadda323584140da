package secrets

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app's secrets in the OS keychain.
	KeyringService = "evolve-engine"
)

// Names lists the variables that may live in the keychain instead of the
// environment.
var Names = []string{
	"SERPAPI_API_KEY",
	"SENDGRID_API_KEY",
	"OUTREACH_SMTP_PASSWORD",
	"OUTREACH_IMAP_PASSWORD",
	"TWILIO_AUTH_TOKEN",
}

func IsSecret(name string) bool {
	return slices.Contains(Names, name)
}

// Getenv reads key from the environment; for secret names it falls back to
// the keychain when the variable is unset.
func Getenv(key string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	if !IsSecret(key) {
		return ""
	}
	v, err := Get(key)
	if err != nil {
		return ""
	}
	return v
}

func Get(name string) (string, error) {
	pw, err := keyring.Get(KeyringService, name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("secret " + name + " is empty")
	}
	return pw, nil
}

func Set(name, value string) error {
	if !IsSecret(name) {
		return errors.New("unknown secret name " + name + " (expected one of " + strings.Join(Names, ", ") + ")")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, name, value)
}

func Delete(name string) error {
	if !IsSecret(name) {
		return errors.New("unknown secret name " + name)
	}
	return keyring.Delete(KeyringService, name)
}
