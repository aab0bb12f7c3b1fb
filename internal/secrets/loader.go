package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Load resolves a secret value. When file is set it takes precedence
// over the inline value. The returned secret is always trimmed; an
// error is returned when neither source yields a usable secret. The
// name only gives error messages context.
func Load(name, file, value string) (string, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = "secret"
	}

	if file = strings.TrimSpace(file); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		value = string(data)
	}

	secret := strings.TrimSpace(value)
	if secret == "" {
		if file != "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
