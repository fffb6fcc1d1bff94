package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SecretsDir - стандартный путь Docker Secrets. Переменная, чтобы тесты могли подменить каталог.
var SecretsDir = "/run/secrets"

// ReadSecret читает секрет из файла в каталоге SecretsDir.
func ReadSecret(secretName string) (string, error) {
	filePath := filepath.Join(SecretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadSecretOr возвращает секрет из файла, а если файла нет - fallback (обычно значение из env).
func ReadSecretOr(secretName, fallback string) string {
	secret, err := ReadSecret(secretName)
	if err != nil {
		return strings.TrimSpace(fallback)
	}
	return secret
}
