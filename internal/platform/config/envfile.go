package config

import (
	"bufio"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadEnvFile finds and applies a .env file without overriding variables the
// environment already sets. Missing files are only worth a warning.
func loadEnvFile(logger *log.Logger) {
	path, err := findEnvFile()
	if err != nil {
		logger.Printf("WARN: failed to locate .env: %v", err)
		return
	}
	if path == "" {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Printf("WARN: failed to open %s: %v", path, err)
		return
	}
	if err := parseEnvFile(logger, file); err != nil {
		logger.Printf("WARN: failed to load %s: %v", path, err)
	} else {
		logger.Printf("loaded env from %s", path)
	}
	_ = file.Close()
}

func findEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

func parseEnvFile(logger *log.Logger, file *os.File) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = trimQuotes(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			logger.Printf("WARN: failed to set %s from env file", key)
		}
	}
	return scanner.Err()
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
