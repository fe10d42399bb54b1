package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const backupTimeFormat = "20060102-150405"

func validateName(component, file string) error {
	for _, s := range []string{component, file} {
		if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
			return fmt.Errorf("%w: %q", ErrInvalidName, s)
		}
	}
	return nil
}

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

func decode(data []byte, v any) (bool, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode: %w", err)
	}
	return true, nil
}

// backupName returns "<file>.<timestamp>.bak" so backups sort chronologically.
func backupName(file string, at time.Time) string {
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(file, ext)
	return fmt.Sprintf("%s.%s%s.bak", base, at.Format(backupTimeFormat), ext)
}
