package facts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"scout/internal/logging"
)

// FactsSuffix is appended to a source file's basename to get its sidecar
// facts path: <parent>/.docs/<source_file>.facts.json
const FactsSuffix = ".facts.json"

// FactsPath returns the sidecar facts path for a source file, following
// the filesystem convention: <parent>/.docs/<basename(sourcePath)>.facts.json
func FactsPath(sourcePath string) string {
	dir := filepath.Dir(sourcePath)
	base := filepath.Base(sourcePath)
	return filepath.Join(dir, ".docs", base+FactsSuffix)
}

// Load reads and decodes a .facts.json file. A missing file is reported as
// a plain *os.PathError so callers can distinguish "not yet synced" from
// "corrupt" with os.IsNotExist.
func Load(path string) (*ModuleFacts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mf ModuleFacts
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("facts: corrupt cache at %s: %w", path, err)
	}
	return &mf, nil
}

// Save writes m to path atomically: it marshals to a temp file in the same
// directory, then renames over the destination, so a crash mid-write never
// leaves a truncated or half-written facts file behind.
func Save(path string, m *ModuleFacts) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.ExtractError("facts: failed to create directory %s: %v", dir, err)
		return fmt.Errorf("facts: creating directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("facts: marshaling %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".facts-*.tmp")
	if err != nil {
		return fmt.Errorf("facts: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed away

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("facts: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("facts: closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("facts: renaming into place: %w", err)
	}

	logging.ExtractDebug("facts: wrote %s (%d bytes)", path, len(data))
	return nil
}
