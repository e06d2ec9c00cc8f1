package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadDir reads every .json and .lua content pack under dir, in filename
// order, and returns the packs with the built-in defaults first. A missing
// directory yields just the defaults.
func LoadDir(dir string) ([]Pack, error) {
	packs := []Pack{DefaultPack()}
	if strings.TrimSpace(dir) == "" {
		return packs, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return packs, nil
		}
		return nil, fmt.Errorf("catalog: reading content dir %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".lua") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		var pack Pack
		if strings.HasSuffix(name, ".lua") {
			pack, err = LoadLuaPack(path)
		} else {
			pack, err = LoadJSONPack(path)
		}
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}
	return packs, nil
}

// LoadJSONPack parses a single JSON content pack file.
func LoadJSONPack(path string) (Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	return DecodeJSONPack(data, path)
}

// DecodeJSONPack parses pack bytes. Unknown fields are rejected so authoring
// typos surface at load rather than as silently-default entries.
func DecodeJSONPack(data []byte, source string) (Pack, error) {
	var pack Pack
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&pack); err != nil {
		return Pack{}, fmt.Errorf("catalog: parsing %s: %w", source, err)
	}
	return pack, nil
}
