package mimepolicy

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadPresets decodes a YAML mapping of preset names to MIME type lists.
// Every member must be a valid type/subtype string.
func LoadPresets(r io.Reader) (map[string][]string, error) {
	var presets map[string][]string
	if err := yaml.NewDecoder(r).Decode(&presets); err != nil {
		if err == io.EOF {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPresetFile, err)
	}

	for name, members := range presets {
		if strings.TrimSpace(name) == "" || IsMIMEType(name) {
			return nil, fmt.Errorf("%w: bad preset name %q", ErrInvalidPresetFile, name)
		}
		for _, m := range members {
			if !IsMIMEType(m) {
				return nil, fmt.Errorf("%w: preset %q: %q is not a MIME type", ErrInvalidPresetFile, name, m)
			}
		}
	}
	return presets, nil
}

// LoadPresetsFile reads presets from a YAML file on disk.
func LoadPresetsFile(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPresetFile, err)
	}
	defer func() { _ = f.Close() }()

	return LoadPresets(f)
}
