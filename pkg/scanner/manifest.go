package scanner

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is the optional apikb.yaml file at a project root. The scan
// command uses it to seed the project registration and file patterns.
type Manifest struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Patterns    []string `yaml:"patterns"`
}

const manifestFile = "apikb.yaml"

// LoadManifest reads apikb.yaml from dir. A missing file returns (nil, nil).
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
