package scenario

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var scenarioFileExtensions = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// LoadFile reads one scenario from a YAML or JSON file. The document has the same shape as
// the JSON encoding of Scenario. If it has no name, the file name without extension is used.
func LoadFile(path string) (Scenario, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// LoadDir reads every scenario file under dir, including subdirectories, in lexical order of
// their paths. Files with other extensions are ignored.
func LoadDir(dir string) ([]Scenario, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && scenarioFileExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	ret := make([]Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		ret = append(ret, sc)
	}
	return ret, nil
}

// Parse decodes a scenario from YAML or JSON data. JSON is a subset of YAML, so both go through
// the YAML decoder and are then mapped onto the Go types by their JSON field names.
func Parse(data []byte) (Scenario, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Scenario{}, err
	}
	if _, ok := raw.(map[string]interface{}); !ok {
		return Scenario{}, fmt.Errorf("scenario must be an object")
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return Scenario{}, err
	}
	var sc Scenario
	if err := json.Unmarshal(encoded, &sc); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}
