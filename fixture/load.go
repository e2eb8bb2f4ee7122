package fixture

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a fixture record from a YAML or JSON file. The file must contain a single
// object; its properties become static fields.
func LoadFile(path string) (map[string]ldvalue.Value, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	fields, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return fields, nil
}

// Parse decodes a fixture record from YAML or JSON data.
func Parse(data []byte) (map[string]ldvalue.Value, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("fixture must be an object")
	}
	fields := make(map[string]ldvalue.Value, len(raw))
	for k, v := range raw {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		fields[k] = ldvalue.Parse(encoded)
	}
	return fields, nil
}
