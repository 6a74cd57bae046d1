package config

import (
	"encoding/json"

	"gopkg.in/yaml.v2"
)

func MarshalJSON(config Config) ([]byte, error) {
	return json.MarshalIndent(config, "", "  ")
}

func MarshalYAML(config Config) ([]byte, error) {
	return yaml.Marshal(config)
}
