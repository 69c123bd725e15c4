package main

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

func writeJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func writeYAML(w io.Writer, payload any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(payload); err != nil {
		return err
	}
	return encoder.Close()
}

func writeStructured(w io.Writer, jsonOutput bool, payload any) error {
	if jsonOutput {
		return writeJSON(w, payload)
	}
	return writeYAML(w, payload)
}

func sortedKeys(values map[string]string) []string {
	keys := lo.Keys(values)
	sort.Strings(keys)
	return keys
}
