package duration

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProbationTable maps employment contract types to probation length in days.
type ProbationTable struct {
	DefaultDays int            `yaml:"default_days"`
	Contracts   map[string]int `yaml:"contracts"`
}

func ParseProbationTable(data []byte) (ProbationTable, error) {
	var t ProbationTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return ProbationTable{}, fmt.Errorf("parse probation table: %w", err)
	}
	if t.DefaultDays < 0 {
		return ProbationTable{}, fmt.Errorf("probation table: default_days must not be negative")
	}

	normalized := make(map[string]int, len(t.Contracts))
	for k, v := range t.Contracts {
		if v < 0 {
			return ProbationTable{}, fmt.Errorf("probation table: %s has negative days", k)
		}
		normalized[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	t.Contracts = normalized
	return t, nil
}

func LoadProbationTable(path string) (ProbationTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProbationTable{}, fmt.Errorf("read probation table: %w", err)
	}
	return ParseProbationTable(data)
}

// DaysFor falls back to DefaultDays for unknown contract types.
func (t ProbationTable) DaysFor(contractType string) int {
	if d, ok := t.Contracts[strings.ToUpper(strings.TrimSpace(contractType))]; ok {
		return d
	}
	return t.DefaultDays
}
