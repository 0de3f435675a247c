package token

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// paramsFile is the on-disk YAML shape of a parameter set.
type paramsFile struct {
	Decimals    int    `yaml:"decimals"`
	Symbol      string `yaml:"symbol"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Frozen      bool   `yaml:"frozen"`
	Environment string `yaml:"environment"`
}

// LoadParamsFile reads a YAML parameter file. The result is canonicalized
// but not validated.
func LoadParamsFile(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("read params file: %w", err)
	}
	return ParseParamsYAML(data)
}

// ParseParamsYAML decodes a YAML parameter document.
func ParseParamsYAML(data []byte) (Params, error) {
	var f paramsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Params{}, fmt.Errorf("decode params: %w", err)
	}
	if f.Decimals < 0 || f.Decimals > 255 {
		return Params{}, &ValidationError{Field: "decimals",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinDecimals, MaxDecimals, f.Decimals)}
	}
	p := Params{
		Decimals:    uint8(f.Decimals),
		Symbol:      f.Symbol,
		Name:        f.Name,
		Description: f.Description,
		IsFrozen:    f.Frozen,
		Environment: Environment(f.Environment),
	}
	return p.Canonicalize(), nil
}

// MarshalYAML encodes p in the parameter file format.
func MarshalYAML(p Params) ([]byte, error) {
	return yaml.Marshal(paramsFile{
		Decimals:    int(p.Decimals),
		Symbol:      p.Symbol,
		Name:        p.Name,
		Description: p.Description,
		Frozen:      p.IsFrozen,
		Environment: string(ParseEnvironment(string(p.Environment))),
	})
}
