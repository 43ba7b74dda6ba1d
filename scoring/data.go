package scoring

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type compoundLexicon struct {
	Valences map[string]float64 `yaml:"valences"`
	Boosters map[string]float64 `yaml:"boosters"`
	Negators []string           `yaml:"negators"`
}

type patternEntry struct {
	Polarity     float64 `yaml:"polarity"`
	Subjectivity float64 `yaml:"subjectivity"`
}

type patternLexicon struct {
	Entries  map[string]patternEntry `yaml:"entries"`
	Negators []string                `yaml:"negators"`
}

type emotionLexicon struct {
	Terms map[string][]string `yaml:"terms"`
}

type toxicityLexicon struct {
	Terms []string `yaml:"terms"`
}

func loadLexicon(name string, out any) error {
	b, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return fmt.Errorf("read lexicon %s: %w", name, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode lexicon %s: %w", name, err)
	}
	return nil
}
