package layers

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesFile embed.FS

// packageRule assigns a layer when a package segment starts with one of
// the keywords.
type packageRule struct {
	Layer    string   `yaml:"layer"`
	Keywords []string `yaml:"keywords"`
}

// classRule assigns a layer when the class name carries one of the
// suffixes.
type classRule struct {
	Layer    string   `yaml:"layer"`
	Suffixes []string `yaml:"suffixes"`
}

type ruleFile struct {
	PackageRules []packageRule `yaml:"package_rules"`
	ClassRules   []classRule   `yaml:"class_rules"`
}

// ruleTable holds the parsed inference rules in evaluation order.
type ruleTable struct {
	packageRules []struct {
		layer    LayerType
		keywords []string
	}
	classRules []struct {
		layer    LayerType
		suffixes []string
	}
}

// loadRules parses the embedded rule file.
func loadRules() (*ruleTable, error) {
	raw, err := rulesFile.ReadFile("rules.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded rules: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing layer rules: %w", err)
	}

	table := &ruleTable{}
	for _, rule := range file.PackageRules {
		layer, ok := ParseLayerType(rule.Layer)
		if !ok {
			return nil, fmt.Errorf("package rule references unknown layer %q", rule.Layer)
		}
		table.packageRules = append(table.packageRules, struct {
			layer    LayerType
			keywords []string
		}{layer, rule.Keywords})
	}
	for _, rule := range file.ClassRules {
		layer, ok := ParseLayerType(rule.Layer)
		if !ok {
			return nil, fmt.Errorf("class rule references unknown layer %q", rule.Layer)
		}
		table.classRules = append(table.classRules, struct {
			layer    LayerType
			suffixes []string
		}{layer, rule.Suffixes})
	}
	return table, nil
}

// defaultRules is parsed once at startup; the rule file ships with the
// binary, so a parse failure is a build defect.
var defaultRules = func() *ruleTable {
	table, err := loadRules()
	if err != nil {
		panic(err)
	}
	return table
}()
