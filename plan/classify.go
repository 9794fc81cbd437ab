package plan

import (
	"slices"
	"strings"
)

// Category is the semantic class of a plan level.
type Category string

const (
	Exterior   Category = "exterior"
	Interior   Category = "interior"
	Roof       Category = "roof"
	Foundation Category = "foundation"
	Tree       Category = "tree"
	Bush       Category = "bush"
	None       Category = "none"
)

// Exported reports whether walls on levels of the category are exported.
func (c Category) Exported() bool {
	switch c {
	case Exterior, Interior, Foundation:
		return true
	}
	return false
}

// Classifier maps a level name to a category.
type Classifier interface {
	Classify(level string) Category
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(level string) Category

func (f ClassifierFunc) Classify(level string) Category { return f(level) }

// KeywordRule assigns Category to level names containing any keyword.
type KeywordRule struct {
	Category Category `json:"category" yaml:"category" toml:"category" mapstructure:"category"`
	Keywords []string `json:"keywords" yaml:"keywords" toml:"keywords" mapstructure:"keywords"`
}

// KeywordClassifier matches lower-cased level names against keyword rules
// in order. Unnamed levels get Unnamed; unmatched names get Default.
type KeywordClassifier struct {
	Rules   []KeywordRule
	Unnamed Category
	Default Category
}

// DefaultClassifier recognises English and French level names.
func DefaultClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		Rules: []KeywordRule{
			{Category: Roof, Keywords: []string{"roof", "toit", "toiture", "attic", "comble"}},
			{Category: Foundation, Keywords: []string{"foundation", "fondation", "basement", "sous-sol", "cellar", "cave"}},
			{Category: Tree, Keywords: []string{"tree", "arbre"}},
			{Category: Bush, Keywords: []string{"bush", "shrub", "buisson", "haie", "hedge"}},
			{Category: Interior, Keywords: []string{"interior", "intérieur", "interieur", "partition", "cloison"}},
			{Category: Exterior, Keywords: []string{"exterior", "extérieur", "exterieur", "outer", "facade", "façade"}},
			{Category: None, Keywords: []string{"ignore", "hidden", "none"}},
		},
		Unnamed: Exterior,
		Default: Exterior,
	}
}

func (k *KeywordClassifier) Classify(level string) Category {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "" {
		return k.Unnamed
	}
	for _, r := range k.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(name, strings.ToLower(kw)) {
				return r.Category
			}
		}
	}
	return k.Default
}

// ExportedWalls returns the walls whose level category is exported, in
// plan order. Levels are classified only when the plan declares some; a
// plan without declared levels exports every wall. A nil classifier
// selects DefaultClassifier.
func ExportedWalls(p *Plan, c Classifier) []Wall {
	if p == nil {
		return nil
	}
	if len(p.Levels) == 0 {
		return slices.Clone(p.Walls)
	}
	if c == nil {
		c = DefaultClassifier()
	}
	out := make([]Wall, 0, len(p.Walls))
	for _, w := range p.Walls {
		if c.Classify(w.Level).Exported() {
			out = append(out, w)
		}
	}
	return out
}
