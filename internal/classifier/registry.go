package classifier

import (
	"fmt"
	"sort"
)

// Registry resolves the user's model choice to a loaded classifier.
type Registry struct {
	byVariant map[string]Classifier
}

func NewRegistry(classifiers ...Classifier) *Registry {
	byVariant := make(map[string]Classifier, len(classifiers))
	for _, c := range classifiers {
		byVariant[c.Variant()] = c
	}
	return &Registry{byVariant: byVariant}
}

func (r *Registry) Get(variant string) (Classifier, error) {
	c, ok := r.byVariant[variant]
	if !ok {
		return nil, fmt.Errorf("unknown model variant %q", variant)
	}
	return c, nil
}

func (r *Registry) Variants() []string {
	variants := make([]string, 0, len(r.byVariant))
	for v := range r.byVariant {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	return variants
}
