package category

import (
	categoryEntity "storefront.GO/model/entity/category"
)

// EffectiveSchema merges the definitions along a root-first path. When a
// name repeats, the deepest definition wins but stays in the position where
// the name first appeared.
func EffectiveSchema(path []categoryEntity.Category) []categoryEntity.AttributeDefinition {
	slot := make(map[string]int)
	var out []categoryEntity.AttributeDefinition
	for i := range path {
		for _, def := range path[i].Definitions() {
			if idx, ok := slot[def.Name]; ok {
				out[idx] = def
				continue
			}
			slot[def.Name] = len(out)
			out = append(out, def)
		}
	}
	if out == nil {
		out = []categoryEntity.AttributeDefinition{}
	}
	return out
}
