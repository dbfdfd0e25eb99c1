package apply

import (
	"fmt"
	"slices"
	"strings"
)

const recommendationsKey = "recommendations"

// mergeRecommendations unions the existing recommendations in doc with ids and
// stores the sorted, de-duplicated list back into doc. Other keys are left
// untouched.
func mergeRecommendations(doc map[string]any, ids []string) ([]string, error) {
	var merged []string

	switch existing := doc[recommendationsKey].(type) {
	case nil:
	case []any:
		for i, v := range existing {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("recommendations[%d] is not a string", i)
			}
			merged = append(merged, s)
		}
	default:
		return nil, fmt.Errorf("recommendations is %T, want a list", existing)
	}

	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			merged = append(merged, id)
		}
	}

	slices.Sort(merged)
	merged = slices.Compact(merged)
	if merged == nil {
		merged = []string{}
	}

	doc[recommendationsKey] = merged
	return merged, nil
}
