package pipeline

import (
	"fmt"
	"regexp"
	"sort"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z]+)\}`)

// renderTemplate substitutes {key} placeholders in text. Every
// placeholder must name an entry in values, and every value must be
// used by the template; either violation means the template and the
// pipeline disagree about their contract, so rendering fails instead
// of shipping a half-filled file.
func renderTemplate(text string, values map[string]string) (string, error) {
	used := make(map[string]bool, len(values))
	unknown := ""
	out := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := values[key]
		if !ok {
			if unknown == "" {
				unknown = key
			}
			return match
		}
		used[key] = true
		return value
	})
	if unknown != "" {
		return "", fmt.Errorf("template references unrecognized key %q", unknown)
	}
	var missing []string
	for key := range values {
		if !used[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("template never uses required key %q", missing[0])
	}
	return out, nil
}
