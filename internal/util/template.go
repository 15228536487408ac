package util

import (
	"sort"
	"strings"
)

// RenderTemplate replaces {var} placeholders in a single pass, so values that
// themselves contain {var} text are left alone.
func RenderTemplate(body string, vars map[string]string) string {
	if len(vars) == 0 {
		return body
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(body)
}
