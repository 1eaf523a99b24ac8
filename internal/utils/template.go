package utils

import "strings"

// RenderTemplate substitutes {key} placeholders with the provided
// values. Unknown placeholders are left in place so a typo in a
// template is visible rather than silently blanked.
func RenderTemplate(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}
