package rule

import (
	"strings"
)

// Format substitutes %{name} placeholders from vars. Unknown placeholders
// are left as written.
func Format(tmpl string, vars map[string]string) string {
	if !strings.Contains(tmpl, "%{") {
		return tmpl
	}
	var sb strings.Builder
	sb.Grow(len(tmpl))
	rest := tmpl
	for {
		i := strings.Index(rest, "%{")
		if i < 0 {
			sb.WriteString(rest)
			return sb.String()
		}
		j := strings.IndexByte(rest[i:], '}')
		if j < 0 {
			sb.WriteString(rest)
			return sb.String()
		}
		name := rest[i+2 : i+j]
		sb.WriteString(rest[:i])
		if v, ok := vars[name]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(rest[i : i+j+1])
		}
		rest = rest[i+j+1:]
	}
}
