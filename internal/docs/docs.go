package docs

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topic is one embedded help page.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Topics lists the embedded pages sorted by name. Title is the page's first heading.
func Topics() []Topic {
	entries, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return []Topic{}
	}
	out := make([]Topic, 0, len(entries))
	for _, p := range entries {
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if name == "" {
			continue
		}
		body, _ := Get(name)
		out = append(out, Topic{Name: name, Title: firstHeading(body, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the markdown of a topic. Lookup is case-insensitive.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" || strings.ContainsAny(topic, `/\`) {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", topic+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func firstHeading(md, fallback string) string {
	for _, ln := range strings.Split(md, "\n") {
		if t, ok := strings.CutPrefix(strings.TrimSpace(ln), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return fallback
}
