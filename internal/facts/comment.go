package facts

import "strings"

// Tag is one `@name {Type} value` entry of a doc comment.
type Tag struct {
	Name  string
	Type  string
	Value string
}

// Comment is a parsed doc comment.
type Comment struct {
	Text string // description before the first tag
	Tags []Tag
}

// ParseComment parses JSDoc-style comment text. Block markers and leading
// asterisks are stripped; a tag runs until the next line starting with '@'.
// Line comments (`//`) are accepted too.
func ParseComment(raw string) Comment {
	var c Comment
	var desc []string
	var cur *Tag

	for _, line := range commentLines(raw) {
		if strings.HasPrefix(line, "@") {
			if cur != nil {
				c.Tags = append(c.Tags, *cur)
			}
			t := parseTag(line[1:])
			cur = &t
			continue
		}
		if cur != nil {
			if line != "" {
				cur.Value = strings.TrimSpace(cur.Value + " " + line)
			}
			continue
		}
		desc = append(desc, line)
	}
	if cur != nil {
		c.Tags = append(c.Tags, *cur)
	}
	c.Text = strings.TrimSpace(strings.Join(desc, "\n"))
	return c
}

func commentLines(raw string) []string {
	raw = strings.TrimSpace(raw)
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") {
			line = strings.TrimSpace(line[1:])
		}
		out = append(out, line)
	}
	return out
}

func parseTag(s string) Tag {
	name, rest, _ := strings.Cut(s, " ")
	t := Tag{Name: strings.TrimSpace(name)}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "{") {
		if end := strings.Index(rest, "}"); end > 0 {
			t.Type = strings.TrimSpace(rest[1:end])
			rest = strings.TrimSpace(rest[end+1:])
		}
	}
	t.Value = rest
	return t
}

// IsTagged reports whether the comment has a tag with the given name. When
// value is given, the tag's first word must also match it.
func (c Comment) IsTagged(tag string, value ...string) bool {
	for _, t := range c.Tags {
		if t.Name != tag {
			continue
		}
		if len(value) == 0 {
			return true
		}
		first, _, _ := strings.Cut(t.Value, " ")
		if first == value[0] {
			return true
		}
	}
	return false
}

// TagsNamed returns the tags with the given name in occurrence order.
func (c Comment) TagsNamed(tag string) []Tag {
	var out []Tag
	for _, t := range c.Tags {
		if t.Name == tag {
			out = append(out, t)
		}
	}
	return out
}
