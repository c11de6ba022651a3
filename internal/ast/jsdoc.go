package ast

import "strings"

// JSDoc is a parsed `/** ... */` block.
type JSDoc struct {
	Description string
	Tags        []*JSDocTag
}

// JSDocTag is one `@name text` entry. Text keeps interior newlines.
type JSDocTag struct {
	Name string
	Text string
}

// Tag returns the first tag with the given name, or nil.
func (d *JSDoc) Tag(name string) *JSDocTag {
	if d == nil {
		return nil
	}
	for _, t := range d.Tags {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// HasTag reports whether any of the names is present.
func (d *JSDoc) HasTag(names ...string) bool {
	for _, n := range names {
		if d.Tag(n) != nil {
			return true
		}
	}
	return false
}

// TagsNamed returns every tag with the given name.
func (d *JSDoc) TagsNamed(name string) []*JSDocTag {
	if d == nil {
		return nil
	}
	var out []*JSDocTag
	for _, t := range d.Tags {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// ParseJSDoc parses the raw text of a block comment. It returns nil when the
// comment is not a JSDoc block.
func ParseJSDoc(raw string) *JSDoc {
	if !strings.HasPrefix(raw, "/**") || raw == "/**/" {
		return nil
	}
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")

	doc := &JSDoc{}
	var desc []string
	var cur *JSDocTag
	var curText []string
	flush := func() {
		if cur != nil {
			cur.Text = strings.TrimSpace(strings.Join(curText, "\n"))
			doc.Tags = append(doc.Tags, cur)
		}
		cur, curText = nil, nil
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		line = strings.TrimPrefix(line, "*")
		if strings.HasPrefix(line, " ") {
			line = line[1:]
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			flush()
			name, text, _ := strings.Cut(trimmed[1:], " ")
			if i := strings.IndexByte(name, '\t'); i >= 0 {
				name, text = name[:i], name[i+1:]+" "+text
			}
			cur = &JSDocTag{Name: name}
			curText = []string{text}
			continue
		}
		if cur != nil {
			curText = append(curText, line)
		} else {
			desc = append(desc, trimmed)
		}
	}
	flush()
	doc.Description = strings.TrimSpace(strings.Join(desc, "\n"))
	return doc
}
