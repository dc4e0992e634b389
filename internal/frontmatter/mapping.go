package frontmatter

import "strings"

// Mapping is an insertion-ordered string map. Setting an existing key replaces
// its value and keeps its original position.
type Mapping struct {
	keys   []string
	values map[string]string
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]string)}
}

// Set stores v under k.
func (m *Mapping) Set(k, v string) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value stored under k.
func (m *Mapping) Get(k string) (string, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Has reports whether k is present.
func (m *Mapping) Has(k string) bool {
	_, ok := m.values[k]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Map returns a copy of the mapping as a plain map.
func (m *Mapping) Map() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Parse maps a frontmatter block into key/value pairs. It never fails.
//
// A key line does not start with a space and contains a colon; the first colon
// splits key from value. A value of "|" or ">" starts a block scalar: the
// following non-key lines are trimmed and joined with newlines, blank lines
// included, and the whole value is trimmed when the next key line or the end
// of the block is reached. A duplicate key overwrites the earlier value.
func Parse(block string) *Mapping {
	m := NewMapping()

	var (
		key     string
		lines   []string
		inBlock bool
	)

	flush := func() {
		if key != "" && inBlock {
			m.Set(key, strings.TrimSpace(strings.Join(lines, "\n")))
		}
	}

	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			if inBlock {
				lines = append(lines, "")
			}
			continue
		}

		if !strings.HasPrefix(line, " ") && strings.Contains(line, ":") {
			flush()

			k, v, _ := strings.Cut(line, ":")
			k = strings.TrimSpace(k)
			v = strings.TrimSpace(v)

			switch {
			case v == "|" || v == ">":
				inBlock = true
				key = k
				lines = nil
			case v != "":
				m.Set(k, v)
				inBlock = false
				key = ""
			default:
				m.Set(k, "")
				inBlock = false
			}
			continue
		}

		if inBlock && key != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	flush()

	return m
}

// Marshal renders m back into the accepted header language, without
// delimiters. Multi-line values, and values that would otherwise be read as a
// block indicator, are written as "|" block scalars indented by two spaces.
func Marshal(m *Mapping) string {
	var b strings.Builder
	for _, k := range m.keys {
		v := m.values[k]
		switch {
		case strings.Contains(v, "\n") || v == "|" || v == ">":
			b.WriteString(k + ": |\n")
			for _, l := range strings.Split(v, "\n") {
				if l == "" {
					b.WriteString("\n")
					continue
				}
				b.WriteString("  " + l + "\n")
			}
		case v == "":
			b.WriteString(k + ":\n")
		default:
			b.WriteString(k + ": " + v + "\n")
		}
	}
	return b.String()
}
