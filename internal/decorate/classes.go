package decorate

import "strings"

// ClassSet is the ordered set of tokens in an element's class attribute.
type ClassSet []string

// ParseClassSet splits a class attribute value on whitespace, dropping
// duplicate tokens.
func ParseClassSet(attr string) ClassSet {
	var cs ClassSet
	for _, tok := range strings.Fields(attr) {
		cs = cs.Add(tok)
	}
	return cs
}

// Has reports whether token is in the set.
func (cs ClassSet) Has(token string) bool {
	for _, t := range cs {
		if t == token {
			return true
		}
	}
	return false
}

// Add appends token unless it is already present.
func (cs ClassSet) Add(token string) ClassSet {
	if token == "" || cs.Has(token) {
		return cs
	}
	return append(cs, token)
}

// Remove drops every occurrence of token.
func (cs ClassSet) Remove(token string) ClassSet {
	out := cs[:0:0]
	for _, t := range cs {
		if t != token {
			out = append(out, t)
		}
	}
	return out
}

func (cs ClassSet) String() string {
	return strings.Join(cs, " ")
}
