package variable

import "strconv"

// Scope holds the capture groups visible during resolution: the groups of
// the match currently being replaced, and lettered stores such as M and T
// filled by trigger matching. Scopes nest; lookups fall back to the
// enclosing scope.
type Scope struct {
	parent *Scope
	groups []string
	stores map[byte][]string
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// SetStore binds groups to a capital letter, so that M1 resolves to
// groups[1] of store M.
func (s *Scope) SetStore(letter byte, groups []string) {
	if s.stores == nil {
		s.stores = make(map[byte][]string)
	}
	s.stores[letter] = groups
}

// withGroups returns a child scope for one regex match.
func (s *Scope) withGroups(groups []string) *Scope {
	return &Scope{parent: s, groups: groups}
}

// group returns capture group i of the innermost match, or "".
func (s *Scope) group(i int) string {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.groups != nil {
			return index(sc.groups, i)
		}
	}
	return ""
}

// store returns group i of the lettered store, or "".
func (s *Scope) store(letter byte, i int) string {
	for sc := s; sc != nil; sc = sc.parent {
		if groups, ok := sc.stores[letter]; ok {
			return index(groups, i)
		}
	}
	return ""
}

func index(groups []string, i int) string {
	if i < 0 || i >= len(groups) {
		return ""
	}
	return groups[i]
}

// groupRef parses a numeric capture reference.
func groupRef(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(name)
	return n, err == nil
}

// storeRef parses a lettered store reference such as M1.
func storeRef(name string) (byte, int, bool) {
	if len(name) < 2 || name[0] < 'A' || name[0] > 'Z' {
		return 0, 0, false
	}
	n, ok := groupRef(name[1:])
	return name[0], n, ok
}
