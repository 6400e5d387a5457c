package models

// likes, followers and following are stored as arrays but carry set semantics.

// ContainsID reports whether id is in ids
func ContainsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AddID returns ids with id added if absent. The input is not modified.
func AddID(ids []string, id string) []string {
	if ContainsID(ids, id) {
		return ids
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}

// RemoveID returns ids with every occurrence of id removed. The input is not modified.
func RemoveID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// IDSet builds a lookup set from ids
func IDSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		set[v] = struct{}{}
	}
	return set
}
