package common

import "sort"

// ParamSets expands a map of value lists into every key=>value combination.
//
// Keys are combined in lexicographic order with the first key varying
// slowest, and values in the order given. A key with no values contributes
// the empty string.
func ParamSets(grid map[string][]string) []map[string]string {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return expandParamSets(grid, keys, map[string]string{})
}

func expandParamSets(grid map[string][]string, keys []string, set map[string]string) []map[string]string {
	if len(keys) == 0 {
		if len(set) == 0 {
			return nil
		}
		cloned := make(map[string]string, len(set))
		for k, v := range set {
			cloned[k] = v
		}
		return []map[string]string{cloned}
	}

	values := grid[keys[0]]
	if len(values) == 0 {
		values = []string{""}
	}

	var sets []map[string]string
	for _, v := range values {
		set[keys[0]] = v
		sets = append(sets, expandParamSets(grid, keys[1:], set)...)
	}
	return sets
}
