// Package tagmatch selects the project configuration whose required tag set
// best matches an interval's tags.
package tagmatch

// Best returns the configuration matching the given tags, or false when none
// matches. A configuration whose tag set equals the interval's tags wins
// immediately. Otherwise configurations whose tag set is a strict subset of
// the interval's tags compete on distance (the number of interval tags not
// covered by the configuration) and the first seen wins ties. An empty
// required set is a subset of everything and acts as a least-preferred
// catch-all.
func Best[T any](tags []string, configs []T, tagsOf func(T) []string) (T, bool) {
	tagSet := toSet(tags)

	var chosen T
	found := false
	chosenDistance := 0

	for _, config := range configs {
		configSet := toSet(tagsOf(config))
		if equalSets(configSet, tagSet) {
			return config, true
		}
		if !strictSubset(configSet, tagSet) {
			continue
		}
		distance := len(tagSet) - len(configSet)
		if !found || distance < chosenDistance {
			chosen = config
			chosenDistance = distance
			found = true
		}
	}

	return chosen, found
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

func equalSets(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for key := range a {
		if _, ok := b[key]; !ok {
			return false
		}
	}
	return true
}

func strictSubset(sub, super map[string]struct{}) bool {
	if len(sub) >= len(super) {
		return false
	}
	for key := range sub {
		if _, ok := super[key]; !ok {
			return false
		}
	}
	return true
}
