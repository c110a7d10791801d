package league

import (
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Roster is the list of known wrestler names used to clean up names typed in
// during a live event.
type Roster struct {
	names []string
}

func NewRoster(names []string) *Roster {
	return &Roster{names: slices.Clone(names)}
}

// Resolve returns the roster spelling of a name that matches a known wrestler
// case-insensitively. Any other name is returned as typed with known false.
func (r *Roster) Resolve(name string) (resolved string, known bool) {
	name = strings.TrimSpace(name)
	if name == "" || r == nil {
		return name, false
	}
	for _, n := range r.names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return name, false
}

// Search returns roster names matching q, closest first. An empty query
// returns the whole roster alphabetically.
func (r *Roster) Search(q string) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		all := slices.Clone(r.names)
		slices.Sort(all)
		return all
	}
	ranks := fuzzy.RankFindNormalizedFold(q, r.names)
	sort.Sort(ranks)
	results := make([]string, 0, len(ranks))
	for _, rank := range ranks {
		results = append(results, rank.Target)
	}
	return results
}
