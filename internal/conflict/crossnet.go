package conflict

import (
	"sort"

	"netwarden/internal/topology"
)

// MultiHomed describes a container reachable under the same name on
// more than one network. Informational only: name reuse across
// isolated networks is not inherently wrong, but matters if those
// networks are later connected.
type MultiHomed struct {
	Container string   `json:"container"`
	Networks  []string `json:"networks"`
}

// CrossNetwork returns every container attached to two or more
// networks, with its network list sorted. Results are ordered by
// container name for stable output.
func CrossNetwork(topo *topology.Topology) []MultiHomed {
	var result []MultiHomed

	for _, name := range topo.ContainerNames() {
		networks := topo.NetworksFor(name)
		if len(networks) < 2 {
			continue
		}
		sort.Strings(networks)
		result = append(result, MultiHomed{Container: name, Networks: networks})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Container < result[j].Container
	})

	return result
}
