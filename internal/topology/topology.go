// Package topology models which containers are attached to which Docker
// networks, and the DNS names each container publishes into them.
package topology

// Node is one container's attachment to one network. A container joined
// to three networks produces three nodes. Nodes are not mutated after
// construction.
type Node struct {
	ContainerID    string   `json:"container_id"`
	ContainerName  string   `json:"container_name"`
	ShortID        string   `json:"short_id"`
	IPAddress      string   `json:"ip_address"`
	Aliases        []string `json:"aliases,omitempty"`
	ServiceName    string   `json:"service_name,omitempty"`
	ComposeProject string   `json:"compose_project,omitempty"`
}

// Topology is a snapshot of the Docker network landscape: every
// user-visible network and the containers attached to it.
type Topology struct {
	networks   map[string][]*Node
	order      []string
	containers map[string]map[string]struct{}
}

// New returns an empty topology.
func New() *Topology {
	return &Topology{
		networks:   make(map[string][]*Node),
		containers: make(map[string]map[string]struct{}),
	}
}

// AddContainer records a container's attachment to a network.
func (t *Topology) AddContainer(network string, node *Node) {
	if _, ok := t.networks[network]; !ok {
		t.order = append(t.order, network)
	}
	t.networks[network] = append(t.networks[network], node)

	if _, ok := t.containers[node.ContainerName]; !ok {
		t.containers[node.ContainerName] = make(map[string]struct{})
	}
	t.containers[node.ContainerName][network] = struct{}{}
}

// NetworkNames returns network names in discovery order.
func (t *Topology) NetworkNames() []string {
	return t.order
}

// Nodes returns the containers attached to a network, in discovery order.
func (t *Topology) Nodes(network string) []*Node {
	return t.networks[network]
}

// NetworkCount returns the number of distinct networks in the snapshot.
func (t *Topology) NetworkCount() int {
	return len(t.networks)
}

// NetworksFor returns the set of networks a container is attached to.
func (t *Topology) NetworksFor(containerName string) []string {
	set, ok := t.containers[containerName]
	if !ok {
		return nil
	}
	networks := make([]string, 0, len(set))
	for name := range set {
		networks = append(networks, name)
	}
	return networks
}

// ContainerNames returns the names of all containers in the snapshot.
func (t *Topology) ContainerNames() []string {
	names := make([]string, 0, len(t.containers))
	for name := range t.containers {
		names = append(names, name)
	}
	return names
}

// IsEmpty reports whether the snapshot contains no networks.
func (t *Topology) IsEmpty() bool {
	return len(t.networks) == 0
}
