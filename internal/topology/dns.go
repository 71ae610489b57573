package topology

// NameSource identifies the mechanism through which a container
// publishes a DNS name into a network.
type NameSource string

const (
	SourceContainerName NameSource = "container name"
	SourceServiceName   NameSource = "service name"
	SourceAlias         NameSource = "alias"
)

// NameEntry is one DNS name Docker's embedded resolver answers for a
// container on a network, tagged with where the name came from.
type NameEntry struct {
	Name          string     `json:"name"`
	Source        NameSource `json:"source"`
	ContainerName string     `json:"container_name"`
}

// ResolveNames returns every DNS name that resolves to the node on its
// network, in precedence order: container name (always first), compose
// service name, then explicit aliases in declared order. Names already
// emitted for the node are skipped. The result depends only on the
// node's fields.
func ResolveNames(node *Node) []NameEntry {
	entries := []NameEntry{{
		Name:          node.ContainerName,
		Source:        SourceContainerName,
		ContainerName: node.ContainerName,
	}}
	seen := map[string]struct{}{node.ContainerName: {}}

	if node.ServiceName != "" {
		if _, ok := seen[node.ServiceName]; !ok {
			entries = append(entries, NameEntry{
				Name:          node.ServiceName,
				Source:        SourceServiceName,
				ContainerName: node.ContainerName,
			})
			seen[node.ServiceName] = struct{}{}
		}
	}

	for _, alias := range node.Aliases {
		if _, ok := seen[alias]; ok {
			continue
		}
		entries = append(entries, NameEntry{
			Name:          alias,
			Source:        SourceAlias,
			ContainerName: node.ContainerName,
		})
		seen[alias] = struct{}{}
	}

	return entries
}
