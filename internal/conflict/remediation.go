package conflict

import (
	"fmt"

	"netwarden/internal/topology"
)

// fallbackPrefix is suggested when the container carries no compose
// project label.
const fallbackPrefix = "myapp"

// duplicateRemediation builds the ordered action list for a duplicate
// name finding, driven by which provenances contributed the name and
// whether the colliding containers span multiple compose projects.
func duplicateRemediation(network, dnsName string, nodes []*topology.Node, claims []NameClaim) []string {
	var actions []string

	hasSource := make(map[topology.NameSource]bool)
	for _, nc := range claims {
		hasSource[nc.Source] = true
	}

	if hasSource[topology.SourceServiceName] {
		actions = append(actions, fmt.Sprintf(
			"Rename the '%s' service key in one of the compose files to a unique name "+
				"(e.g. '%s' -> '%s-%s').", dnsName, dnsName, suggestPrefix(nodes), dnsName))
	}

	if hasSource[topology.SourceAlias] {
		actions = append(actions, fmt.Sprintf(
			"Remove or rename the explicit network alias '%s' so only one container "+
				"answers for it on '%s'.", dnsName, network))
	}

	if hasSource[topology.SourceContainerName] {
		actions = append(actions, fmt.Sprintf(
			"Set an explicit, unique container_name for one of the containers currently "+
				"named '%s'.", dnsName))
	}

	if projects := distinctProjects(nodes); len(projects) > 1 {
		actions = append(actions, fmt.Sprintf(
			"Move each stack to its own isolated network instead of sharing '%s'. "+
				"Only connect the services that need shared access.", network))
	}

	if IsGenericName(dnsName) {
		actions = append(actions, fmt.Sprintf(
			"Use stack-prefixed names for common services (e.g. 'immich-%s', 'seafile-%s' "+
				"instead of just '%s').", dnsName, dnsName, dnsName))
	}

	return actions
}

// genericRemediation builds the action list for a generic-name warning,
// phrased for the provenance that produced the name.
func genericRemediation(network string, node *topology.Node, entry topology.NameEntry) []string {
	prefix := node.ComposeProject
	if prefix == "" {
		prefix = fallbackPrefix
	}
	suggested := fmt.Sprintf("%s-%s", prefix, entry.Name)

	var rename string
	switch entry.Source {
	case topology.SourceServiceName:
		rename = fmt.Sprintf(
			"Rename the '%s' service to include a project prefix (e.g. '%s').",
			entry.Name, suggested)
	case topology.SourceAlias:
		rename = fmt.Sprintf(
			"Rename the network alias '%s' to include a project prefix (e.g. '%s').",
			entry.Name, suggested)
	default:
		rename = fmt.Sprintf(
			"Rename the container to include a project prefix (e.g. '%s').", suggested)
	}

	return []string{
		rename,
		fmt.Sprintf(
			"Keep '%s' on an isolated network and only expose the application container "+
				"to '%s'.", node.ContainerName, network),
	}
}

// distinctProjects returns the compose projects represented among the
// nodes; containers without a project label are excluded.
func distinctProjects(nodes []*topology.Node) map[string]struct{} {
	projects := make(map[string]struct{})
	for _, node := range nodes {
		if node.ComposeProject != "" {
			projects[node.ComposeProject] = struct{}{}
		}
	}
	return projects
}

// suggestPrefix picks a rename prefix from the first node that has a
// compose project, falling back to a fixed token.
func suggestPrefix(nodes []*topology.Node) string {
	for _, node := range nodes {
		if node.ComposeProject != "" {
			return node.ComposeProject
		}
	}
	return fallbackPrefix
}
