package conflict

import (
	"fmt"
	"strings"

	"netwarden/internal/topology"
)

// NameClaim records how one container contributed a contested DNS name.
type NameClaim struct {
	Container string              `json:"container"`
	Source    topology.NameSource `json:"source"`
}

// Conflict is one finding: a single DNS name contested on a single
// network. Findings are created once per analysis run and never mutated.
type Conflict struct {
	Network          string           `json:"network"`
	DNSName          string           `json:"dns_name"`
	Severity         Severity         `json:"severity"`
	Containers       []*topology.Node `json:"containers"`
	Description      string           `json:"description"`
	Remediation      []string         `json:"remediation"`
	ConflictingNames []NameClaim      `json:"conflicting_names"`
}

// ContainerNames returns the display names of the involved containers.
func (c *Conflict) ContainerNames() []string {
	names := make([]string, len(c.Containers))
	for i, node := range c.Containers {
		names[i] = node.ContainerName
	}
	return names
}

// Report is the detector's complete output for one topology snapshot.
type Report struct {
	Conflicts       []*Conflict `json:"conflicts"`
	TotalNetworks   int         `json:"total_networks"`
	TotalContainers int         `json:"total_containers"`
}

// CriticalCount returns the number of critical findings.
func (r *Report) CriticalCount() int { return r.countSeverity(SeverityCritical) }

// HighCount returns the number of high findings.
func (r *Report) HighCount() int { return r.countSeverity(SeverityHigh) }

// WarningCount returns the number of warning findings.
func (r *Report) WarningCount() int { return r.countSeverity(SeverityWarning) }

// HasConflicts reports whether any finding was produced.
func (r *Report) HasConflicts() bool { return len(r.Conflicts) > 0 }

func (r *Report) countSeverity(s Severity) int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Severity == s {
			n++
		}
	}
	return n
}

// Config controls detector behavior.
type Config struct {
	// WarnGenericNames enables warnings for generic service names
	// (db, redis, ...) on shared networks.
	WarnGenericNames bool
}

// DefaultConfig returns the default detector configuration.
func DefaultConfig() Config {
	return Config{WarnGenericNames: true}
}

// Detector finds DNS naming conflicts in a topology snapshot. It holds
// no state between calls; Analyze is safe to invoke concurrently.
type Detector struct {
	warnGeneric bool
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	return &Detector{warnGeneric: cfg.WarnGenericNames}
}

// Analyze inspects every network in the topology independently and
// returns the combined report. It is total over any well-formed
// topology; an empty snapshot yields an empty report.
func (d *Detector) Analyze(topo *topology.Topology) *Report {
	var conflicts []*Conflict

	containerIDs := make(map[string]struct{})

	for _, network := range topo.NetworkNames() {
		nodes := dedupeByID(topo.Nodes(network))
		for _, node := range nodes {
			containerIDs[node.ContainerID] = struct{}{}
		}
		conflicts = append(conflicts, d.checkNetwork(network, nodes)...)
	}

	return &Report{
		Conflicts:       conflicts,
		TotalNetworks:   topo.NetworkCount(),
		TotalContainers: len(containerIDs),
	}
}

// claim pairs a node with one of its resolved name entries.
type claim struct {
	node  *topology.Node
	entry topology.NameEntry
}

func (d *Detector) checkNetwork(network string, nodes []*topology.Node) []*Conflict {
	var conflicts []*Conflict

	claimsByName := make(map[string][]claim)
	var nameOrder []string

	for _, node := range nodes {
		for _, entry := range topology.ResolveNames(node) {
			if _, ok := claimsByName[entry.Name]; !ok {
				nameOrder = append(nameOrder, entry.Name)
			}
			claimsByName[entry.Name] = append(claimsByName[entry.Name], claim{node: node, entry: entry})
		}
	}

	flagged := make(map[string]struct{})

	for _, name := range nameOrder {
		claims := claimsByName[name]
		if len(claims) < 2 {
			continue
		}
		ids := make(map[string]struct{})
		for _, cl := range claims {
			ids[cl.node.ContainerID] = struct{}{}
		}
		// A container listing the same alias twice must not collide
		// with itself.
		if len(ids) < 2 {
			continue
		}
		conflicts = append(conflicts, d.duplicateConflict(network, name, claims))
		flagged[name] = struct{}{}
	}

	// Generic names only matter when the network is actually shared.
	if d.warnGeneric && len(nodes) > 1 {
		for _, node := range nodes {
			for _, entry := range topology.ResolveNames(node) {
				if !IsGenericName(entry.Name) {
					continue
				}
				if _, ok := flagged[entry.Name]; ok {
					continue
				}
				conflicts = append(conflicts, d.genericWarning(network, node, entry))
				flagged[entry.Name] = struct{}{}
			}
		}
	}

	return conflicts
}

func (d *Detector) duplicateConflict(network, dnsName string, claims []claim) *Conflict {
	var unique []*topology.Node
	var names []NameClaim
	seen := make(map[string]struct{})

	for _, cl := range claims {
		if _, ok := seen[cl.node.ContainerID]; ok {
			continue
		}
		seen[cl.node.ContainerID] = struct{}{}
		unique = append(unique, cl.node)
		names = append(names, NameClaim{Container: cl.node.ContainerName, Source: cl.entry.Source})
	}

	// The collision is unrecoverable when every container's real name
	// is the contested name itself; via service names or aliases at
	// least one container keeps a unique real name.
	severity := SeverityCritical
	for _, node := range unique {
		if node.ContainerName != dnsName {
			severity = SeverityHigh
			break
		}
	}

	parts := make([]string, len(names))
	for i, nc := range names {
		parts[i] = fmt.Sprintf("%s (%s)", nc.Container, nc.Source)
	}
	description := fmt.Sprintf(
		"DNS name '%s' resolves to multiple containers on network '%s': %s",
		dnsName, network, strings.Join(parts, ", "))

	return &Conflict{
		Network:          network,
		DNSName:          dnsName,
		Severity:         severity,
		Containers:       unique,
		Description:      description,
		Remediation:      duplicateRemediation(network, dnsName, unique, names),
		ConflictingNames: names,
	}
}

func (d *Detector) genericWarning(network string, node *topology.Node, entry topology.NameEntry) *Conflict {
	description := fmt.Sprintf(
		"Container '%s' uses generic DNS name '%s' (%s) on shared network '%s'. "+
			"This may cause confusion if another stack with the same service name joins this network.",
		node.ContainerName, entry.Name, entry.Source, network)

	return &Conflict{
		Network:          network,
		DNSName:          entry.Name,
		Severity:         SeverityWarning,
		Containers:       []*topology.Node{node},
		Description:      description,
		Remediation:      genericRemediation(network, node, entry),
		ConflictingNames: []NameClaim{{Container: node.ContainerName, Source: entry.Source}},
	}
}

// dedupeByID collapses duplicate raw scan entries for the same
// container on the same network, keeping first-seen order.
func dedupeByID(nodes []*topology.Node) []*topology.Node {
	seen := make(map[string]struct{}, len(nodes))
	out := make([]*topology.Node, 0, len(nodes))
	for _, node := range nodes {
		if _, ok := seen[node.ContainerID]; ok {
			continue
		}
		seen[node.ContainerID] = struct{}{}
		out = append(out, node)
	}
	return out
}
