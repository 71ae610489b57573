// Package render draws topology trees and conflict reports for the
// terminal.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"netwarden/internal/conflict"
	"netwarden/internal/topology"
)

var (
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	highStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	networkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	headerStyle   = lipgloss.NewStyle().Bold(true)
)

// Renderer writes human-readable output to w.
type Renderer struct {
	w io.Writer
}

// New creates a renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func severityStyle(s conflict.Severity) lipgloss.Style {
	switch s {
	case conflict.SeverityCritical:
		return criticalStyle
	case conflict.SeverityHigh:
		return highStyle
	default:
		return warningStyle
	}
}

func severityMarker(s conflict.Severity) string {
	switch s {
	case conflict.SeverityCritical:
		return criticalStyle.Render("CRITICAL")
	case conflict.SeverityHigh:
		return highStyle.Render("CONFLICT")
	default:
		return warningStyle.Render("warning")
	}
}

// Topology renders the network topology as a tree, marking containers
// involved in findings.
func (r *Renderer) Topology(topo *topology.Topology, report *conflict.Report) {
	lookup := conflictLookup(report)

	fmt.Fprintln(r.w, headerStyle.Render("Docker Networks"))

	networks := append([]string(nil), topo.NetworkNames()...)
	sort.Strings(networks)

	for ni, network := range networks {
		lastNetwork := ni == len(networks)-1
		fmt.Fprintf(r.w, "%s%s\n", branch(lastNetwork), networkStyle.Render(network))

		nodes := append([]*topology.Node(nil), topo.Nodes(network)...)
		sort.Slice(nodes, func(i, j int) bool {
			return nodes[i].ContainerName < nodes[j].ContainerName
		})

		for ci, node := range nodes {
			lastNode := ci == len(nodes)-1
			r.containerLine(network, node, lastNetwork, lastNode, lookup)
		}
	}
}

func (r *Renderer) containerLine(network string, node *topology.Node, lastNetwork, lastNode bool, lookup map[[2]string]*conflict.Conflict) {
	parts := []string{nameStyle.Render(node.ContainerName)}
	if node.IPAddress != "" {
		parts = append(parts, dimStyle.Render("("+node.IPAddress+")"))
	}

	var markers []string
	for _, entry := range topology.ResolveNames(node) {
		if c, ok := lookup[[2]string{network, entry.Name}]; ok {
			marker := severityMarker(c.Severity)
			if !containsString(markers, marker) {
				markers = append(markers, marker)
			}
		}
	}
	parts = append(parts, markers...)

	indent := prefix(lastNetwork)
	fmt.Fprintf(r.w, "%s%s%s\n", indent, branch(lastNode), strings.Join(parts, " "))

	detailIndent := indent + prefix(lastNode)
	if node.ServiceName != "" && node.ServiceName != node.ContainerName {
		fmt.Fprintf(r.w, "%s%s\n", detailIndent, dimStyle.Render("service: "+node.ServiceName))
	}
	if len(node.Aliases) > 0 {
		fmt.Fprintf(r.w, "%s%s\n", detailIndent, dimStyle.Render("aliases: "+strings.Join(node.Aliases, ", ")))
	}
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func prefix(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

// Report renders the full conflict report: summary, conflict table, and
// remediation actions.
func (r *Renderer) Report(report *conflict.Report) {
	if !report.HasConflicts() {
		fmt.Fprintln(r.w, okStyle.Render("No conflicts detected"))
		return
	}

	fmt.Fprintf(r.w, "Networks scanned: %d\n", report.TotalNetworks)
	fmt.Fprintf(r.w, "Containers found: %d\n", report.TotalContainers)
	fmt.Fprintf(r.w, "Total conflicts: %d\n", len(report.Conflicts))
	if n := report.CriticalCount(); n > 0 {
		fmt.Fprintf(r.w, "  %s: %d\n", criticalStyle.Render("Critical"), n)
	}
	if n := report.HighCount(); n > 0 {
		fmt.Fprintf(r.w, "  %s: %d\n", highStyle.Render("High"), n)
	}
	if n := report.WarningCount(); n > 0 {
		fmt.Fprintf(r.w, "  %s: %d\n", warningStyle.Render("Warning"), n)
	}
	fmt.Fprintln(r.w)

	sorted := sortBySeverity(report.Conflicts)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SEVERITY", "NETWORK", "DNS NAME", "CONTAINERS", "DESCRIPTION")
	for _, c := range sorted {
		tbl.Row(
			severityStyle(c.Severity).Render(strings.ToUpper(c.Severity.String())),
			c.Network,
			c.DNSName,
			strings.Join(c.ContainerNames(), ", "),
			c.Description,
		)
	}
	fmt.Fprintln(r.w, tbl.String())

	r.remediation(sorted)
}

func (r *Renderer) remediation(conflicts []*conflict.Conflict) {
	var actionable []*conflict.Conflict
	for _, c := range conflicts {
		if c.Severity == conflict.SeverityCritical || c.Severity == conflict.SeverityHigh {
			actionable = append(actionable, c)
		}
	}
	if len(actionable) == 0 {
		return
	}

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, headerStyle.Render("Recommended Actions"))
	fmt.Fprintln(r.w)

	for i, c := range actionable {
		fmt.Fprintf(r.w, "%s %s\n",
			severityStyle(c.Severity).Render(fmt.Sprintf("%d. %s", i+1, c.DNSName)),
			dimStyle.Render("on "+c.Network))
		for j, action := range c.Remediation {
			fmt.Fprintf(r.w, "   %s %s\n", dimStyle.Render(fmt.Sprintf("%d.", j+1)), action)
		}
		fmt.Fprintln(r.w)
	}
}

// Summary renders a one-line status.
func (r *Renderer) Summary(report *conflict.Report) {
	if !report.HasConflicts() {
		fmt.Fprintf(r.w, "%s - No conflicts detected\n", okStyle.Render("OK"))
		return
	}

	var parts []string
	if n := report.CriticalCount(); n > 0 {
		parts = append(parts, criticalStyle.Render(fmt.Sprintf("%d critical", n)))
	}
	if n := report.HighCount(); n > 0 {
		parts = append(parts, highStyle.Render(fmt.Sprintf("%d high", n)))
	}
	if n := report.WarningCount(); n > 0 {
		parts = append(parts, warningStyle.Render(fmt.Sprintf("%d warning", n)))
	}
	fmt.Fprintf(r.w, "%s %s\n", headerStyle.Render("Conflicts:"), strings.Join(parts, ", "))
}

// CrossNetwork renders the multi-homed container listing.
func (r *Renderer) CrossNetwork(entries []conflict.MultiHomed) {
	if len(entries) == 0 {
		fmt.Fprintln(r.w, dimStyle.Render("No containers attached to multiple networks"))
		return
	}
	fmt.Fprintln(r.w, headerStyle.Render("Containers on multiple networks"))
	for _, e := range entries {
		fmt.Fprintf(r.w, "  %s %s\n",
			nameStyle.Render(e.Container),
			dimStyle.Render(strings.Join(e.Networks, ", ")))
	}
}

// conflictLookup indexes findings by (network, name), keeping the most
// severe finding for each pair by explicit rank.
func conflictLookup(report *conflict.Report) map[[2]string]*conflict.Conflict {
	lookup := make(map[[2]string]*conflict.Conflict)
	if report == nil {
		return lookup
	}
	for _, c := range report.Conflicts {
		key := [2]string{c.Network, c.DNSName}
		existing, ok := lookup[key]
		if !ok || c.Severity.Rank() < existing.Severity.Rank() {
			lookup[key] = c
		}
	}
	return lookup
}

func sortBySeverity(conflicts []*conflict.Conflict) []*conflict.Conflict {
	sorted := append([]*conflict.Conflict(nil), conflicts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})
	return sorted
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
