package dockerd

import (
	"context"

	"netwarden/internal/topology"
)

// Compose labels the engine attaches to orchestrated containers.
const (
	labelComposeService = "com.docker.compose.service"
	labelComposeProject = "com.docker.compose.project"
)

// Engine is the slice of the Docker client the scanner depends on.
type Engine interface {
	Networks(ctx context.Context, includeDefault bool) ([]NetworkInfo, error)
}

// Scanner builds topology snapshots from engine state.
type Scanner struct {
	engine Engine
}

// NewScanner creates a scanner over the given engine.
func NewScanner(engine Engine) *Scanner {
	return &Scanner{engine: engine}
}

// Scan builds a topology covering every network the engine reports.
func (s *Scanner) Scan(ctx context.Context, includeDefault bool) (*topology.Topology, error) {
	networks, err := s.engine.Networks(ctx, includeDefault)
	if err != nil {
		return nil, err
	}

	topo := topology.New()
	for _, net := range networks {
		addNetwork(topo, net)
	}
	return topo, nil
}

// ScanNetwork builds a topology containing only the named network.
// Default networks are always considered so a network named explicitly
// is never silently missing.
func (s *Scanner) ScanNetwork(ctx context.Context, name string) (*topology.Topology, error) {
	networks, err := s.engine.Networks(ctx, true)
	if err != nil {
		return nil, err
	}

	topo := topology.New()
	for _, net := range networks {
		if net.Name == name {
			addNetwork(topo, net)
			break
		}
	}
	return topo, nil
}

func addNetwork(topo *topology.Topology, net NetworkInfo) {
	for _, container := range net.Containers {
		attachment, ok := container.Networks[net.Name]
		if !ok {
			continue
		}
		topo.AddContainer(net.Name, &topology.Node{
			ContainerID:    container.ID,
			ContainerName:  container.Name,
			ShortID:        container.ShortID,
			IPAddress:      attachment.IPAddress,
			Aliases:        attachment.Aliases,
			ServiceName:    container.Labels[labelComposeService],
			ComposeProject: container.Labels[labelComposeProject],
		})
	}
}
