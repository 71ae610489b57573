// Package dockerd talks to the Docker engine API and turns its network
// and container state into topology snapshots.
package dockerd

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

// defaultNetworks are the engine-managed sentinel networks that are
// skipped unless the caller opts in.
var defaultNetworks = map[string]struct{}{
	"bridge": {},
	"host":   {},
	"none":   {},
}

// Attachment is a container's endpoint on one network.
type Attachment struct {
	NetworkID   string
	NetworkName string
	IPAddress   string
	Aliases     []string
}

// ContainerInfo is the slice of container state the scanner needs.
type ContainerInfo struct {
	ID       string
	Name     string
	ShortID  string
	Labels   map[string]string
	Networks map[string]Attachment
}

// NetworkInfo is one engine network with its attached containers.
type NetworkInfo struct {
	ID         string
	Name       string
	Driver     string
	Scope      string
	Containers []ContainerInfo
}

// Client wraps the Docker SDK for network monitoring.
type Client struct {
	api *client.Client
}

// New connects to the Docker engine and verifies it is reachable.
func New(ctx context.Context) (*Client, error) {
	api, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	if _, err := api.Ping(ctx); err != nil {
		api.Close()
		return nil, fmt.Errorf("connect to docker: %w", err)
	}
	return &Client{api: api}, nil
}

// Networks returns all engine networks with their connected containers.
// Default networks (bridge, host, none) are excluded unless requested.
func (c *Client) Networks(ctx context.Context, includeDefault bool) ([]NetworkInfo, error) {
	summaries, err := c.api.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}

	var result []NetworkInfo
	for _, summary := range summaries {
		if _, isDefault := defaultNetworks[summary.Name]; isDefault && !includeDefault {
			continue
		}

		// The list endpoint omits attached containers.
		inspect, err := c.api.NetworkInspect(ctx, summary.ID, network.InspectOptions{})
		if err != nil {
			if errdefs.IsNotFound(err) {
				continue // removed between list and inspect
			}
			return nil, fmt.Errorf("inspect network %s: %w", summary.Name, err)
		}

		containers, err := c.containersOnNetwork(ctx, inspect)
		if err != nil {
			return nil, err
		}

		result = append(result, NetworkInfo{
			ID:         inspect.ID,
			Name:       inspect.Name,
			Driver:     inspect.Driver,
			Scope:      inspect.Scope,
			Containers: containers,
		})
	}

	return result, nil
}

func (c *Client) containersOnNetwork(ctx context.Context, inspect network.Inspect) ([]ContainerInfo, error) {
	var containers []ContainerInfo

	for containerID := range inspect.Containers {
		info, err := c.inspectContainer(ctx, containerID)
		if err != nil {
			if errdefs.IsNotFound(err) {
				continue // stopped between inspections
			}
			return nil, fmt.Errorf("inspect container %s: %w", containerID, err)
		}
		containers = append(containers, info)
	}

	return containers, nil
}

func (c *Client) inspectContainer(ctx context.Context, containerID string) (ContainerInfo, error) {
	detail, err := c.api.ContainerInspect(ctx, containerID)
	if err != nil {
		return ContainerInfo{}, err
	}
	return buildContainerInfo(detail), nil
}

func buildContainerInfo(detail types.ContainerJSON) ContainerInfo {
	shortID := detail.ID
	if len(shortID) > 12 {
		shortID = shortID[:12]
	}

	networks := make(map[string]Attachment)
	if detail.NetworkSettings != nil {
		for netName, endpoint := range detail.NetworkSettings.Networks {
			if endpoint == nil {
				continue
			}
			// Docker injects the short container ID as an implicit
			// alias; it is noise for name analysis.
			aliases := make([]string, 0, len(endpoint.Aliases))
			for _, alias := range endpoint.Aliases {
				if alias != shortID {
					aliases = append(aliases, alias)
				}
			}
			networks[netName] = Attachment{
				NetworkID:   endpoint.NetworkID,
				NetworkName: netName,
				IPAddress:   endpoint.IPAddress,
				Aliases:     aliases,
			}
		}
	}

	var labels map[string]string
	if detail.Config != nil {
		labels = detail.Config.Labels
	}
	if labels == nil {
		labels = map[string]string{}
	}

	name := detail.Name
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}

	return ContainerInfo{
		ID:       detail.ID,
		Name:     name,
		ShortID:  shortID,
		Labels:   labels,
		Networks: networks,
	}
}

// Events streams container and network lifecycle events relevant to
// topology changes.
func (c *Client) Events(ctx context.Context) (<-chan events.Message, <-chan error) {
	args := filters.NewArgs(
		filters.Arg("type", string(events.ContainerEventType)),
		filters.Arg("type", string(events.NetworkEventType)),
		filters.Arg("event", "start"),
		filters.Arg("event", "stop"),
		filters.Arg("event", "die"),
		filters.Arg("event", "connect"),
		filters.Arg("event", "disconnect"),
	)
	return c.api.Events(ctx, events.ListOptions{Filters: args})
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.api.Close()
}
