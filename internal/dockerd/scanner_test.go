package dockerd

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
)

// fakeEngine returns canned network state.
type fakeEngine struct {
	networks []NetworkInfo
	err      error
}

func (f *fakeEngine) Networks(ctx context.Context, includeDefault bool) ([]NetworkInfo, error) {
	return f.networks, f.err
}

func composeContainer(id, name, network, ip, service, project string, aliases ...string) ContainerInfo {
	labels := map[string]string{}
	if service != "" {
		labels[labelComposeService] = service
	}
	if project != "" {
		labels[labelComposeProject] = project
	}
	return ContainerInfo{
		ID:      id,
		Name:    name,
		ShortID: id[:12],
		Labels:  labels,
		Networks: map[string]Attachment{
			network: {NetworkName: network, IPAddress: ip, Aliases: aliases},
		},
	}
}

func TestScan(t *testing.T) {
	t.Run("builds nodes from attachments", func(t *testing.T) {
		engine := &fakeEngine{networks: []NetworkInfo{
			{
				Name: "backend",
				Containers: []ContainerInfo{
					composeContainer("aaa111222333444", "stack1-db-1", "backend", "172.18.0.2", "db", "stack1", "postgres"),
					composeContainer("bbb555666777888", "stack1-api-1", "backend", "172.18.0.3", "api", "stack1"),
				},
			},
		}}

		topo, err := NewScanner(engine).Scan(context.Background(), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		nodes := topo.Nodes("backend")
		if len(nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d", len(nodes))
		}
		db := nodes[0]
		if db.ContainerName != "stack1-db-1" {
			t.Errorf("expected 'stack1-db-1', got %s", db.ContainerName)
		}
		if db.ServiceName != "db" || db.ComposeProject != "stack1" {
			t.Errorf("expected compose labels mapped, got service=%s project=%s",
				db.ServiceName, db.ComposeProject)
		}
		if db.IPAddress != "172.18.0.2" {
			t.Errorf("expected IP from attachment, got %s", db.IPAddress)
		}
		if len(db.Aliases) != 1 || db.Aliases[0] != "postgres" {
			t.Errorf("expected aliases [postgres], got %v", db.Aliases)
		}
	})

	t.Run("container without attachment for network skipped", func(t *testing.T) {
		stray := composeContainer("ccc000111222333", "stray", "elsewhere", "10.0.0.9", "", "")
		engine := &fakeEngine{networks: []NetworkInfo{
			{Name: "backend", Containers: []ContainerInfo{stray}},
		}}

		topo, err := NewScanner(engine).Scan(context.Background(), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(topo.Nodes("backend")) != 0 {
			t.Error("expected container without a backend attachment to be skipped")
		}
	})

	t.Run("propagates engine errors", func(t *testing.T) {
		engine := &fakeEngine{err: errors.New("socket unavailable")}
		if _, err := NewScanner(engine).Scan(context.Background(), false); err == nil {
			t.Error("expected error from engine")
		}
	})
}

func TestScanNetwork(t *testing.T) {
	engine := &fakeEngine{networks: []NetworkInfo{
		{Name: "frontend", Containers: []ContainerInfo{
			composeContainer("aaa111222333444", "web", "frontend", "172.19.0.2", "", ""),
		}},
		{Name: "backend", Containers: []ContainerInfo{
			composeContainer("bbb555666777888", "db", "backend", "172.18.0.2", "", ""),
		}},
	}}

	t.Run("includes only the named network", func(t *testing.T) {
		topo, err := NewScanner(engine).ScanNetwork(context.Background(), "backend")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if topo.NetworkCount() != 1 {
			t.Fatalf("expected exactly 1 network, got %d", topo.NetworkCount())
		}
		if len(topo.Nodes("backend")) != 1 {
			t.Error("expected the backend container")
		}
	})

	t.Run("unknown network yields empty topology", func(t *testing.T) {
		topo, err := NewScanner(engine).ScanNetwork(context.Background(), "ghost")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !topo.IsEmpty() {
			t.Error("expected empty topology for unknown network")
		}
	})
}

func TestBuildContainerInfo(t *testing.T) {
	detail := types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{
			ID:   "aaa111222333444555666",
			Name: "/stack1-db-1",
		},
		Config: &container.Config{
			Labels: map[string]string{labelComposeService: "db"},
		},
		NetworkSettings: &types.NetworkSettings{
			Networks: map[string]*network.EndpointSettings{
				"backend": {
					NetworkID: "net1",
					IPAddress: "172.18.0.2",
					Aliases:   []string{"postgres", "aaa111222333"},
				},
			},
		},
	}

	info := buildContainerInfo(detail)

	if info.Name != "stack1-db-1" {
		t.Errorf("expected leading slash stripped, got %s", info.Name)
	}
	if info.ShortID != "aaa111222333" {
		t.Errorf("expected 12-char short id, got %s", info.ShortID)
	}
	attachment, ok := info.Networks["backend"]
	if !ok {
		t.Fatal("expected backend attachment")
	}
	// The engine injects the short container ID as an implicit alias.
	if len(attachment.Aliases) != 1 || attachment.Aliases[0] != "postgres" {
		t.Errorf("expected short-id alias stripped, got %v", attachment.Aliases)
	}
	if info.Labels[labelComposeService] != "db" {
		t.Errorf("expected labels preserved, got %v", info.Labels)
	}
}
