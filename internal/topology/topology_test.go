package topology

import (
	"reflect"
	"sort"
	"testing"
)

func TestAddContainer(t *testing.T) {
	t.Run("preserves network discovery order", func(t *testing.T) {
		topo := New()
		topo.AddContainer("backend", &Node{ContainerID: "c1", ContainerName: "api"})
		topo.AddContainer("frontend", &Node{ContainerID: "c2", ContainerName: "web"})
		topo.AddContainer("backend", &Node{ContainerID: "c3", ContainerName: "db"})

		expected := []string{"backend", "frontend"}
		if !reflect.DeepEqual(topo.NetworkNames(), expected) {
			t.Errorf("expected networks %v, got %v", expected, topo.NetworkNames())
		}
		if len(topo.Nodes("backend")) != 2 {
			t.Errorf("expected 2 nodes on backend, got %d", len(topo.Nodes("backend")))
		}
	})

	t.Run("one node per container-network pair", func(t *testing.T) {
		topo := New()
		topo.AddContainer("net-a", &Node{ContainerID: "c1", ContainerName: "api"})
		topo.AddContainer("net-b", &Node{ContainerID: "c1", ContainerName: "api"})

		if topo.NetworkCount() != 2 {
			t.Errorf("expected 2 networks, got %d", topo.NetworkCount())
		}
		if len(topo.Nodes("net-a")) != 1 || len(topo.Nodes("net-b")) != 1 {
			t.Error("expected one node per network")
		}
	})

	t.Run("tracks container network membership", func(t *testing.T) {
		topo := New()
		topo.AddContainer("net-b", &Node{ContainerID: "c1", ContainerName: "api"})
		topo.AddContainer("net-a", &Node{ContainerID: "c1", ContainerName: "api"})

		networks := topo.NetworksFor("api")
		sort.Strings(networks)
		if !reflect.DeepEqual(networks, []string{"net-a", "net-b"}) {
			t.Errorf("expected [net-a net-b], got %v", networks)
		}
	})

	t.Run("unknown container has no networks", func(t *testing.T) {
		topo := New()
		if networks := topo.NetworksFor("ghost"); networks != nil {
			t.Errorf("expected nil, got %v", networks)
		}
	})
}

func TestIsEmpty(t *testing.T) {
	topo := New()
	if !topo.IsEmpty() {
		t.Error("expected new topology to be empty")
	}
	topo.AddContainer("net", &Node{ContainerID: "c1", ContainerName: "api"})
	if topo.IsEmpty() {
		t.Error("expected topology with a network to be non-empty")
	}
}
