package conflict

import "strings"

// genericNames are common service-style names prone to accidental reuse
// when unrelated stacks share a network. Membership only raises the
// suspicion threshold; it never constitutes a duplicate by itself.
var genericNames = map[string]struct{}{
	"db":            {},
	"database":      {},
	"postgres":      {},
	"postgresql":    {},
	"mysql":         {},
	"mariadb":       {},
	"mongo":         {},
	"mongodb":       {},
	"redis":         {},
	"cache":         {},
	"memcached":     {},
	"elasticsearch": {},
	"es":            {},
	"rabbitmq":      {},
	"mq":            {},
	"kafka":         {},
	"zookeeper":     {},
	"api":           {},
	"app":           {},
	"web":           {},
	"backend":       {},
	"frontend":      {},
	"worker":        {},
	"nginx":         {},
	"proxy":         {},
	"traefik":       {},
	"caddy":         {},
}

// IsGenericName reports whether name is a reserved/common service name,
// case-insensitively.
func IsGenericName(name string) bool {
	_, ok := genericNames[strings.ToLower(name)]
	return ok
}
