package node

import (
	"os"
	"sync"

	"github.com/google/uuid"
)

// Node identifies the running replica in logs, spans and run records.
type Node struct {
	ID         string
	Hostname   string
	Version    string
	CommitHash string
}

// Set at build time with -ldflags "-X fleet-sync-server/internal/infra/node.Version=...".
var Version = "development"
var CommitHash = "unknown"

var (
	current     *Node
	currentOnce sync.Once
)

func GetNodeInfo() *Node {
	currentOnce.Do(func() {
		current = &Node{
			ID:         uuid.NewString(),
			Hostname:   hostname(),
			Version:    Version,
			CommitHash: CommitHash,
		}
	})
	info := *current
	return &info
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return name
}
