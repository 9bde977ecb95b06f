package topology

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Snapshot files hold one cleaned topology as plain JSON with top-level
// exchanges/queues/bindings arrays. Snapshots are trusted to be canonical
// already, so loading never triggers a canonicalization pass.

// LoadSnapshot reads a topology snapshot from a file.
func LoadSnapshot(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var tp Topology
	if err := json.Unmarshal(data, &tp); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &tp, nil
}

// SaveSnapshot writes a topology snapshot to a file.
func SaveSnapshot(path string, tp *Topology) error {
	data, err := json.MarshalIndent(tp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteSnapshot renders a topology snapshot to the given writer, typically
// stdout for the dump command.
func WriteSnapshot(w io.Writer, tp *Topology) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tp)
}
