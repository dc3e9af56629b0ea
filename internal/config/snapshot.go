package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dash-soft/hanoi/internal/hanoi"
)

// DefaultSnapshotPath is where the starting arrangement is saved
const DefaultSnapshotPath = "config.json"

// Snapshot is the persisted starting arrangement of the rods
type Snapshot struct {
	Rods     map[hanoi.RodName][]int `json:"rods"`
	NumDisks int                     `json:"num_disks"`
}

// SnapshotOf captures the current contents of the three rods
func SnapshotOf(source, target, auxiliary *hanoi.Rod) Snapshot {
	snap := Snapshot{Rods: make(map[hanoi.RodName][]int, 3)}
	for _, r := range []*hanoi.Rod{source, target, auxiliary} {
		disks := r.Disks() // never nil, so empty rods encode as []
		snap.Rods[r.Name()] = disks
		snap.NumDisks += len(disks)
	}
	return snap
}

// Apply adds every disk in the snapshot to the matching rod
func (s Snapshot) Apply(source, target, auxiliary *hanoi.Rod) {
	rods := map[hanoi.RodName]*hanoi.Rod{
		source.Name():    source,
		target.Name():    target,
		auxiliary.Name(): auxiliary,
	}
	for name, disks := range s.Rods {
		r, ok := rods[name]
		if !ok {
			continue
		}
		for _, d := range disks {
			r.AddDisk(d)
		}
	}
}

func (s Snapshot) validate() error {
	for name := range s.Rods {
		switch name {
		case hanoi.Source, hanoi.Target, hanoi.Auxiliary:
		default:
			return &hanoi.ConfigError{Field: "rods", Reason: fmt.Sprintf("unknown rod %q", name)}
		}
	}
	if s.NumDisks < 0 {
		return &hanoi.ConfigError{Field: "num_disks", Reason: fmt.Sprintf("must not be negative, got %d", s.NumDisks)}
	}
	return nil
}

// SnapshotExists checks if a snapshot file exists at path
func SnapshotExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadSnapshot reads and parses the snapshot at path
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if snap.Rods == nil {
		return nil, &hanoi.ConfigError{Field: "rods", Reason: "missing"}
	}
	if err := snap.validate(); err != nil {
		return nil, err
	}

	return &snap, nil
}

// SaveSnapshot writes the snapshot to path, pretty-printed
func SaveSnapshot(path string, snap Snapshot) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	for _, name := range hanoi.RodNames() {
		if snap.Rods[name] == nil {
			if snap.Rods == nil {
				snap.Rods = make(map[hanoi.RodName][]int, 3)
			}
			snap.Rods[name] = []int{}
		}
	}

	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}
