package hanoi

import "fmt"

// ConfigError describes a disk placement the planner cannot solve
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// ValidatePlacement checks that the rods hold numDisks distinct positive
// disks. Each rod is sorted by construction, so ordering needs no check.
func ValidatePlacement(numDisks int, rods ...*Rod) error {
	if numDisks < 0 {
		return &ConfigError{Field: "num_disks", Reason: fmt.Sprintf("must not be negative, got %d", numDisks)}
	}

	seen := make(map[int]RodName)
	total := 0
	for _, r := range rods {
		for _, d := range r.disks {
			if d <= 0 {
				return &ConfigError{Field: string(r.name), Reason: fmt.Sprintf("disk size must be positive, got %d", d)}
			}
			if where, dup := seen[d]; dup {
				return &ConfigError{Field: string(r.name), Reason: fmt.Sprintf("disk %d already placed on %s", d, where)}
			}
			seen[d] = r.name
			total++
		}
	}

	if total != numDisks {
		return &ConfigError{Field: "num_disks", Reason: fmt.Sprintf("declares %d disks but rods hold %d", numDisks, total)}
	}
	return nil
}
