package encoder

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Allocation is the persisted state of the memory slots.
type Allocation struct {
	Slots    []string `json:"slots"`
	Capacity int      `json:"capacity"`
}

// NewAllocation returns a fresh allocation with all slots empty.
func NewAllocation() *Allocation {
	return &Allocation{Slots: make([]string, TotalSlots), Capacity: SlotCapacity}
}

// Used counts non-empty slots.
func (a *Allocation) Used() int {
	n := 0
	for _, s := range a.Slots {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// CharsUsed sums the lengths of all slots.
func (a *Allocation) CharsUsed() int {
	n := 0
	for _, s := range a.Slots {
		n += len(s)
	}
	return n
}

// Fill places packed facts into empty slots in order. Returns how many
// were placed; leftovers mean the allocation is full.
func (a *Allocation) Fill(packed []string) int {
	placed := 0
	for i := range a.Slots {
		if placed >= len(packed) {
			break
		}
		if strings.TrimSpace(a.Slots[i]) == "" {
			a.Slots[i] = packed[placed]
			placed++
		}
	}
	return placed
}

// LoadAllocation reads an allocation from path. A missing file returns
// (nil, nil).
func LoadAllocation(path string) (*Allocation, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var a Allocation
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse slot allocation: %w", err)
	}
	if a.Capacity <= 0 {
		a.Capacity = SlotCapacity
	}
	for len(a.Slots) < TotalSlots {
		a.Slots = append(a.Slots, "")
	}
	a.Slots = a.Slots[:TotalSlots]
	return &a, nil
}

// Save writes the allocation to path as indented JSON.
func (a *Allocation) Save(path string) error {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// FormatStatus renders a human-readable slot report.
func (a *Allocation) FormatStatus() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Slots: %d/%d used, %d/%d chars\n",
		a.Used(), len(a.Slots), a.CharsUsed(), len(a.Slots)*a.Capacity)
	for i, s := range a.Slots {
		if strings.TrimSpace(s) == "" {
			continue
		}
		preview := s
		if len(preview) > 60 {
			preview = preview[:60] + "..."
		}
		fmt.Fprintf(&sb, "  %2d [%3d] %s\n", i+1, len(s), preview)
	}
	return sb.String()
}
