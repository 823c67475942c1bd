// Package directory abstracts the external identity service. The engine only
// needs opaque lookups: who approves at a level, who staffs a queue.
package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spec-kit/request-workflow/internal/domain"
)

// Identity is the opaque result of a directory lookup.
type Identity struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
}

// Directory resolves approvers and specialists.
type Directory interface {
	ManagerForLevel(ctx context.Context, module domain.Module, level domain.ApprovalLevel) (Identity, error)
	SpecialistsForQueue(ctx context.Context, queue string) ([]Identity, error)
}

// StaticDirectory serves lookups from an in-process table. It stands in for
// the real directory service in development and tests.
type StaticDirectory struct {
	mu          sync.RWMutex
	managers    map[string]Identity
	specialists map[string][]Identity
}

// NewStaticDirectory creates an empty directory.
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		managers:    make(map[string]Identity),
		specialists: make(map[string][]Identity),
	}
}

// SetManager registers the approver for (module, level).
func (d *StaticDirectory) SetManager(module domain.Module, level domain.ApprovalLevel, identity Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.managers[managerKey(module, level)] = identity
}

// AddSpecialist registers a specialist under a queue.
func (d *StaticDirectory) AddSpecialist(queue string, identity Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := strings.ToLower(queue)
	d.specialists[key] = append(d.specialists[key], identity)
}

// ManagerForLevel resolves the approver for (module, level).
func (d *StaticDirectory) ManagerForLevel(ctx context.Context, module domain.Module, level domain.ApprovalLevel) (Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	identity, ok := d.managers[managerKey(module, level)]
	if !ok {
		return Identity{}, fmt.Errorf("no manager registered for %s %s", module, level)
	}
	return identity, nil
}

// SpecialistsForQueue resolves the members of a specialist queue.
func (d *StaticDirectory) SpecialistsForQueue(ctx context.Context, queue string) ([]Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	members := d.specialists[strings.ToLower(queue)]
	if len(members) == 0 {
		return nil, fmt.Errorf("no specialists registered for queue %s", queue)
	}
	out := make([]Identity, len(members))
	copy(out, members)
	return out, nil
}

func managerKey(module domain.Module, level domain.ApprovalLevel) string {
	return string(module) + "/" + string(level)
}
