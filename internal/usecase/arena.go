package usecase

import (
	"github.com/nexaline/comp-service/internal/domain"
)

// TreeArena is an id-indexed snapshot of both trees, built once per
// calculation run. Traversals work on ids, never on object pointers, so a
// corrupt parent link is detected instead of looping.
type TreeArena struct {
	Nodes            map[string]*domain.Distributor
	UnilevelChildren map[string][]string
	BinaryChildren   map[string]map[domain.BinaryLeg]string
	RootID           string
}

// BuildArena validates the structural invariants while indexing: exactly one
// root, every parent link resolvable, both relations acyclic and fully
// connected. Any violation is ErrTreeInconsistency: evaluation must fail
// fast rather than produce a wrong rank.
func BuildArena(distributors []*domain.Distributor) (*TreeArena, error) {
	arena := &TreeArena{
		Nodes:            make(map[string]*domain.Distributor, len(distributors)),
		UnilevelChildren: make(map[string][]string),
		BinaryChildren:   make(map[string]map[domain.BinaryLeg]string),
	}

	for _, d := range distributors {
		arena.Nodes[d.ID] = d
	}

	for _, d := range distributors {
		if d.SponsorID == nil {
			if arena.RootID != "" {
				return nil, domain.ErrTreeInconsistency
			}
			arena.RootID = d.ID
			if d.BinaryParentID != nil {
				return nil, domain.ErrTreeInconsistency
			}
			continue
		}
		if _, ok := arena.Nodes[*d.SponsorID]; !ok {
			return nil, domain.ErrTreeInconsistency
		}
		arena.UnilevelChildren[*d.SponsorID] = append(arena.UnilevelChildren[*d.SponsorID], d.ID)

		// non-root distributors must hold a binary slot
		if d.BinaryParentID == nil || d.BinaryLeg == nil {
			return nil, domain.ErrTreeInconsistency
		}
		if _, ok := arena.Nodes[*d.BinaryParentID]; !ok {
			return nil, domain.ErrTreeInconsistency
		}
		legs := arena.BinaryChildren[*d.BinaryParentID]
		if legs == nil {
			legs = make(map[domain.BinaryLeg]string, 2)
			arena.BinaryChildren[*d.BinaryParentID] = legs
		}
		if _, taken := legs[*d.BinaryLeg]; taken {
			return nil, domain.ErrTreeInconsistency
		}
		legs[*d.BinaryLeg] = d.ID
	}

	if len(distributors) == 0 {
		return arena, nil
	}
	if arena.RootID == "" {
		return nil, domain.ErrTreeInconsistency
	}

	// full reachability from the root proves both relations acyclic
	if n := countReachable(arena.RootID, func(id string) []string {
		return arena.UnilevelChildren[id]
	}); n != len(arena.Nodes) {
		return nil, domain.ErrTreeInconsistency
	}
	if n := countReachable(arena.RootID, func(id string) []string {
		var children []string
		for _, childID := range arena.BinaryChildren[id] {
			children = append(children, childID)
		}
		return children
	}); n != len(arena.Nodes) {
		return nil, domain.ErrTreeInconsistency
	}

	return arena, nil
}

func countReachable(rootID string, children func(id string) []string) int {
	visited := map[string]bool{rootID: true}
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, childID := range children(id) {
			if !visited[childID] {
				visited[childID] = true
				stack = append(stack, childID)
			}
		}
	}
	return len(visited)
}

// PostOrder returns every node id with children before parents, so a single
// pass can fold child aggregates into ancestors.
func (a *TreeArena) PostOrder(children func(id string) []string) []string {
	if a.RootID == "" {
		return nil
	}
	order := make([]string, 0, len(a.Nodes))
	type frame struct {
		id       string
		expanded bool
	}
	stack := []frame{{id: a.RootID}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.expanded {
			order = append(order, top.id)
			stack = stack[:len(stack)-1]
			continue
		}
		top.expanded = true
		for _, childID := range children(top.id) {
			stack = append(stack, frame{id: childID})
		}
	}
	return order
}

// UnilevelAncestors walks the sponsor chain from id, nearest first, up to
// maxDepth levels.
func (a *TreeArena) UnilevelAncestors(id string, maxDepth int) []*domain.Distributor {
	var ancestors []*domain.Distributor
	current := a.Nodes[id]
	for depth := 0; current != nil && current.SponsorID != nil && depth < maxDepth; depth++ {
		sponsor := a.Nodes[*current.SponsorID]
		if sponsor == nil {
			break
		}
		ancestors = append(ancestors, sponsor)
		current = sponsor
	}
	return ancestors
}
