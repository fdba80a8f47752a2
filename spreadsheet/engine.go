package spreadsheet

import "fmt"

// SetCell assigns source text to the cell at pos. The edit is atomic:
// a syntax error or a rejected cycle leaves the grid untouched.
func (s *Sheet) SetCell(pos Position, text string) error {
	if !pos.IsValid() {
		return fmt.Errorf("%w: %d,%d", ErrInvalidPosition, pos.Row, pos.Col)
	}

	candidate, err := buildContent(text)
	if err != nil {
		return err
	}

	if s.wouldIntroduceCycle(pos, candidate.referencedCells()) {
		return fmt.Errorf("%w: %s depends on itself", ErrCircularDependency, pos)
	}

	cell := s.ensureCell(pos)
	s.commit(cell, candidate)
	return nil
}

// commit swaps in the candidate content, rewires dependency edges, and
// invalidates downstream caches.
func (s *Sheet) commit(cell *Cell, candidate content) {
	cell.setContent(candidate)
	s.rewireEdges(cell, candidate.referencedCells())
	s.invalidateDependents(cell)
}

// wouldIntroduceCycle reports whether replacing the outgoing edges of
// the cell at pos with refs would close a path back to pos. The walk
// runs over the committed graph only: the candidate replaces all of
// this cell's own edges, so they never participate.
func (s *Sheet) wouldIntroduceCycle(pos Position, refs []Position) bool {
	if len(refs) == 0 {
		return false
	}
	// Iterative DFS; long reference chains must not blow the stack.
	stack := make([]Position, 0, len(refs))
	visited := make(map[Position]bool)
	for _, ref := range refs {
		stack = append(stack, ref)
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == pos {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		cell := s.cellAt(current)
		if cell == nil {
			continue
		}
		for next := range cell.outgoing {
			if !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// rewireEdges replaces the cell's outgoing set with refs, maintaining
// the reverse edges on both ends. Referenced cells that do not exist
// yet are materialized as empty placeholders.
func (s *Sheet) rewireEdges(cell *Cell, refs []Position) {
	for old := range cell.outgoing {
		if target := s.cellAt(old); target != nil {
			delete(target.incoming, cell.pos)
		}
		delete(cell.outgoing, old)
	}
	for _, ref := range refs {
		target := s.ensureCell(ref)
		target.incoming[cell.pos] = struct{}{}
		cell.outgoing[ref] = struct{}{}
	}
}

// invalidateDependents drops the cache of every cell that transitively
// depends on the given cell. A dependent whose cache is already clear
// stops the walk: its own dependents were cleared when it was.
func (s *Sheet) invalidateDependents(cell *Cell) {
	queue := make([]Position, 0, len(cell.incoming))
	for dep := range cell.incoming {
		queue = append(queue, dep)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		dep := s.cellAt(current)
		if dep == nil || !dep.hasCache() {
			continue
		}
		dep.dropCache()
		for next := range dep.incoming {
			queue = append(queue, next)
		}
	}
}
