package network

// Index is a read-only lookup structure built once per analysis call. It
// resolves bus identifiers to their position in the snapshot's bus slice and
// holds an undirected adjacency list for traversal. Building it never
// mutates the snapshot, so one snapshot can back many concurrent indexes.
type Index struct {
	busPos    map[string]int
	adjacency map[string][]string
	slackID   string
}

// BuildIndex constructs the lookup index for a snapshot. It fails with a
// TopologyError if a branch references a bus that does not exist or if the
// snapshot does not contain exactly one slack bus.
func BuildIndex(n Network) (*Index, error) {
	idx := &Index{
		busPos:    make(map[string]int, len(n.Buses)),
		adjacency: make(map[string][]string, len(n.Buses)),
	}

	slackCount := 0
	for i, bus := range n.Buses {
		if _, dup := idx.busPos[bus.ID]; dup {
			return nil, &TopologyError{Reason: "duplicate bus id " + bus.ID}
		}
		idx.busPos[bus.ID] = i
		if bus.Role == RoleSlack {
			slackCount++
			idx.slackID = bus.ID
		}
	}
	if slackCount != 1 {
		return nil, &TopologyError{Reason: fmtSlackCount(slackCount)}
	}

	for _, br := range n.Branches {
		if _, ok := idx.busPos[br.From]; !ok {
			return nil, &TopologyError{Reason: "branch " + br.ID + " references unknown bus " + br.From}
		}
		if _, ok := idx.busPos[br.To]; !ok {
			return nil, &TopologyError{Reason: "branch " + br.ID + " references unknown bus " + br.To}
		}
		idx.adjacency[br.From] = append(idx.adjacency[br.From], br.To)
		idx.adjacency[br.To] = append(idx.adjacency[br.To], br.From)
	}

	return idx, nil
}

// SlackID returns the identifier of the slack bus.
func (idx *Index) SlackID() string { return idx.slackID }

// BusPosition resolves a bus identifier to its position in the snapshot's
// bus slice.
func (idx *Index) BusPosition(id string) (int, bool) {
	pos, ok := idx.busPos[id]
	return pos, ok
}

// Neighbors returns the bus identifiers adjacent to the given bus.
func (idx *Index) Neighbors(id string) []string {
	return idx.adjacency[id]
}

// Reachable runs a breadth-first traversal from the slack bus, treating
// branches as undirected, and returns the set of visited bus identifiers.
func (idx *Index) Reachable() map[string]bool {
	visited := make(map[string]bool, len(idx.busPos))
	queue := []string{idx.slackID}
	visited[idx.slackID] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range idx.adjacency[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// Unreachable returns the identifiers of buses the slack bus cannot reach,
// in snapshot order.
func (idx *Index) Unreachable(n Network) []string {
	visited := idx.Reachable()
	var out []string
	for _, bus := range n.Buses {
		if !visited[bus.ID] {
			out = append(out, bus.ID)
		}
	}
	return out
}

func fmtSlackCount(count int) string {
	if count == 0 {
		return "no slack bus defined"
	}
	return "more than one slack bus defined"
}
