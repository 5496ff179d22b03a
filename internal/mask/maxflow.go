package mask

import "math"

const flowEps = 1e-9

// flowGraph is a residual graph for Dinic's max-flow algorithm. Edges are
// stored in pairs: edge e and its reverse e^1.
type flowGraph struct {
	head  []int
	next  []int
	to    []int
	cap   []float64
	level []int
	iter  []int
}

func newFlowGraph(n int) *flowGraph {
	g := &flowGraph{head: make([]int, n), level: make([]int, n), iter: make([]int, n)}
	for i := range g.head {
		g.head[i] = -1
	}
	return g
}

// addEdge adds u→v with capacity c and v→u with capacity rc.
func (g *flowGraph) addEdge(u, v int, c, rc float64) {
	g.to = append(g.to, v, u)
	g.cap = append(g.cap, c, rc)
	g.next = append(g.next, g.head[u], g.head[v])
	g.head[u] = len(g.to) - 2
	g.head[v] = len(g.to) - 1
}

func (g *flowGraph) bfs(s, t int) bool {
	for i := range g.level {
		g.level[i] = -1
	}
	g.level[s] = 0
	queue := []int{s}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for e := g.head[u]; e >= 0; e = g.next[e] {
			if v := g.to[e]; g.cap[e] > flowEps && g.level[v] < 0 {
				g.level[v] = g.level[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return g.level[t] >= 0
}

func (g *flowGraph) dfs(u, t int, f float64) float64 {
	if u == t {
		return f
	}
	for ; g.iter[u] >= 0; g.iter[u] = g.next[g.iter[u]] {
		e := g.iter[u]
		v := g.to[e]
		if g.cap[e] <= flowEps || g.level[v] != g.level[u]+1 {
			continue
		}
		if d := g.dfs(v, t, math.Min(f, g.cap[e])); d > flowEps {
			g.cap[e] -= d
			g.cap[e^1] += d
			return d
		}
	}
	return 0
}

// maxFlow pushes the maximum flow from s to t and returns its value.
func (g *flowGraph) maxFlow(s, t int) float64 {
	var total float64
	for g.bfs(s, t) {
		copy(g.iter, g.head)
		for {
			f := g.dfs(s, t, math.Inf(1))
			if f <= flowEps {
				break
			}
			total += f
		}
	}
	return total
}

// sourceSide marks the nodes still reachable from s in the residual graph,
// i.e. the source side of a minimum cut. Call after maxFlow.
func (g *flowGraph) sourceSide(s int) []bool {
	seen := make([]bool, len(g.head))
	seen[s] = true
	stack := []int{s}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for e := g.head[u]; e >= 0; e = g.next[e] {
			if v := g.to[e]; g.cap[e] > flowEps && !seen[v] {
				seen[v] = true
				stack = append(stack, v)
			}
		}
	}
	return seen
}
