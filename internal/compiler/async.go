package compiler

import (
	"sort"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

// computeAsync implements spec §4.1 step 6: a reverse-topological pass
// over the dependency graph. Each node's isAsync is computed once every
// node it depends on has been computed; hybrid handlers get their
// dependencies' flags via ComputeIsAsync, pure sync/async handlers seed or
// propagate directly.
func (c *compiler) computeAsync() {
	nodes := c.artefact.Nodes.GetAll()

	type depEdge struct {
		from     ast.Identity
		property string
		index    int
	}
	rawDeps := map[ast.Identity][]depEdge{}
	for _, e := range c.artefact.Graph.All() {
		rawDeps[e.To] = append(rawDeps[e.To], depEdge{from: e.From, property: e.Property, index: e.Index})
	}

	deps := map[ast.Identity][]ast.Identity{}
	dependents := map[ast.Identity][]ast.Identity{}
	inDegree := map[ast.Identity]int{}
	for id := range nodes {
		inDegree[id] = 0
	}
	for to, des := range rawDeps {
		sort.Slice(des, func(i, j int) bool {
			if des[i].property != des[j].property {
				return des[i].property < des[j].property
			}
			if des[i].index != des[j].index {
				return des[i].index < des[j].index
			}
			return des[i].from < des[j].from
		})
		seen := map[ast.Identity]bool{}
		var ordered []ast.Identity
		for _, d := range des {
			if seen[d.from] {
				continue
			}
			seen[d.from] = true
			ordered = append(ordered, d.from)
			dependents[d.from] = append(dependents[d.from], to)
		}
		deps[to] = ordered
		inDegree[to] = len(ordered)
	}

	var queue []ast.Identity
	for id, d := range inDegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	isAsync := map[ast.Identity]bool{}
	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++

		handler, _ := c.artefact.Handlers.Get(id)
		depFlags := make([]bool, len(deps[id]))
		for i, d := range deps[id] {
			depFlags[i] = isAsync[d]
		}
		flag := classifyAsync(handler, depFlags)
		isAsync[id] = flag
		c.artefact.Metadata.Set(id, registry.IsAsync, flag)

		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if processed != len(nodes) {
		c.errs.Addf("", "dependency graph is cyclic: ordered %d of %d nodes", processed, len(nodes))
	}
}

// classifyAsync mirrors evaluator.Evaluator.isAsyncNode's fallback rule so
// compile-time classification and the evaluator's runtime fallback (used
// for nodes with no stored metadata, e.g. freshly cloned ITERATE items)
// agree when both apply.
func classifyAsync(handler any, deps []bool) bool {
	if classifier, ok := handler.(evaluator.AsyncClassifier); ok {
		return classifier.ComputeIsAsync(deps)
	}
	_, hasSync := handler.(evaluator.SyncHandler)
	_, hasAsync := handler.(evaluator.AsyncHandler)
	if hasSync && !hasAsync {
		return false
	}
	return hasAsync
}
