package ontology

import (
	"sort"

	"github.com/teranos/gaffer/annotation"
)

// Term is one ontology class.
type Term struct {
	ID         annotation.Curie
	Label      string
	Namespace  string
	Obsolete   bool
	ReplacedBy []annotation.Curie
	Subsets    []string
}

// Edge is a subject-predicate-object triple between two classes.
type Edge struct {
	Sub  annotation.Curie
	Pred annotation.Curie
	Obj  annotation.Curie
}

// Graph is an in-memory Lookup. Build it with AddTerm/AddEdge and treat it as
// read-only afterwards.
type Graph struct {
	ID string

	terms    map[annotation.Curie]*Term
	parents  map[annotation.Curie][]Edge
	children map[annotation.Curie][]Edge
	subsets  map[string][]annotation.Curie
}

var _ Lookup = (*Graph)(nil)

// NewGraph returns an empty graph.
func NewGraph(id string) *Graph {
	return &Graph{
		ID:       id,
		terms:    make(map[annotation.Curie]*Term),
		parents:  make(map[annotation.Curie][]Edge),
		children: make(map[annotation.Curie][]Edge),
		subsets:  make(map[string][]annotation.Curie),
	}
}

// AddTerm inserts or replaces a class.
func (g *Graph) AddTerm(t Term) {
	if prev, ok := g.terms[t.ID]; ok {
		for _, s := range prev.Subsets {
			g.subsets[s] = removeCurie(g.subsets[s], t.ID)
		}
	}
	term := t
	g.terms[t.ID] = &term
	for _, s := range t.Subsets {
		g.subsets[s] = append(g.subsets[s], t.ID)
	}
}

// AddEdge records sub --pred--> obj.
func (g *Graph) AddEdge(sub, pred, obj annotation.Curie) {
	e := Edge{Sub: sub, Pred: pred, Obj: obj}
	g.parents[sub] = append(g.parents[sub], e)
	g.children[obj] = append(g.children[obj], e)
}

// Len returns the number of classes.
func (g *Graph) Len() int {
	return len(g.terms)
}

func (g *Graph) Ancestors(term annotation.Curie, predicates []annotation.Curie, reflexive bool) []annotation.Curie {
	return g.walk(term, predicates, reflexive, g.parents, func(e Edge) annotation.Curie { return e.Obj })
}

func (g *Graph) Descendants(term annotation.Curie, predicates []annotation.Curie, reflexive bool) []annotation.Curie {
	return g.walk(term, predicates, reflexive, g.children, func(e Edge) annotation.Curie { return e.Sub })
}

func (g *Graph) walk(start annotation.Curie, predicates []annotation.Curie, reflexive bool,
	adj map[annotation.Curie][]Edge, next func(Edge) annotation.Curie) []annotation.Curie {

	seen := map[annotation.Curie]bool{start: true}
	queue := []annotation.Curie{start}
	var out []annotation.Curie
	if reflexive {
		out = append(out, start)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			if len(predicates) > 0 && !annotation.ContainsCurie(predicates, e.Pred) {
				continue
			}
			n := next(e)
			if seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
			queue = append(queue, n)
		}
	}
	sortCuries(out)
	return out
}

func (g *Graph) IsObsolete(term annotation.Curie) bool {
	t, ok := g.terms[term]
	return ok && t.Obsolete
}

func (g *Graph) ReplacedBy(term annotation.Curie) []annotation.Curie {
	if t, ok := g.terms[term]; ok {
		return t.ReplacedBy
	}
	return nil
}

func (g *Graph) Namespace(term annotation.Curie) string {
	if t, ok := g.terms[term]; ok {
		return t.Namespace
	}
	return ""
}

func (g *Graph) Subset(name string) []annotation.Curie {
	members := append([]annotation.Curie(nil), g.subsets[name]...)
	sortCuries(members)
	return members
}

func (g *Graph) Label(term annotation.Curie) (string, bool) {
	if t, ok := g.terms[term]; ok && t.Label != "" {
		return t.Label, true
	}
	return "", false
}

func (g *Graph) Has(term annotation.Curie) bool {
	_, ok := g.terms[term]
	return ok
}

// Terms returns every class in identifier order.
func (g *Graph) Terms() []Term {
	out := make([]Term, 0, len(g.terms))
	for _, t := range g.terms {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

func sortCuries(cs []annotation.Curie) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].String() < cs[j].String() })
}

func removeCurie(cs []annotation.Curie, c annotation.Curie) []annotation.Curie {
	out := cs[:0]
	for _, e := range cs {
		if e != c {
			out = append(out, e)
		}
	}
	return out
}
