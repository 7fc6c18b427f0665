package pipeline

import (
	"sort"
	"sync"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/ontology"
)

// Slimmer maps terms to the most specific members of a slim (a subset of
// high level classes) that subsume them.
type Slimmer struct {
	onto  ontology.Lookup
	slim  map[annotation.Curie]bool
	preds []annotation.Curie

	mu    sync.Mutex
	cache map[annotation.Curie][]annotation.Curie
}

// NewSlimmer maps over is_a and part_of unless other predicates are given.
func NewSlimmer(onto ontology.Lookup, slim []annotation.Curie, preds ...annotation.Curie) (*Slimmer, error) {
	if onto == nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, "slim mapping needs an ontology")
	}
	if len(slim) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidConfig, "slim is empty")
	}
	if len(preds) == 0 {
		preds = []annotation.Curie{ontology.IsA, ontology.PartOf}
	}
	return &Slimmer{
		onto:  onto,
		slim:  ontology.Set(slim),
		preds: preds,
		cache: make(map[annotation.Curie][]annotation.Curie),
	}, nil
}

// NewSubsetSlimmer uses the members of a named ontology subset as the slim.
func NewSubsetSlimmer(onto ontology.Lookup, subset string) (*Slimmer, error) {
	if onto == nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, "slim mapping needs an ontology")
	}
	members := onto.Subset(subset)
	if len(members) == 0 {
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrNotFound, "subset %q has no members", subset),
			"subset names look like goslim_generic or goslim_pombe",
		)
	}
	return NewSlimmer(onto, members)
}

// Map returns the nearest slim terms subsuming term, sorted. A slim term
// is dropped when another mapped slim term lies below it.
func (s *Slimmer) Map(term annotation.Curie) []annotation.Curie {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.cache[term]; ok {
		return m
	}

	var candidates []annotation.Curie
	for _, anc := range s.onto.Ancestors(term, s.preds, true) {
		if s.slim[anc] {
			candidates = append(candidates, anc)
		}
	}
	var nearest []annotation.Curie
	for _, cand := range candidates {
		redundant := false
		for _, other := range candidates {
			if other == cand {
				continue
			}
			if annotation.ContainsCurie(s.onto.Ancestors(other, s.preds, false), cand) {
				redundant = true
				break
			}
		}
		if !redundant {
			nearest = append(nearest, cand)
		}
	}
	sort.Slice(nearest, func(i, j int) bool { return nearest[i].String() < nearest[j].String() })
	s.cache[term] = nearest
	return nearest
}

// Apply returns one copy of a per slim term its object maps to, or nil.
func (s *Slimmer) Apply(a *annotation.Association) []*annotation.Association {
	mapped := s.Map(a.Object.ID)
	out := make([]*annotation.Association, 0, len(mapped))
	for _, term := range mapped {
		c := a.Clone()
		c.Object.ID = term
		out = append(out, c)
	}
	return out
}
