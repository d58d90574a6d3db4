package io

import (
	"github.com/matzehuels/neuronpath/pkg/errors"
	"github.com/matzehuels/neuronpath/pkg/graph"
	"github.com/matzehuels/neuronpath/pkg/node"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
)

// DefaultPathName names the path of a single-path document.
const DefaultPathName = "default"

// Key is the node type of every path read by this package.
type Key = node.RegionLayer

// Edge is a directed edge between region/layer keys.
type Edge = graph.Edge[Key]

// Path is one named connectivity path.
type Path struct {
	Name    string `json:"name"`
	Edges   []Edge `json:"edges"`
	Linkers []Edge `json:"linkers,omitempty"`
}

// Graph returns the path as a graph, with linkers appended to the edges.
func (p Path) Graph() *graph.Graph[Key] {
	return graph.ToGraph(p.Edges, p.Linkers...)
}

// PathSet is an ordered collection of uniquely named paths.
type PathSet struct {
	Paths []Path `json:"paths"`
}

// Get returns the path called name.
func (ps *PathSet) Get(name string) (Path, bool) {
	for _, p := range ps.Paths {
		if p.Name == name {
			return p, true
		}
	}
	return Path{}, false
}

// Names returns the path names in order.
func (ps *PathSet) Names() []string {
	out := make([]string, len(ps.Paths))
	for i, p := range ps.Paths {
		out[i] = p.Name
	}
	return out
}

// Validate checks path names and node identifiers. A region may not be
// [rdflist.DefaultLayerTerm] or any non-empty term in reserved, since the
// list encoding could not tell it from a layer attachment.
func (ps *PathSet) Validate(reserved ...string) error {
	seen := make(map[string]bool, len(ps.Paths))
	for _, p := range ps.Paths {
		if err := errors.ValidatePathName(p.Name); err != nil {
			return err
		}
		if seen[p.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate path name %q", p.Name)
		}
		seen[p.Name] = true
		for _, list := range [][]Edge{p.Edges, p.Linkers} {
			for _, e := range list {
				for _, k := range []Key{e.From, e.To} {
					if err := errors.ValidateNodeID(k.Canonical()); err != nil {
						return errors.Wrap(errors.ErrCodeInvalidNode, err, "path %s: edge %v", p.Name, e)
					}
					if isReserved(k.Region, reserved) {
						return errors.New(errors.ErrCodeInvalidNode, "path %s: edge %v: region %q is reserved", p.Name, e, k.Region)
					}
				}
			}
		}
	}
	return nil
}

func isReserved(region string, reserved []string) bool {
	if region == rdflist.DefaultLayerTerm {
		return true
	}
	for _, t := range reserved {
		if t != "" && region == t {
			return true
		}
	}
	return false
}

// parseEdge parses a from/to pair of node texts.
func parseEdge(from, to string) (Edge, error) {
	f, err := node.ParseRegionLayer(from)
	if err != nil {
		return Edge{}, errors.Wrap(errors.ErrCodeInvalidNode, err, "from %q", from)
	}
	t, err := node.ParseRegionLayer(to)
	if err != nil {
		return Edge{}, errors.Wrap(errors.ErrCodeInvalidNode, err, "to %q", to)
	}
	return graph.E(f, t), nil
}
