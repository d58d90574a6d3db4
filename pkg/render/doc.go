// Package render draws connectivity paths.
//
// The [nodelink] subpackage renders a path as a Graphviz node-link diagram
// with its chain decomposition highlighted. This package holds the output
// formats shared by the CLI, the pipeline and the HTTP API.
//
// [nodelink]: github.com/matzehuels/neuronpath/pkg/render/nodelink
package render
