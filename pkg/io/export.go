package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/neuronpath/pkg/errors"
)

// Write encodes ps in the given format.
func Write(ps *PathSet, w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		return WriteJSON(ps, w)
	case FormatTOML:
		return WriteTOML(ps, w)
	case FormatCSV:
		return WriteCSV(ps, w)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported path set format: %q", format)
}

// WriteJSON encodes ps as indented JSON. The output can be re-imported
// with [ReadJSON].
func WriteJSON(ps *PathSet, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ps); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTOML encodes ps as an array of [[path]] tables.
func WriteTOML(ps *PathSet, w io.Writer) error {
	doc := tomlDoc{Path: make([]tomlPath, len(ps.Paths))}
	for i, p := range ps.Paths {
		doc.Path[i] = tomlPath{Name: p.Name, Edges: pairs(p.Edges), Linkers: pairs(p.Linkers)}
	}
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func pairs(edges []Edge) [][]string {
	if len(edges) == 0 {
		return nil
	}
	out := make([][]string, len(edges))
	for i, e := range edges {
		out[i] = []string{e.From.Canonical(), e.To.Canonical()}
	}
	return out
}

// WriteCSV encodes ps with a path,from,to,linker header.
func WriteCSV(ps *PathSet, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "from", "to", "linker"}); err != nil {
		return err
	}
	for _, p := range ps.Paths {
		for _, e := range p.Edges {
			if err := cw.Write([]string{p.Name, e.From.Canonical(), e.To.Canonical(), ""}); err != nil {
				return err
			}
		}
		for _, e := range p.Linkers {
			if err := cw.Write([]string{p.Name, e.From.Canonical(), e.To.Canonical(), "true"}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export writes ps to path, choosing the format from its extension.
func Export(ps *PathSet, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(ps, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
