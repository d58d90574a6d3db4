package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/neuronpath/pkg/errors"
)

// Supported file formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatCSV  = "csv"
)

// FormatFromPath returns the format implied by path's extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported path set format: %s", path)
}

// Read decodes a path set in the given format and validates it.
func Read(r io.Reader, format string) (*PathSet, error) {
	var (
		ps  *PathSet
		err error
	)
	switch format {
	case FormatJSON:
		ps, err = readJSON(r)
	case FormatTOML:
		ps, err = readTOML(r)
	case FormatCSV:
		ps, err = readCSV(r)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported path set format: %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// ReadJSON decodes a JSON path set from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*PathSet, error) { return Read(r, FormatJSON) }

// ReadTOML decodes a TOML path set from r.
func ReadTOML(r io.Reader) (*PathSet, error) { return Read(r, FormatTOML) }

// ReadCSV decodes a CSV path set from r.
func ReadCSV(r io.Reader) (*PathSet, error) { return Read(r, FormatCSV) }

// Import reads the path set file at path, choosing the format from its
// extension.
func Import(path string) (*PathSet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}

func readJSON(r io.Reader) (*PathSet, error) {
	var doc struct {
		Paths   []Path `json:"paths"`
		Edges   []Edge `json:"edges"`
		Linkers []Edge `json:"linkers"`
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	switch {
	case doc.Paths != nil && (doc.Edges != nil || doc.Linkers != nil):
		return nil, errors.New(errors.ErrCodeInvalidFormat, "document has both paths and top-level edges")
	case doc.Paths == nil:
		return &PathSet{Paths: []Path{{Name: DefaultPathName, Edges: doc.Edges, Linkers: doc.Linkers}}}, nil
	}
	return &PathSet{Paths: doc.Paths}, nil
}

type tomlDoc struct {
	Path []tomlPath `toml:"path"`
}

type tomlPath struct {
	Name    string     `toml:"name"`
	Edges   [][]string `toml:"edges"`
	Linkers [][]string `toml:"linkers,omitempty"`
}

func readTOML(r io.Reader) (*PathSet, error) {
	var doc tomlDoc
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown toml key %s", keys[0])
	}

	ps := &PathSet{}
	for _, tp := range doc.Path {
		p := Path{Name: tp.Name}
		if p.Edges, err = tomlEdges(tp.Name, tp.Edges); err != nil {
			return nil, err
		}
		if p.Linkers, err = tomlEdges(tp.Name, tp.Linkers); err != nil {
			return nil, err
		}
		ps.Paths = append(ps.Paths, p)
	}
	return ps, nil
}

func tomlEdges(name string, pairs [][]string) ([]Edge, error) {
	var out []Edge
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "path %s: edge %d has %d elements, want 2", name, i, len(pair))
		}
		e, err := parseEdge(pair[0], pair[1])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "path %s: edge %d", name, i)
		}
		out = append(out, e)
	}
	return out, nil
}

func readCSV(r io.Reader) (*PathSet, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return &PathSet{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv header")
	}
	col := map[string]int{"path": -1, "from": -1, "to": -1, "linker": -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if _, ok := col[h]; ok {
			col[h] = i
		}
	}
	if col["from"] < 0 || col["to"] < 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "csv header must name from and to columns, got %v", header)
	}

	ps := &PathSet{}
	index := make(map[string]int)
	field := func(rec []string, name string) string {
		if i := col[name]; i >= 0 && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv")
		}
		line, _ := cr.FieldPos(0)
		from, to := field(rec, "from"), field(rec, "to")
		if from == "" && to == "" {
			continue
		}
		e, err := parseEdge(from, to)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "csv line %d", line)
		}

		name := field(rec, "path")
		if name == "" {
			name = DefaultPathName
		}
		i, ok := index[name]
		if !ok {
			i = len(ps.Paths)
			index[name] = i
			ps.Paths = append(ps.Paths, Path{Name: name})
		}
		if truthy(field(rec, "linker")) {
			ps.Paths[i].Linkers = append(ps.Paths[i].Linkers, e)
		} else {
			ps.Paths[i].Edges = append(ps.Paths[i].Edges, e)
		}
	}
	return ps, nil
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}
