package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/neuronpath/pkg/errors"
	pio "github.com/matzehuels/neuronpath/pkg/io"
)

// stdinArg names standard input on the command line.
const stdinArg = "-"

// inputOpts holds the flags shared by commands that read a path set.
type inputOpts struct {
	format string   // input format when reading stdin or an unknown extension
	names  []string // restrict to these path names
}

func (o *inputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "input-format", "", "path set format: json, toml, csv (default from extension, json for stdin)")
	cmd.Flags().StringSliceVarP(&o.names, "path", "p", nil, "only process the named path(s)")
}

// loadPathSet reads the path set named by arg, or stdin for "-", and keeps
// only the paths selected with --path.
func loadPathSet(cmd *cobra.Command, arg string, opts inputOpts) (*pio.PathSet, error) {
	var (
		ps  *pio.PathSet
		err error
	)
	switch {
	case arg == stdinArg:
		format := opts.format
		if format == "" {
			format = pio.FormatJSON
		}
		ps, err = pio.Read(cmd.InOrStdin(), format)
	case opts.format != "":
		var f *os.File
		f, err = openInput(arg)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		ps, err = pio.Read(f, opts.format)
	default:
		ps, err = pio.Import(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", displayName(arg), err)
	}
	return selectPaths(ps, opts.names)
}

// selectPaths returns the paths of ps named in names, in the order given.
// An empty names keeps every path.
func selectPaths(ps *pio.PathSet, names []string) (*pio.PathSet, error) {
	if len(names) == 0 {
		return ps, nil
	}
	out := &pio.PathSet{}
	for _, name := range names {
		p, ok := ps.Get(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no path named %q (have %s)", name, strings.Join(ps.Names(), ", "))
		}
		out.Paths = append(out.Paths, p)
	}
	return out, nil
}

// readInput returns the contents of arg, or stdin for "-".
func readInput(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == stdinArg {
		return io.ReadAll(cmd.InOrStdin())
	}
	f, err := openInput(arg)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func displayName(arg string) string {
	if arg == stdinArg {
		return "stdin"
	}
	return arg
}

// baseName returns arg without directory or extension, used to derive
// output names.
func baseName(arg string) string {
	if arg == stdinArg || arg == "" {
		return appName
	}
	base := filepath.Base(arg)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == stdinArg {
		_, err := stdout(cmd).Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
