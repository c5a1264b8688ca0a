package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/agrumery/fgraph"
)

// DiagramFile is the YAML description of a diagram given by the table of its
// values. Values are listed in the lexicographic order of the assignments of
// the variables in Order, the last variable varying fastest.
type DiagramFile struct {
	Variables []VariableSpec `yaml:"variables"`
	Order     []string       `yaml:"order"`
	Table     []float64      `yaml:"table"`
}

// VariableSpec declares a variable, either with its domain size or with the
// list of its labels.
type VariableSpec struct {
	Name   string   `yaml:"name"`
	Size   int      `yaml:"size,omitempty"`
	Labels []string `yaml:"labels,omitempty"`
}

// Registry shares variables by name between the files loaded in one
// invocation, so that diagrams read from different files can be combined. It
// is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	vars   map[string]*fgraph.Variable
	labels map[string][]string // labels given in the first declaration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		vars:   make(map[string]*fgraph.Variable),
		labels: make(map[string][]string),
	}
}

// Declare returns the variable described by spec, creating it if this is the
// first declaration of its name. We return an error if spec is inconsistent,
// or if it does not match a previous declaration. A variable declared without
// labels has the labels "0", "1", ...; two declarations match when they have
// the same size and the same labels, whatever the order in which they are
// made.
func (r *Registry) Declare(spec VariableSpec) (*fgraph.Variable, error) {
	if spec.Name == "" {
		return nil, errors.New("variable without a name")
	}
	size := spec.Size
	if len(spec.Labels) > 0 {
		if size != 0 && size != len(spec.Labels) {
			return nil, fmt.Errorf("variable %s: size %d does not match %d labels", spec.Name, size, len(spec.Labels))
		}
		size = len(spec.Labels)
	}
	if size < 1 || size > math.MaxInt32 {
		return nil, fmt.Errorf("variable %s: domain size %d out of range", spec.Name, size)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.vars[spec.Name]; ok {
		if v.Size() != size {
			return nil, fmt.Errorf("variable %s declared with sizes %d and %d", spec.Name, v.Size(), size)
		}
		if prev := r.labels[spec.Name]; len(prev) > 0 || len(spec.Labels) > 0 {
			for m := 0; m < size; m++ {
				if l := labelof(spec.Labels, m); v.Label(m) != l {
					return nil, fmt.Errorf("variable %s: label %d declared as %q and %q", spec.Name, m, v.Label(m), l)
				}
			}
		}
		return v, nil
	}
	var v *fgraph.Variable
	if len(spec.Labels) > 0 {
		v = fgraph.NewLabelledVariable(spec.Name, spec.Labels...)
	} else {
		v = fgraph.NewVariable(spec.Name, size)
	}
	r.vars[spec.Name] = v
	r.labels[spec.Name] = spec.Labels
	return v, nil
}

func labelof(labels []string, m int) string {
	if m < len(labels) {
		return labels[m]
	}
	return strconv.Itoa(m)
}

// Lookup returns the variable with the given name.
func (r *Registry) Lookup(name string) (*fgraph.Variable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vars[name]
	return v, ok
}

// ParseDiagram decodes the YAML description of a diagram, rejecting unknown
// fields, and builds the corresponding canonical diagram.
func ParseDiagram(data []byte, reg *Registry, options ...fgraph.Option) (*fgraph.Diagram[float64], error) {
	var f DiagramFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding diagram: %w", err)
	}
	declared := make(map[string]*fgraph.Variable, len(f.Variables))
	for _, spec := range f.Variables {
		v, err := reg.Declare(spec)
		if err != nil {
			return nil, err
		}
		declared[spec.Name] = v
	}
	order := make([]*fgraph.Variable, len(f.Order))
	size := 1
	for k, name := range f.Order {
		v, ok := declared[name]
		if !ok {
			return nil, fmt.Errorf("variable %s in order is not declared", name)
		}
		order[k] = v
		size *= v.Size()
	}
	if len(f.Table) != size {
		return nil, fmt.Errorf("table has %d values, expected %d", len(f.Table), size)
	}
	next := 0
	return fgraph.Build(order, func([]int) float64 {
		next++
		return f.Table[next-1]
	}, options...)
}

// LoadDiagram reads and parses the diagram in file path.
func LoadDiagram(path string, reg *Registry, options ...fgraph.Option) (*fgraph.Diagram[float64], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := ParseDiagram(data, reg, options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// LoadDiagrams loads several files in parallel. The result has one diagram for
// each path, in the same order. We stop at the first error.
func LoadDiagrams(ctx context.Context, reg *Registry, paths []string, options ...fgraph.Option) ([]*fgraph.Diagram[float64], error) {
	res := make([]*fgraph.Diagram[float64], len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			d, err := LoadDiagram(path, reg, options...)
			if err != nil {
				return err
			}
			res[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
