// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
)

// stats returns information about the node table of b.
func (b *Diagram[T]) stats() string {
	res := fmt.Sprintf("Variables:  %d\n", len(b.order))
	res += fmt.Sprintf("Allocated:  %d\n", len(b.nodes))
	res += fmt.Sprintf("Produced:   %d\n", b.produced)
	r := 0.0
	if len(b.nodes) > 0 {
		r = (float64(b.freenum) / float64(len(b.nodes))) * 100
	}
	res += fmt.Sprintf("Free:       %d  (%.3g %%)\n", b.freenum, r)
	res += fmt.Sprintf("Used:       %d  (%.3g %%)", len(b.nodes)-b.freenum, (100.0 - r))
	return res
}

// String returns a short description of the diagram and its node table.
func (b *Diagram[T]) String() string {
	res := fmt.Sprintf("Root:       %d\n", b.root)
	return res + b.stats()
}

// reachable returns the nodes reachable from the root, in increasing order.
func (b *Diagram[T]) reachable() []NodeID {
	marked := b.marknodes()
	res := []NodeID{}
	for n, ok := range marked {
		if ok {
			res = append(res, NodeID(n))
		}
	}
	return res
}

// Print writes a textual description of the nodes reachable from the root of
// b, one node per line. Explicit arcs are written as label:target and the
// default arc as *:target.
func (b *Diagram[T]) Print(w io.Writer) error {
	if b.root == NoNode {
		return newError("Print", ErrMalformed, "diagram has no root")
	}
	fmt.Fprintf(w, "root: %d\n", b.root)
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, n := range b.reachable() {
		nd := b.nodes[n]
		if nd.kind == kterminal {
			fmt.Fprintf(tw, "%d\t= %v\n", n, nd.value)
			continue
		}
		fmt.Fprintf(tw, "%d\t[%s]", n, nd.v)
		for m, s := range nd.sons {
			if s != NoNode {
				fmt.Fprintf(tw, "\t%s:%d", nd.v.Label(m), s)
			}
		}
		if nd.def != NoNode {
			fmt.Fprintf(tw, "\t*:%d", nd.def)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// ************************************************************

// PrintDot writes a graph-like description of the diagram using the DOT
// format. Nodes are listed in increasing order, so that the output is
// deterministic. Default arcs are dashed.
func (b *Diagram[T]) PrintDot(w io.Writer) error {
	if b.root == NoNode {
		return newError("PrintDot", ErrMalformed, "diagram has no root")
	}
	bw := bufio.NewWriter(w)
	b.printdot(bw, b.reachable())
	return bw.Flush()
}

// FPrintDot writes the DOT description of b in file filename, or on the
// standard output if filename is "-".
func (b *Diagram[T]) FPrintDot(filename string) error {
	if filename == "-" {
		return b.PrintDot(os.Stdout)
	}
	out, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer out.Close()
	return b.PrintDot(out)
}

func (b *Diagram[T]) printdot(w *bufio.Writer, nodes []NodeID) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	fmt.Fprintln(w, "digraph G {")
	for _, n := range nodes {
		nd := b.nodes[n]
		if nd.kind == kterminal {
			fmt.Fprintf(w, "%d [shape=box, label=%q];\n", n, fmt.Sprint(nd.value))
			continue
		}
		fmt.Fprintf(w, "%d [label=%q];\n", n, nd.v.name)
		for m, s := range nd.sons {
			if s != NoNode {
				fmt.Fprintf(w, "%d -> %d [label=%q];\n", n, s, nd.v.Label(m))
			}
		}
		if nd.def != NoNode {
			fmt.Fprintf(w, "%d -> %d [style=dashed];\n", n, nd.def)
		}
	}
	fmt.Fprintln(w, "}")
}
