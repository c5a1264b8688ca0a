// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

// FuseOrder returns a total order over the union of the variables in a and b,
// where each variable occurs exactly once. We walk the two sequences with two
// cursors and, at each step, apply the first of the following rules that
// matches:
//
//   - skip the head of a (resp. b) if it has already been placed;
//   - place the head of a if it does not occur in b and is not excluded;
//   - place the head of b if it does not occur in a and is not excluded;
//   - place the common head once if both heads are equal;
//   - otherwise (conflict) place the head of a.
//
// When one cursor is exhausted, we append the rest of the other sequence. The
// policy is greedy and biased toward a: on conflicts the order of a wins.
// Excluded variables (typically primed variables that act as fixed parameters)
// are never placed ahead of a variable of the other sequence that they are not
// shared with.
func FuseOrder(a, b []*Variable, excluded ...*Variable) []*Variable {
	ina := make(map[*Variable]bool, len(a))
	for _, v := range a {
		ina[v] = true
	}
	inb := make(map[*Variable]bool, len(b))
	for _, v := range b {
		inb[v] = true
	}
	ex := make(map[*Variable]bool, len(excluded))
	for _, v := range excluded {
		ex[v] = true
	}
	placed := make(map[*Variable]bool, len(a)+len(b))
	res := make([]*Variable, 0, len(a)+len(b))
	add := func(v *Variable) {
		placed[v] = true
		res = append(res, v)
	}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case placed[a[i]]:
			i++
		case placed[b[j]]:
			j++
		case !inb[a[i]] && !ex[a[i]]:
			add(a[i])
			i++
		case !ina[b[j]] && !ex[b[j]]:
			add(b[j])
			j++
		case a[i] == b[j]:
			add(a[i])
			i++
			j++
		default:
			add(a[i])
			i++
		}
	}
	for ; i < len(a); i++ {
		if !placed[a[i]] {
			add(a[i])
		}
	}
	for ; j < len(b); j++ {
		if !placed[b[j]] {
			add(b[j])
		}
	}
	return res
}
