// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

var _VARID uint64

// Variable is a discrete dimension with a finite domain. Variables are compared
// by identity (pointer equality), never by name, so that two variables with the
// same name in different models stay distinct.
type Variable struct {
	id     uint64   // unique identifier, used when hashing nodes
	name   string   // name of the variable, only used for printing
	size   int      // size of the domain
	labels []string // optional labels for the modalities
}

// NewVariable returns a new variable with a domain of the given size. The
// modalities of the variable are the integers in [0..size). It panics if size
// is not positive or larger than math.MaxInt32.
func NewVariable(name string, size int) *Variable {
	if size < 1 || size > math.MaxInt32 {
		panic(fmt.Sprintf("fgraph: bad domain size (%d) for variable %s", size, name))
	}
	return &Variable{
		id:   atomic.AddUint64(&_VARID, 1),
		name: name,
		size: size,
	}
}

// NewLabelledVariable returns a new variable with one modality for each label.
// The modality of a label is its index in labels.
func NewLabelledVariable(name string, labels ...string) *Variable {
	v := NewVariable(name, len(labels))
	v.labels = append([]string(nil), labels...)
	return v
}

// Name returns the name of variable v.
func (v *Variable) Name() string {
	return v.name
}

// Size returns the size of the domain of v.
func (v *Variable) Size() int {
	return v.size
}

// Label returns a printable label for modality m of v.
func (v *Variable) Label(m int) string {
	if m >= 0 && m < len(v.labels) {
		return v.labels[m]
	}
	return strconv.Itoa(m)
}

// Modality returns the modality corresponding to a label. Labels that are
// integers in the domain are also accepted when v has no explicit labels.
func (v *Variable) Modality(label string) (int, bool) {
	for k, l := range v.labels {
		if l == label {
			return k, true
		}
	}
	if len(v.labels) == 0 {
		if m, err := strconv.Atoi(label); err == nil && m >= 0 && m < v.size {
			return m, true
		}
	}
	return -1, false
}

func (v *Variable) String() string {
	return v.name
}
