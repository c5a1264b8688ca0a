// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import "sort"

// Number is the set of scalar types supported by the predefined operators.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Plus returns x + y.
func Plus[T Number](x, y T) T { return x + y }

// Minus returns x - y.
func Minus[T Number](x, y T) T { return x - y }

// Times returns x * y.
func Times[T Number](x, y T) T { return x * y }

// Max returns the largest of x and y.
func Max[T Number](x, y T) T {
	if x >= y {
		return x
	}
	return y
}

// Min returns the smallest of x and y.
func Min[T Number](x, y T) T {
	if x <= y {
		return x
	}
	return y
}

// OperatorByName returns the predefined operator with the given name, one of
// plus, minus, times, max or min.
func OperatorByName[T Number](name string) (func(T, T) T, bool) {
	switch name {
	case "plus", "sum", "+":
		return Plus[T], true
	case "minus", "-":
		return Minus[T], true
	case "times", "product", "*":
		return Times[T], true
	case "max":
		return Max[T], true
	case "min":
		return Min[T], true
	}
	return nil, false
}

// OperatorNames returns the names accepted by OperatorByName, sorted.
func OperatorNames() []string {
	res := []string{"plus", "minus", "times", "max", "min"}
	sort.Strings(res)
	return res
}
