// Package pattern compiles and evaluates structural node patterns written
// in an s-expression notation:
//
//	(or (`send nil? :has_css? $...) (`send nil? :has_css? $...))
//
// A pattern is compiled once into an immutable tree of matcher nodes and can
// then be evaluated against any number of syntax trees, concurrently.
// Operands of commutative categories (or, and) match in either order; the
// captures still fill their slots in the order they are written.
package pattern
