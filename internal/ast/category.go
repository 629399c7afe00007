package ast

// Category identifies the syntactic kind of a Node. The set is closed; the
// pattern language refers to categories by their String() names.
type Category uint8

const (
	// Invalid is the zero value and never produced by the parser.
	Invalid Category = iota

	// Send is a method call: (send receiver :name args...).
	Send
	// CSend is a safe-navigation call: (csend receiver :name args...).
	CSend
	// Block is a call with a block: (block call args body).
	Block
	// Args is a block or method parameter list.
	Args
	// Arg is a single parameter: (arg :name).
	Arg
	// Or is a logical disjunction written as || or or.
	Or
	// And is a logical conjunction written as && or and.
	And
	// Begin groups statements or a parenthesised expression.
	Begin
	// If is a conditional, ternary or modifier: (if cond then else).
	If
	// Def is a method definition: (def :name args body).
	Def
	// Return is a return statement with an optional value.
	Return
	// LVar is a read of a local variable.
	LVar
	// LVAsgn is a local variable assignment: (lvasgn :name value).
	LVAsgn
	// IVar is a read of an instance variable.
	IVar
	// IVAsgn is an instance variable assignment: (ivasgn :@name value).
	IVAsgn
	// Const is a constant reference: (const scope :Name).
	Const
	// Array is an array literal.
	Array
	// Hash is a hash literal or trailing keyword arguments.
	Hash
	// Pair is a key/value entry in a Hash.
	Pair
	// Splat is a *rest argument or element.
	Splat
	// BlockPass is a &block argument.
	BlockPass
	// Str is a string literal without interpolation.
	Str
	// DStr is an interpolated string literal.
	DStr
	// Sym is a symbol literal.
	Sym
	// Int is an integer literal.
	Int
	// Float is a float literal.
	Float
	// Nil is the nil literal.
	Nil
	// True is the true literal.
	True
	// False is the false literal.
	False
	// Self is the self keyword.
	Self

	// abstract categories exist only for polymorphic pattern matches

	// Call is any method call (send, csend).
	Call
	// Logical is any short-circuit operator (or, and).
	Logical
	// Literal is any literal value.
	Literal

	categoryCount
)

var categoryNames = [categoryCount]string{
	Invalid:   "invalid",
	Send:      "send",
	CSend:     "csend",
	Block:     "block",
	Args:      "args",
	Arg:       "arg",
	Or:        "or",
	And:       "and",
	Begin:     "begin",
	If:        "if",
	Def:       "def",
	Return:    "return",
	LVar:      "lvar",
	LVAsgn:    "lvasgn",
	IVar:      "ivar",
	IVAsgn:    "ivasgn",
	Const:     "const",
	Array:     "array",
	Hash:      "hash",
	Pair:      "pair",
	Splat:     "splat",
	BlockPass: "block_pass",
	Str:       "str",
	DStr:      "dstr",
	Sym:       "sym",
	Int:       "int",
	Float:     "float",
	Nil:       "nil",
	True:      "true",
	False:     "false",
	Self:      "self",
	Call:      "call",
	Logical:   "logical",
	Literal:   "literal",
}

var categoryByName = func() map[string]Category {
	m := make(map[string]Category, categoryCount)
	for c := Category(1); c < categoryCount; c++ {
		m[categoryNames[c]] = c
	}
	return m
}()

func (c Category) String() string {
	if c < categoryCount {
		return categoryNames[c]
	}
	return "unknown"
}

// ParseCategory resolves a pattern name such as "send" or "call".
func ParseCategory(name string) (Category, bool) {
	c, ok := categoryByName[name]
	return c, ok
}

// Abstract reports whether the category is only a matching supertype and
// never labels a parsed node.
func (c Category) Abstract() bool {
	return c >= Call && c < categoryCount
}

// Commutative reports whether the operands of the category may be swapped
// without changing meaning. Patterns on these categories match operands in
// either order.
func (c Category) Commutative() bool {
	return c == Or || c == And
}

// parents is the is-a table: each entry lists the direct supertypes.
var parents = [categoryCount][]Category{
	Send:  {Call},
	CSend: {Send},
	Or:    {Logical},
	And:   {Logical},
	Str:   {Literal},
	DStr:  {Literal},
	Sym:   {Literal},
	Int:   {Literal},
	Float: {Literal},
	Nil:   {Literal},
	True:  {Literal},
	False: {Literal},
}

// IsA reports whether c equals target or is (transitively) a subtype of it.
// csend is-a send, so patterns written for send also accept safe navigation
// when they ask for polymorphic matching.
func IsA(c, target Category) bool {
	if c == target {
		return true
	}
	if c >= categoryCount {
		return false
	}
	for _, p := range parents[c] {
		if IsA(p, target) {
			return true
		}
	}
	return false
}

// Subtypes returns every concrete category that is-a target, target
// included when it is concrete. Order is stable.
func Subtypes(target Category) []Category {
	var out []Category
	for c := Category(1); c < Call; c++ {
		if IsA(c, target) {
			out = append(out, c)
		}
	}
	return out
}
