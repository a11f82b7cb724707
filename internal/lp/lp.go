// Package lp is the minimal linear-program IR handed to solver adapters:
// variable declarations with bounds and domains, linear constraints, and a
// single affine objective to minimize. It performs no numerics.
package lp

import "fmt"

// VarID indexes a variable inside one Model.
type VarID int32

type Domain int

const (
	Continuous Domain = iota
	Integer
	Binary
)

// Inf is the bound value meaning "unbounded" in that direction.
const Inf = 1e30

type Var struct {
	ID     VarID
	Name   string
	Lo, Hi float64
	Domain Domain
}

type Term struct {
	Var  VarID
	Coef float64
}

// Expr is a linear expression. The zero value is usable.
type Expr struct {
	Terms []Term
	Const float64
}

func (e *Expr) Add(coef float64, v VarID) *Expr {
	if coef != 0 {
		e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
	}
	return e
}

func (e *Expr) AddConst(c float64) *Expr {
	e.Const += c
	return e
}

// Empty reports whether the expression has no variable terms.
func (e *Expr) Empty() bool { return len(e.Terms) == 0 }

type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

func (s Sense) String() string {
	switch s {
	case GE:
		return ">="
	case EQ:
		return "="
	default:
		return "<="
	}
}

type Constraint struct {
	Name  string
	Expr  Expr
	Sense Sense
	RHS   float64
}

// Model accumulates the program. Variable names are unique; registering a
// duplicate is a builder bug and panics (contract violation, not user
// error).
type Model struct {
	vars     []Var
	varIndex map[string]VarID
	cons     []Constraint
	obj      Expr
}

func NewModel() *Model {
	return &Model{varIndex: map[string]VarID{}}
}

// AddVar declares a variable and returns its id.
func (m *Model) AddVar(name string, lo, hi float64, d Domain) VarID {
	if _, dup := m.varIndex[name]; dup {
		panic(fmt.Sprintf("lp: duplicate variable %q", name))
	}
	id := VarID(len(m.vars))
	m.vars = append(m.vars, Var{ID: id, Name: name, Lo: lo, Hi: hi, Domain: d})
	m.varIndex[name] = id
	return id
}

// AddContinuous declares a non-negative continuous variable.
func (m *Model) AddContinuous(name string) VarID {
	return m.AddVar(name, 0, Inf, Continuous)
}

// AddFixed declares a variable pinned to a single value.
func (m *Model) AddFixed(name string, v float64) VarID {
	return m.AddVar(name, v, v, Continuous)
}

// Fix pins an existing variable to one value.
func (m *Model) Fix(id VarID, v float64) {
	m.vars[id].Lo = v
	m.vars[id].Hi = v
}

// Lookup returns the id of a named variable.
func (m *Model) Lookup(name string) (VarID, bool) {
	id, ok := m.varIndex[name]
	return id, ok
}

func (m *Model) Var(id VarID) Var { return m.vars[id] }

func (m *Model) AddConstraint(name string, e Expr, s Sense, rhs float64) {
	m.cons = append(m.cons, Constraint{Name: name, Expr: e, Sense: s, RHS: rhs - e.Const})
}

func (m *Model) AddEq(name string, e Expr, rhs float64) { m.AddConstraint(name, e, EQ, rhs) }
func (m *Model) AddLe(name string, e Expr, rhs float64) { m.AddConstraint(name, e, LE, rhs) }
func (m *Model) AddGe(name string, e Expr, rhs float64) { m.AddConstraint(name, e, GE, rhs) }

// AddObjective accumulates a term into the minimized objective.
func (m *Model) AddObjective(coef float64, v VarID) {
	m.obj.Add(coef, v)
}

// AddObjectiveConst adds a constant offset to the objective.
func (m *Model) AddObjectiveConst(c float64) {
	m.obj.AddConst(c)
}

func (m *Model) Vars() []Var               { return m.vars }
func (m *Model) Constraints() []Constraint { return m.cons }
func (m *Model) Objective() Expr           { return m.obj }

// Stats summarizes model size for logging and metrics.
type Stats struct {
	Vars        int
	Integers    int
	Binaries    int
	Constraints int
	Nonzeros    int
}

func (m *Model) Stats() Stats {
	st := Stats{Vars: len(m.vars), Constraints: len(m.cons)}
	for _, v := range m.vars {
		switch v.Domain {
		case Integer:
			st.Integers++
		case Binary:
			st.Binaries++
		}
	}
	for _, c := range m.cons {
		st.Nonzeros += len(c.Expr.Terms)
	}
	return st
}
