package lp

import "testing"

func TestAddVarAssignsSequentialIDs(t *testing.T) {
	m := NewModel()
	a := m.AddContinuous("a")
	b := m.AddVar("b", -Inf, Inf, Continuous)
	if a != 0 || b != 1 {
		t.Fatalf("ids = %d, %d; want 0, 1", a, b)
	}
	if got := m.Var(b).Lo; got != -Inf {
		t.Fatalf("lo = %g, want -Inf", got)
	}
}

func TestDuplicateNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate variable name")
		}
	}()
	m := NewModel()
	m.AddContinuous("x")
	m.AddContinuous("x")
}

func TestExprDropsZeroCoefficients(t *testing.T) {
	m := NewModel()
	x := m.AddContinuous("x")
	var e Expr
	e.Add(0, x)
	if !e.Empty() {
		t.Fatal("zero coefficient must not create a term")
	}
	e.Add(2, x)
	if len(e.Terms) != 1 {
		t.Fatalf("terms = %d, want 1", len(e.Terms))
	}
}

func TestConstraintFoldsConstantIntoRHS(t *testing.T) {
	m := NewModel()
	x := m.AddContinuous("x")
	var e Expr
	e.Add(1, x)
	e.AddConst(3)
	m.AddLe("c", e, 10)
	c := m.Constraints()[0]
	if c.RHS != 7 {
		t.Fatalf("rhs = %g, want 7", c.RHS)
	}
	if c.Sense != LE {
		t.Fatalf("sense = %v, want LE", c.Sense)
	}
}

func TestFixPinsBounds(t *testing.T) {
	m := NewModel()
	x := m.AddContinuous("x")
	m.Fix(x, 4)
	v := m.Var(x)
	if v.Lo != 4 || v.Hi != 4 {
		t.Fatalf("bounds = [%g, %g], want [4, 4]", v.Lo, v.Hi)
	}
}

func TestStats(t *testing.T) {
	m := NewModel()
	x := m.AddContinuous("x")
	y := m.AddVar("y", 0, 10, Integer)
	z := m.AddVar("z", 0, 1, Binary)
	var e Expr
	e.Add(1, x)
	e.Add(1, y)
	m.AddEq("c1", e, 1)
	var f Expr
	f.Add(1, z)
	m.AddGe("c2", f, 0)
	st := m.Stats()
	if st.Vars != 3 || st.Integers != 1 || st.Binaries != 1 {
		t.Fatalf("var stats = %+v", st)
	}
	if st.Constraints != 2 || st.Nonzeros != 3 {
		t.Fatalf("row stats = %+v", st)
	}
}
