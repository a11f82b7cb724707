package solver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"transplan/internal/lp"
)

// WriteLP emits the model in CPLEX LP format. Output is fully determined
// by declaration order, so identical models produce identical files.
// A constant objective offset is not representable in the format and is
// left to the caller to add back to the reported objective.
func WriteLP(w io.Writer, m *lp.Model) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Minimize")
	fmt.Fprint(bw, " obj:")
	writeExpr(bw, m, m.Objective())
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Subject To")
	for _, c := range m.Constraints() {
		fmt.Fprintf(bw, " %s:", c.Name)
		writeExpr(bw, m, c.Expr)
		fmt.Fprintf(bw, " %s %s\n", c.Sense, num(c.RHS))
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range m.Vars() {
		switch {
		case v.Lo == v.Hi:
			fmt.Fprintf(bw, " %s = %s\n", v.Name, num(v.Lo))
		case v.Lo <= -lp.Inf && v.Hi >= lp.Inf:
			fmt.Fprintf(bw, " %s free\n", v.Name)
		case v.Lo <= -lp.Inf:
			fmt.Fprintf(bw, " -inf <= %s <= %s\n", v.Name, num(v.Hi))
		case v.Hi >= lp.Inf:
			if v.Lo != 0 {
				fmt.Fprintf(bw, " %s >= %s\n", v.Name, num(v.Lo))
			}
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", num(v.Lo), v.Name, num(v.Hi))
		}
	}

	if hasDomain(m, lp.Integer) {
		fmt.Fprintln(bw, "Generals")
		for _, v := range m.Vars() {
			if v.Domain == lp.Integer {
				fmt.Fprintf(bw, " %s\n", v.Name)
			}
		}
	}
	if hasDomain(m, lp.Binary) {
		fmt.Fprintln(bw, "Binaries")
		for _, v := range m.Vars() {
			if v.Domain == lp.Binary {
				fmt.Fprintf(bw, " %s\n", v.Name)
			}
		}
	}

	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

// writeExpr prints the terms of an expression, wrapping long rows so no
// line exceeds the conservative limits of older LP readers.
func writeExpr(bw *bufio.Writer, m *lp.Model, e lp.Expr) {
	perLine := 0
	for _, t := range e.Terms {
		if perLine == 8 {
			fmt.Fprint(bw, "\n  ")
			perLine = 0
		}
		name := m.Var(t.Var).Name
		if t.Coef >= 0 {
			fmt.Fprintf(bw, " + %s %s", num(t.Coef), name)
		} else {
			fmt.Fprintf(bw, " - %s %s", num(-t.Coef), name)
		}
		perLine++
	}
	if len(e.Terms) == 0 && len(m.Vars()) > 0 {
		fmt.Fprintf(bw, " 0 %s", m.Vars()[0].Name)
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func hasDomain(m *lp.Model, d lp.Domain) bool {
	for _, v := range m.Vars() {
		if v.Domain == d {
			return true
		}
	}
	return false
}
