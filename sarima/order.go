package sarima

import (
	"fmt"
)

// Order is the SARIMA(p,d,q)x(P,D,Q)s specification.
type Order struct {
	P  int `json:"p"`
	D  int `json:"d"`
	Q  int `json:"q"`
	SP int `json:"seasonal_p"`
	SD int `json:"seasonal_d"`
	SQ int `json:"seasonal_q"`
	M  int `json:"s"`
}

func (o Order) String() string {
	return fmt.Sprintf("SARIMA(%d,%d,%d)x(%d,%d,%d)%d", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

// Seasonal reports whether any seasonal term is present.
func (o Order) Seasonal() bool {
	return o.SP > 0 || o.SD > 0 || o.SQ > 0
}

func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 || o.M < 0 {
		return fmt.Errorf("%s, %w", o, ErrInvalidOrder)
	}
	if o.Seasonal() && o.M < 2 {
		return fmt.Errorf("%s has seasonal terms with period %d, %w", o, o.M, ErrSeasonalPeriod)
	}
	return nil
}

// arLen is the length of the expanded autoregressive polynomial.
func (o Order) arLen() int {
	return o.P + o.SP*o.M
}

func (o Order) maLen() int {
	return o.Q + o.SQ*o.M
}

// diffLen is the number of observations consumed by differencing.
func (o Order) diffLen() int {
	return o.D + o.SD*o.M
}

// lagPoly builds 1 + sign*sum(c_i B^(i*step)).
func lagPoly(coef []float64, step int, sign float64) []float64 {
	poly := make([]float64, len(coef)*step+1)
	poly[0] = 1
	for i, c := range coef {
		poly[(i+1)*step] = sign * c
	}
	return poly
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}

// arCoefficients returns a_1..a_n with phi(B)Phi(B^s) = 1 - sum(a_j B^j).
func arCoefficients(phi, sphi []float64, s int) []float64 {
	poly := polyMul(lagPoly(phi, 1, -1), lagPoly(sphi, max(s, 1), -1))
	a := make([]float64, len(poly)-1)
	for j := 1; j < len(poly); j++ {
		a[j-1] = -poly[j]
	}
	return a
}

// maCoefficients returns b_1..b_n with theta(B)Theta(B^s) = 1 + sum(b_j B^j).
func maCoefficients(theta, stheta []float64, s int) []float64 {
	poly := polyMul(lagPoly(theta, 1, 1), lagPoly(stheta, max(s, 1), 1))
	return poly[1:]
}

// diffCoefficients returns delta_1..delta_n with (1-B)^d (1-B^s)^D = 1 - sum(delta_j B^j),
// so y_t = w_t + sum(delta_j y_(t-j)).
func diffCoefficients(d, sd, s int) []float64 {
	poly := []float64{1}
	for i := 0; i < d; i++ {
		poly = polyMul(poly, []float64{1, -1})
	}
	if sd > 0 {
		seasonal := make([]float64, s+1)
		seasonal[0] = 1
		seasonal[s] = -1
		for i := 0; i < sd; i++ {
			poly = polyMul(poly, seasonal)
		}
	}
	delta := make([]float64, len(poly)-1)
	for j := 1; j < len(poly); j++ {
		delta[j-1] = -poly[j]
	}
	return delta
}

// psiWeights returns the first n coefficients of theta*(B)/phi*(B) where phi* includes
// the differencing polynomial.
func psiWeights(ar, ma []float64, n int) []float64 {
	psi := make([]float64, n)
	if n == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < n; j++ {
		var v float64
		if j <= len(ma) {
			v = ma[j-1]
		}
		for i := 1; i <= len(ar) && i <= j; i++ {
			v += ar[i-1] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

// combineAR returns the coefficients of (1 - sum(a_j B^j))(1 - sum(delta_j B^j)) in the
// same 1 - sum form.
func combineAR(a, delta []float64) []float64 {
	pa := make([]float64, len(a)+1)
	pa[0] = 1
	for i, v := range a {
		pa[i+1] = -v
	}
	pd := make([]float64, len(delta)+1)
	pd[0] = 1
	for i, v := range delta {
		pd[i+1] = -v
	}
	poly := polyMul(pa, pd)
	out := make([]float64, len(poly)-1)
	for j := 1; j < len(poly); j++ {
		out[j-1] = -poly[j]
	}
	return out
}
