package sarima

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/aouyang1/sarimaflow/nullable"
	"gonum.org/v1/gonum/stat/distuv"
)

const z95 = 1.959963984540054

// Coefficient is one row of the parameter table.
type Coefficient struct {
	Name   string         `json:"name"`
	Value  float64        `json:"value"`
	StdErr nullable.Float `json:"std_err"`
	Z      nullable.Float `json:"z"`
	P      nullable.Float `json:"p"`
	Lower  nullable.Float `json:"lower"`
	Upper  nullable.Float `json:"upper"`
}

func newCoefficient(name string, value, se float64) Coefficient {
	c := Coefficient{
		Name:   name,
		Value:  value,
		StdErr: nullable.Float(se),
		Z:      nullable.Float(math.NaN()),
		P:      nullable.Float(math.NaN()),
		Lower:  nullable.Float(math.NaN()),
		Upper:  nullable.Float(math.NaN()),
	}
	if math.IsNaN(se) || se <= 0 {
		return c
	}
	z := value / se
	c.Z = nullable.Float(z)
	c.P = nullable.Float(2 * distuv.UnitNormal.Survival(math.Abs(z)))
	c.Lower = nullable.Float(value - z95*se)
	c.Upper = nullable.Float(value + z95*se)
	return c
}

// Summary describes a fitted model.
type Summary struct {
	Model         string         `json:"model"`
	Order         Order          `json:"order"`
	NObs          int            `json:"nobs"`
	LogLikelihood nullable.Float `json:"log_likelihood"`
	AIC           nullable.Float `json:"aic"`
	AICc          nullable.Float `json:"aicc"`
	BIC           nullable.Float `json:"bic"`
	Coefficients  []Coefficient  `json:"coefficients"`
}

// coefficientNames follows the intercept, ar.L1, ma.L1, ar.S.L12, ma.S.L12 convention.
func (m *Model) coefficientNames() []string {
	names := make([]string, 0, m.numParams())
	if m.opt.WithIntercept {
		names = append(names, "intercept")
	}
	for i := 1; i <= m.order.P; i++ {
		names = append(names, fmt.Sprintf("ar.L%d", i))
	}
	for i := 1; i <= m.order.Q; i++ {
		names = append(names, fmt.Sprintf("ma.L%d", i))
	}
	for i := 1; i <= m.order.SP; i++ {
		names = append(names, fmt.Sprintf("ar.S.L%d", i*m.order.M))
	}
	for i := 1; i <= m.order.SQ; i++ {
		names = append(names, fmt.Sprintf("ma.S.L%d", i*m.order.M))
	}
	return names
}

func (m *Model) Summary() (*Summary, error) {
	if !m.IsFitted() {
		return nil, ErrNotFitted
	}
	names := m.coefficientNames()
	values := m.pack()

	coef := make([]Coefficient, 0, len(names)+1)
	for i, name := range names {
		se := math.NaN()
		if i < len(m.stdErr) {
			se = m.stdErr[i]
		}
		coef = append(coef, newCoefficient(name, values[i], se))
	}
	coef = append(coef, newCoefficient("sigma2", m.sigma2, m.sigma2*math.Sqrt(2/float64(m.nobs))))

	return &Summary{
		Model:         m.order.String(),
		Order:         m.order,
		NObs:          m.nobs,
		LogLikelihood: nullable.Float(m.loglik),
		AIC:           nullable.Float(m.AIC()),
		AICc:          nullable.Float(m.AICc()),
		BIC:           nullable.Float(m.BIC()),
		Coefficients:  coef,
	}, nil
}

func formatFloat(v nullable.Float) string {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "..."
	}
	return fmt.Sprintf("%.4f", f)
}

func (s Summary) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%s\n", prefix, s.Model); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sObservations: %d    Log Likelihood: %s\n",
		prefix, indent, s.NObs, formatFloat(s.LogLikelihood)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sAIC: %s    AICc: %s    BIC: %s\n",
		prefix, indent, formatFloat(s.AIC), formatFloat(s.AICc), formatFloat(s.BIC)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sCoefficients:\n", prefix, indent); err != nil {
		return err
	}

	inner := strings.Repeat(indent, 2)
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sName\tCoef\tStd Err\tz\tP>|z|\t[0.025\t0.975]\t\n", prefix, inner); err != nil {
		return err
	}
	for _, c := range s.Coefficients {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%.4f\t%s\t%s\t%s\t%s\t%s\t\n",
			prefix, inner, c.Name, c.Value,
			formatFloat(c.StdErr), formatFloat(c.Z), formatFloat(c.P),
			formatFloat(c.Lower), formatFloat(c.Upper)); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
