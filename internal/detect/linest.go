package detect

// Linest is an online least squares fit of y = Slope*x + Intercept.
type Linest struct {
	xSum, x2Sum float64
	ySum, y2Sum float64
	xySum       float64
	n           int
}

type Fit struct {
	Slope     float64
	Intercept float64
	R2        float64
}

func (l *Linest) Push(x, y float64) {
	l.xSum += x
	l.x2Sum += x * x
	l.ySum += y
	l.y2Sum += y * y
	l.xySum += x * y
	l.n++
}

func (l *Linest) Len() int {
	return l.n
}

// Estimate needs at least two distinct x values.
func (l *Linest) Estimate() (Fit, bool) {
	if l.n < 2 {
		return Fit{}, false
	}
	n := float64(l.n)
	denom := n*l.x2Sum - l.xSum*l.xSum
	if denom == 0 {
		return Fit{}, false
	}
	cov := n*l.xySum - l.xSum*l.ySum
	fit := Fit{
		Slope:     cov / denom,
		Intercept: (l.x2Sum*l.ySum - l.xySum*l.xSum) / denom,
		R2:        1,
	}
	// constant y fits perfectly
	if yVar := n*l.y2Sum - l.ySum*l.ySum; yVar != 0 {
		fit.R2 = cov * cov / denom / yVar
	}
	return fit, true
}
