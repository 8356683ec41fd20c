package detect

// Detector estimates tempo from taps. The i-th tap is taken to be beat i, so
// the fitted slope is seconds per beat and the intercept is the time of the
// first beat.
type Detector struct {
	linest Linest
	taps   []float64
}

type Result struct {
	BPM    float64
	Offset float64 // seconds
	R2     float64
}

func (d *Detector) Tap(time float64) {
	d.linest.Push(float64(len(d.taps)), time)
	d.taps = append(d.taps, time)
}

func (d *Detector) Taps() []float64 {
	return append([]float64(nil), d.taps...)
}

func (d *Detector) Reset() {
	*d = Detector{}
}

// Result is available from the second tap on, as long as the taps are not
// all at the same instant.
func (d *Detector) Result() (Result, bool) {
	fit, ok := d.linest.Estimate()
	if !ok || fit.Slope <= 0 {
		return Result{}, false
	}
	return Result{
		BPM:    60 / fit.Slope,
		Offset: fit.Intercept,
		R2:     fit.R2,
	}, true
}
