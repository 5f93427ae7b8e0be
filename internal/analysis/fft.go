package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum is the magnitude of each real FFT coefficient of samples,
// from the zero frequency up to Nyquist.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	coeff := fft.FFTReal(samples)
	ps := make([]float64, len(samples)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeff[i])
	}
	return ps
}

// DominantPeriod returns the period of the strongest non-zero frequency in
// samples taken every dt seconds, or 0 when there is none. Resolution is
// limited to n·dt/k for integer k, so a series should cover several periods.
func DominantPeriod(samples []float64, dt float64) float64 {
	n := len(samples)
	if n < 4 || !(dt > 0) {
		return 0
	}

	mean := stat.Mean(samples, nil)
	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] == 0 {
		return 0
	}
	return float64(n) * dt / float64(best)
}
