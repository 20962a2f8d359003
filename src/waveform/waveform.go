// Package waveform simulates detector waveforms and extracts their features.
// It drives the measure and parse commands of dfbuffer.
package waveform

import (
	"math"
	"math/rand"
	"time"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

const (
	ColumnWaveform    = "n_waveform"
	ColumnEvent       = "n_event"
	ColumnDevice      = "device_name"
	ColumnTime        = "Time (s)"
	ColumnAmplitude   = "Amplitude (V)"
	ColumnTemperature = "Temperature (°C)"
	ColumnWhen        = "When"
)

const (
	// window is the time span of one waveform in seconds
	window = 10e-9
	// noiseSigma is the standard deviation of the white noise added to every sample
	noiseSigma = 1.0 / 22
)

// Index identifies one waveform, it is the index of every measured and parsed frame
var Index = []string{ColumnWaveform, ColumnEvent, ColumnDevice}

// Devices are measured once per event, in this order
var Devices = []string{"LGAD", "PMT"}

var measuredColumns = []string{
	ColumnWaveform, ColumnEvent, ColumnDevice, ColumnTime, ColumnAmplitude, ColumnTemperature, ColumnWhen,
}

// Generator produces gaussian pulses with random width and height on top of white noise
type Generator struct {
	rng     *rand.Rand
	samples int
}

func NewGenerator(seed int64, samples int) *Generator {
	if samples < 2 {
		samples = 2
	}
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		samples: samples,
	}
}

// Measure returns the sample times and the sampled voltage of one pulse.
// PMT pulses are half as wide as LGAD pulses.
func (g *Generator) Measure(device string) (times, samples []float64) {
	times = make([]float64, g.samples)
	step := window / float64(g.samples-1)
	for i := range times {
		times[i] = float64(i) * step
	}
	mu := window / 2
	sigma := (window - mu) / 10 * (g.rng.Float64() + .5)
	if device == "PMT" {
		sigma /= 2
	}
	pulse := make([]float64, g.samples)
	peak := 0.0
	for i, t := range times {
		pulse[i] = math.Exp(-math.Pow((t-mu)/sigma, 2) / 2)
		peak = math.Max(peak, pulse[i])
	}
	height := g.rng.Float64() * 2
	samples = make([]float64, g.samples)
	for i := range pulse {
		samples[i] = pulse[i]/peak*height + g.rng.NormFloat64()*noiseSigma
	}
	return times, samples
}

// Temperature of the setup, around -20 °C
func (g *Generator) Temperature() float64 {
	return -20 + g.rng.NormFloat64()*.1
}

// Delay draws an exponentially distributed acquisition time with the given mean
func (g *Generator) Delay(mean time.Duration) time.Duration {
	if mean <= 0 {
		return 0
	}
	return time.Duration(g.rng.ExpFloat64() * float64(mean))
}

// Frame holds one measured waveform, one row per sample
func Frame(waveform, event int64, device string, times, samples []float64, temperature float64, when time.Time) *cx.Frame {
	frame := cx.NewFrame(measuredColumns, Index...)
	for i := range times {
		frame.AppendVector(cx.Vector{waveform, event, device, times[i], samples[i], temperature, when})
	}
	return frame
}
