package waveform

import (
	"errors"
	"fmt"
	"math"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

const (
	ColumnCharge        = "Collected charge (V s)"
	ColumnNoise         = "Noise (V)"
	ColumnTimeOverNoise = "Time over noise (s)"
)

// baselineFraction of the leading samples estimates baseline and noise
const baselineFraction = 0.1

var ErrInvalidWaveform = errors.New("invalid waveform")

var parsedColumns = []string{
	ColumnWaveform, ColumnEvent, ColumnDevice, ColumnTemperature,
	ColumnAmplitude, ColumnCharge, ColumnNoise, ColumnTimeOverNoise,
}

type Features struct {
	// Amplitude is the peak height above the baseline
	Amplitude float64
	// Noise is the standard deviation of the baseline
	Noise float64
	// Charge integrates the pulse above the baseline while it stays over the noise
	Charge float64
	// TimeOverNoise is how long the pulse stays over baseline plus noise
	TimeOverNoise float64
}

// Parse extracts the features of one pulse
func Parse(times, samples []float64) (Features, error) {
	if len(times) != len(samples) {
		return Features{}, fmt.Errorf("%w: %d times for %d samples", ErrInvalidWaveform, len(times), len(samples))
	}
	if len(samples) < 2 {
		return Features{}, fmt.Errorf("%w: %d samples", ErrInvalidWaveform, len(samples))
	}
	n := int(float64(len(samples)) * baselineFraction)
	if n < 1 {
		n = 1
	}
	baseline, noise := meanStd(samples[:n])

	peak := 0
	for i, v := range samples {
		if v > samples[peak] {
			peak = i
		}
	}
	threshold := baseline + noise
	start, end := peak, peak
	for start > 0 && samples[start-1] > threshold {
		start--
	}
	for end < len(samples)-1 && samples[end+1] > threshold {
		end++
	}
	charge := 0.0
	for i := start; i < end; i++ {
		charge += (samples[i] + samples[i+1] - 2*baseline) / 2 * (times[i+1] - times[i])
	}
	return Features{
		Amplitude:     samples[peak] - baseline,
		Noise:         noise,
		Charge:        charge,
		TimeOverNoise: times[end] - times[start],
	}, nil
}

func meanStd(values []float64) (mean, std float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		std += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(std / float64(len(values)))
}

// ParsedFrame holds the features of one waveform in a single row
func ParsedFrame(w Waveform, f Features) *cx.Frame {
	return cx.NewFrame(parsedColumns, Index...).AppendVector(cx.Vector{
		w.Number, w.Event, w.Device, w.Temperature,
		f.Amplitude, f.Charge, f.Noise, f.TimeOverNoise,
	})
}
