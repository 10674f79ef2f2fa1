package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
)

const (
	MinFrequency = 110.0
	MaxFrequency = 880.0
)

// FrequencyFor maps a hint in [0,1] onto three octaves, 110 to 880 Hz.
func FrequencyFor(hint float64) float64 {
	if math.IsNaN(hint) {
		hint = 0.5
	}
	hint = math.Max(0, math.Min(1, hint))
	return MinFrequency * math.Pow(MaxFrequency/MinFrequency, hint)
}

// Drone is an endless sine oscillator with a fifth above it. Play sets the
// target; Stream glides frequency and amplitude toward it per sample so cue
// changes never click.
type Drone struct {
	rate  beep.SampleRate
	glide float64 // per-sample smoothing factor

	mu         sync.Mutex
	targetFreq float64
	targetAmp  float64
	freq       float64
	amp        float64
	phase      float64
	phaseFifth float64
	maxAmp     float64
}

// NewDrone returns a silent drone at rate. glideSeconds is the time
// constant of the frequency and amplitude glide.
func NewDrone(rate beep.SampleRate, glideSeconds, maxAmp float64) *Drone {
	if glideSeconds <= 0 {
		glideSeconds = 0.25
	}
	if maxAmp <= 0 || maxAmp > 1 {
		maxAmp = 0.3
	}
	start := FrequencyFor(0.5)
	return &Drone{
		rate:       rate,
		glide:      1 - math.Exp(-1/(glideSeconds*float64(rate))),
		targetFreq: start,
		freq:       start,
		maxAmp:     maxAmp,
	}
}

// Play retargets the drone. Safe to call from the frame loop while the
// speaker goroutine streams.
func (d *Drone) Play(cue orchestrator.AudioCue) {
	amp := cue.Intensity
	if math.IsNaN(amp) {
		amp = 0
	}
	amp = math.Max(0, math.Min(1, amp))

	d.mu.Lock()
	d.targetFreq = FrequencyFor(cue.FrequencyHint)
	d.targetAmp = amp * d.maxAmp
	d.mu.Unlock()
}

// Target returns the current glide target.
func (d *Drone) Target() (freq, amp float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.targetFreq, d.targetAmp
}

// Current returns the instantaneous frequency and amplitude.
func (d *Drone) Current() (freq, amp float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.freq, d.amp
}

// Stream fills samples; it never ends.
func (d *Drone) Stream(samples [][2]float64) (n int, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sr := float64(d.rate)
	for i := range samples {
		d.freq += (d.targetFreq - d.freq) * d.glide
		d.amp += (d.targetAmp - d.amp) * d.glide

		val := 0.7*math.Sin(2*math.Pi*d.phase) + 0.3*math.Sin(2*math.Pi*d.phaseFifth)
		val *= d.amp
		samples[i][0] = val
		samples[i][1] = val

		d.phase += d.freq / sr
		d.phase -= math.Floor(d.phase)
		d.phaseFifth += 1.5 * d.freq / sr
		d.phaseFifth -= math.Floor(d.phaseFifth)
	}
	return len(samples), true
}

// Err always returns nil.
func (d *Drone) Err() error { return nil }
