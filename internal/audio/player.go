package audio

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/danielpatrickdp/affect-field/go-controller/internal/orchestrator"
)

const sampleRate = beep.SampleRate(48000)

// Player owns the speaker and the drone. It satisfies orchestrator.AudioSink.
type Player struct {
	mu          sync.Mutex
	drone       *Drone
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	mixer       *beep.Mixer
	initialized bool
}

// NewPlayer builds the drone chain without touching the audio device.
// volume is in beep's log2 units; 0 is unity gain.
func NewPlayer(volume float64) *Player {
	drone := NewDrone(sampleRate, 0.25, 0.3)
	ctrl := &beep.Ctrl{Streamer: drone}
	vol := &effects.Volume{Streamer: ctrl, Base: 2, Volume: volume}
	mixer := &beep.Mixer{}
	mixer.Add(vol)
	return &Player{drone: drone, ctrl: ctrl, volume: vol, mixer: mixer}
}

// Init opens the speaker and starts streaming.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	log.Printf("[AUDIO] speaker ready at %d Hz", sampleRate)
	return nil
}

// Play forwards the cue to the drone.
func (p *Player) Play(cue orchestrator.AudioCue) {
	p.drone.Play(cue)
}

// SetMuted pauses or resumes the drone.
func (p *Player) SetMuted(muted bool) {
	speaker.Lock()
	p.ctrl.Paused = muted
	speaker.Unlock()
}

// Drone exposes the oscillator, mostly for tests.
func (p *Player) Drone() *Drone { return p.drone }

// Close stops playback. The speaker itself stays open for the process.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	speaker.Clear()
	p.initialized = false
}
