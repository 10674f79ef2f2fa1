package affect

import (
	"fmt"
	"strings"
)

// #region channel
// Channel indexes one affect dimension of the state vector.
// Declaration order doubles as the tie-break priority for Dominant.
type Channel int

const (
	Joy Channel = iota
	Curiosity
	Wonder
	Serenity
	Longing
	Tension
	Awe
	NumChannels = 7
)

var channelNames = [NumChannels]string{
	"joy",
	"curiosity",
	"wonder",
	"serenity",
	"longing",
	"tension",
	"awe",
}

// String returns the lowercase channel name.
func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// Valid reports whether c names one of the canonical channels.
func (c Channel) Valid() bool {
	return c >= 0 && int(c) < NumChannels
}

// ParseChannel resolves a channel by name (case-insensitive).
func ParseChannel(name string) (Channel, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, cn := range channelNames {
		if cn == n {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown affect channel %q", name)
}

// Channels returns all channels in priority order.
func Channels() []Channel {
	out := make([]Channel, NumChannels)
	for i := range out {
		out[i] = Channel(i)
	}
	return out
}

// #endregion channel

// #region weights
// intensityWeights sum to 1 so the weighted aggregate stays in [0,1].
var intensityWeights = [NumChannels]float64{
	0.18, // joy
	0.14, // curiosity
	0.16, // wonder
	0.08, // serenity (calm contributes little arousal)
	0.12, // longing
	0.17, // tension
	0.15, // awe
}

// baseline is the seeded session-start state.
var baseline = [NumChannels]float64{
	0.45, // joy
	0.55, // curiosity
	0.40, // wonder
	0.60, // serenity
	0.20, // longing
	0.15, // tension
	0.30, // awe
}

// NeutralValue is the resting value of every channel in the neutral state.
const NeutralValue = 0.5

// #endregion weights

// #region partial
// Partial is a sparse channel -> value payload, e.g. from an external analysis.
type Partial map[Channel]float64

// PartialFromNames converts a name-keyed map, skipping unknown names.
// The second return lists the names that were dropped.
func PartialFromNames(m map[string]float64) (Partial, []string) {
	p := make(Partial, len(m))
	var unknown []string
	for name, v := range m {
		ch, err := ParseChannel(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		p[ch] = v
	}
	return p, unknown
}

// Names returns the payload keyed by channel name.
func (p Partial) Names() map[string]float64 {
	out := make(map[string]float64, len(p))
	for ch, v := range p {
		out[ch.String()] = v
	}
	return out
}

// #endregion partial
