package game

import "fmt"

// Intent is one axis of player control.
type Intent int

const (
	IntentTransX Intent = iota
	IntentTransY
	IntentTransZ
	IntentRotateX
	IntentRotateY
	IntentRotateZ
	numIntents
)

var intentNames = [numIntents]string{
	"trans_x", "trans_y", "trans_z", "rotate_x", "rotate_y", "rotate_z",
}

func (i Intent) String() string {
	if i < 0 || i >= numIntents {
		return fmt.Sprintf("Intent(%d)", int(i))
	}
	return intentNames[i]
}

// IntentSource reports the current value of each intent in [-1, 1].
type IntentSource interface {
	Value(i Intent) float64
}

// Intents is an IntentSource backed by plain values, set by the viewer
// from keyboard state or by tests.
type Intents [numIntents]float64

func (in *Intents) Value(i Intent) float64 {
	if in == nil || i < 0 || i >= numIntents {
		return 0
	}
	return in[i]
}

// Set stores v clamped to [-1, 1].
func (in *Intents) Set(i Intent, v float64) {
	if i < 0 || i >= numIntents {
		return
	}
	in[i] = max(-1, min(1, v))
}

// Reset releases every intent.
func (in *Intents) Reset() {
	*in = Intents{}
}
