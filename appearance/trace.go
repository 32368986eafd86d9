package appearance

import (
	"encoding/json"

	"github.com/goliatone/go-fitspire/theme"
)

// Layer priorities, strongest first.
const (
	PriorityLocal   = 300
	PriorityRemote  = 200
	PrioritySystem  = 100
	PriorityDefault = 0
)

// Trace captures how each layer contributed to the bootstrap resolution.
type Trace struct {
	Scheme theme.Scheme `json:"scheme"`
	Source Source       `json:"source"`
	Layers []Provenance `json:"layers"`
}

// Provenance details a single layer consulted (or skipped) during bootstrap.
type Provenance struct {
	Source    Source `json:"source"`
	Priority  int    `json:"priority"`
	Consulted bool   `json:"consulted"`
	Found     bool   `json:"found"`
	Value     string `json:"value,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Winner returns the provenance of the layer that produced the scheme.
func (t Trace) Winner() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Source == t.Source {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

func newTrace() Trace {
	return Trace{
		Layers: []Provenance{
			{Source: SourceLocal, Priority: PriorityLocal},
			{Source: SourceRemote, Priority: PriorityRemote},
			{Source: SourceSystem, Priority: PrioritySystem},
			{Source: SourceDefault, Priority: PriorityDefault},
		},
	}
}

func (t *Trace) layer(source Source) *Provenance {
	for i := range t.Layers {
		if t.Layers[i].Source == source {
			return &t.Layers[i]
		}
	}
	return nil
}
