package transcript

import "fmt"

// Anonymizer maps raw sender names to stable opaque labels for the lifetime
// of one parse run. Labels are assigned in first-appearance order.
type Anonymizer struct {
	enabled bool
	labels  map[string]string
	order   []string
}

func NewAnonymizer(enabled bool) *Anonymizer {
	return &Anonymizer{enabled: enabled, labels: map[string]string{}}
}

// Label returns the stable label for a raw sender, assigning one on first
// sight. With anonymization off it still tracks appearance order so the
// mapping is available either way.
func (a *Anonymizer) Label(raw string) string {
	if l, ok := a.labels[raw]; ok {
		return l
	}
	l := raw
	if a.enabled {
		l = fmt.Sprintf("User_%02d", len(a.order)+1)
	}
	a.labels[raw] = l
	a.order = append(a.order, raw)
	return l
}

// Mapping returns raw name -> label in first-appearance order.
func (a *Anonymizer) Mapping() map[string]string {
	out := make(map[string]string, len(a.labels))
	for k, v := range a.labels {
		out[k] = v
	}
	return out
}

// Participants returns the assigned labels in first-appearance order.
func (a *Anonymizer) Participants() []string {
	out := make([]string, 0, len(a.order))
	for _, raw := range a.order {
		out = append(out, a.labels[raw])
	}
	return out
}
