// Package traffic joins live traffic samples to the static interface list by name.
package traffic

import (
	"sync/atomic"

	"github.com/weperezh01/router-telemetry/model"
)

// Index is written by the traffic loop and read by any number of readers. Each
// Rebuild swaps in a fresh map; readers never observe a partial rebuild.
type Index struct {
	samples atomic.Pointer[map[string]model.TrafficSample]
}

func NewIndex() *Index {
	i := &Index{}
	empty := map[string]model.TrafficSample{}
	i.samples.Store(&empty)
	return i
}

// Rebuild replaces the index with the given samples. For duplicated names the
// last sample wins.
func (i *Index) Rebuild(samples []model.TrafficSample) {
	m := make(map[string]model.TrafficSample, len(samples))
	for _, s := range samples {
		m[s.Name] = s
	}
	i.samples.Store(&m)
}

// Lookup returns a zero-traffic sample for names missing from the latest list.
func (i *Index) Lookup(name string) model.TrafficSample {
	if s, ok := (*i.samples.Load())[name]; ok {
		return s
	}
	return model.TrafficSample{Name: name}
}

func (i *Index) Len() int {
	return len(*i.samples.Load())
}

type Row struct {
	Interface model.InterfaceRecord
	Traffic   model.TrafficSample
	// Sampled is false when the latest list had no entry for the interface.
	Sampled bool
}

// Join pairs every interface with its current sample, preserving interface order.
func (i *Index) Join(interfaces []model.InterfaceRecord) []Row {
	samples := *i.samples.Load()
	rows := make([]Row, 0, len(interfaces))
	for _, iface := range interfaces {
		s, ok := samples[iface.Name]
		if !ok {
			s = model.TrafficSample{Name: iface.Name}
		}
		rows = append(rows, Row{Interface: iface, Traffic: s, Sampled: ok})
	}
	return rows
}
