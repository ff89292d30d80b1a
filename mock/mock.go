//go:build dev

// Package mock produces deterministic synthetic router telemetry for development
// builds. It only compiles with the dev build tag, so production binaries cannot
// serve synthetic data.
package mock

import (
	"context"
	"sync"

	"github.com/weperezh01/router-telemetry/model"
	"github.com/weperezh01/router-telemetry/snapshot"
)

func Identity(id model.ID) model.RouterIdentity {
	return model.RouterIdentity{
		ID:       id,
		Name:     "mock-ccr2004",
		PublicIP: "203.0.113.1",
		LANIP:    "192.168.88.1",
	}
}

func SystemResources() model.SystemResources {
	return model.SystemResources{
		CPULoad:       model.NewNumber(37),
		TotalMemory:   model.NewNumber(4096),
		FreeMemory:    model.NewNumber(2867.2),
		TotalHDDSpace: model.NewNumber(128),
		FreeHDDSpace:  model.NewNumber(96.5),
		Uptime:        model.Uptime{Formatted: "2w3d04h12m09s"},
		Version:       "7.14.3 (stable)",
		BoardName:     "CCR2004-16G-2S+",
		Sensors: &model.SensorsResponse{
			Temperatures: map[string]model.Number{
				"cpu-temperature":    model.NewNumber(52),
				"board-temperature1": model.NewNumber(41),
				"sfp-temperature":    model.NewNumber(67),
			},
			PowerSupplies: map[string]string{"psu1-state": "ok", "psu2-state": "fail"},
			Fans:          map[string]model.Number{"fan1-speed": model.NewNumber(5040), "fan2-speed": model.NewNumber(880)},
			Voltages:      map[string]model.Number{"voltage": model.NewNumber(24.1)},
		},
	}
}

func Interfaces() model.InterfaceList {
	return model.InterfaceList{
		Interfaces: []model.InterfaceRecord{
			{Name: "ether1", Type: "ether", MTU: model.NewNumber(1500), MACAddress: "48:A9:8A:00:00:01", ARP: "enabled", Comment: "WAN"},
			{Name: "ether2", Type: "ether", MTU: model.NewNumber(1500), MACAddress: "48:A9:8A:00:00:02", ARP: "enabled", Switch: "switch1"},
			{Name: "sfp-sfpplus1", Type: "ether", MTU: model.NewNumber(1500), MACAddress: "48:A9:8A:00:00:11", ARP: "enabled", Comment: "Backhaul"},
			{Name: "bridge-lan", Type: "bridge", MTU: model.NewNumber(1500), MACAddress: "48:A9:8A:00:00:02", ARP: "enabled"},
		},
		VLANs: []model.VLAN{
			{Name: "vlan10-clientes", VLANID: model.NewNumber(10), Interface: "bridge-lan"},
		},
		IPAddresses: []model.IPAddress{
			{Address: "203.0.113.1/29", Network: "203.0.113.0", Interface: "ether1"},
			{Address: "192.168.88.1/24", Network: "192.168.88.0", Interface: "bridge-lan"},
		},
	}
}

// Traffic returns the samples of the n-th poll. ether2 is never sampled.
func Traffic(n int) []model.TrafficSample {
	step := float64(n % 10)
	return []model.TrafficSample{
		{Name: "ether1", UploadBitsPerSecond: 12e6 + step*1e6, DownloadBitsPerSecond: 85e6 + step*3e6},
		{Name: "sfp-sfpplus1", UploadBitsPerSecond: 410e6 + step*5e6, DownloadBitsPerSecond: 1.2e9 + step*2e7},
		{Name: "bridge-lan", UploadBitsPerSecond: 0, DownloadBitsPerSecond: 0},
	}
}

// Generate returns the first synthetic reading.
func Generate() (model.ResourceSnapshot, []model.InterfaceRecord, []model.TrafficSample) {
	return snapshot.Map(SystemResources()), Interfaces().Interfaces, Traffic(0)
}

// Source serves synthetic data in place of the backend.
type Source struct {
	mu    sync.Mutex
	polls int
}

func NewSource() *Source {
	return &Source{}
}

func (s *Source) GetRouter(ctx context.Context, id model.ID) (model.RouterIdentity, error) {
	return Identity(id), nil
}

func (s *Source) GetSystemResources(ctx context.Context, id model.ID) (model.SystemResources, error) {
	return SystemResources(), nil
}

func (s *Source) GetInterfaces(ctx context.Context, id model.ID) (model.InterfaceList, error) {
	return Interfaces(), nil
}

func (s *Source) GetTraffic(ctx context.Context, id model.ID) ([]model.TrafficSample, error) {
	s.mu.Lock()
	n := s.polls
	s.polls++
	s.mu.Unlock()
	return Traffic(n), nil
}
