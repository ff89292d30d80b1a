package model

import (
	"bytes"
	"encoding/json"
)

// SystemResources is the backend payload of POST /routers/system-resources.
// Memory and storage figures are megabytes.
type SystemResources struct {
	CPULoad       Number           `json:"cpu_load"`
	TotalMemory   Number           `json:"total_memory"`
	FreeMemory    Number           `json:"free_memory"`
	TotalHDDSpace Number           `json:"total_hdd_space"`
	FreeHDDSpace  Number           `json:"free_hdd_space"`
	Uptime        Uptime           `json:"uptime"`
	Version       string           `json:"version"`
	BoardName     string           `json:"board_name"`
	Sensors       *SensorsResponse `json:"sensors"`
}

// SensorsResponse readings may be null or numeric strings; Valid tells them apart.
type SensorsResponse struct {
	Temperatures  map[string]Number `json:"temperatures"`
	PowerSupplies map[string]string `json:"power_supplies"`
	Fans          map[string]Number `json:"fans"`
	Voltages      map[string]Number `json:"voltages"`
}

// Uptime keeps whichever representation the backend sent: a pre-formatted
// duration such as "28w4d20h46m32s", or a number of seconds.
type Uptime struct {
	Formatted string
	Seconds   Number
}

// Value returns the representation to hand to a formatter, nil when absent.
func (u Uptime) Value() any {
	if u.Formatted != "" {
		return u.Formatted
	}
	if u.Seconds.Valid {
		return u.Seconds.Value
	}
	return nil
}

func (u *Uptime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*u = Uptime{}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &u.Formatted)
	}
	return u.Seconds.UnmarshalJSON(data)
}

// ResourceSnapshot is one complete reading of a router's system resources.
type ResourceSnapshot struct {
	CPULoadPercent    *float64
	MemoryUsedBytes   uint64
	MemoryTotalBytes  uint64
	StorageUsedBytes  uint64
	StorageTotalBytes uint64
	Uptime            Uptime
	OSVersion         string
	BoardName         string
	Sensors           Sensors
}

type Sensors struct {
	Temperatures  map[string]float64
	PowerSupplies map[string]string
	Fans          map[string]float64
	Voltages      map[string]float64
}

func (s Sensors) Empty() bool {
	return len(s.Temperatures) == 0 && len(s.PowerSupplies) == 0 && len(s.Fans) == 0 && len(s.Voltages) == 0
}
