// Package snapshot maps backend system-resource payloads into the canonical
// ResourceSnapshot consumed by the display layer.
package snapshot

import (
	"math"

	"github.com/weperezh01/router-telemetry/model"
)

const bytesPerMegabyte = 1024 * 1024

// Map never fails: missing figures become 0 and missing sensor categories become
// empty maps. Fields that could not be coerced at all are rejected earlier, while
// decoding the payload.
func Map(p model.SystemResources) model.ResourceSnapshot {
	s := model.ResourceSnapshot{
		OSVersion: p.Version,
		BoardName: p.BoardName,
		Uptime:    p.Uptime,
	}

	if p.CPULoad.Valid {
		cpu := p.CPULoad.Value
		s.CPULoadPercent = &cpu
	}

	s.MemoryTotalBytes, s.MemoryUsedBytes = usage(p.TotalMemory, p.FreeMemory)
	s.StorageTotalBytes, s.StorageUsedBytes = usage(p.TotalHDDSpace, p.FreeHDDSpace)
	s.Sensors = sensors(p.Sensors)

	return s
}

// usage converts megabyte totals into bytes and derives used = total - free.
func usage(totalMB, freeMB model.Number) (total uint64, used uint64) {
	total = megabytesToBytes(totalMB.Value)
	free := megabytesToBytes(freeMB.Value)
	if free > total {
		return total, 0
	}
	return total, total - free
}

func megabytesToBytes(mb float64) uint64 {
	if math.IsNaN(mb) || mb <= 0 {
		return 0
	}
	return uint64(math.Round(mb * bytesPerMegabyte))
}

func sensors(r *model.SensorsResponse) model.Sensors {
	s := model.Sensors{
		Temperatures:  map[string]float64{},
		PowerSupplies: map[string]string{},
		Fans:          map[string]float64{},
		Voltages:      map[string]float64{},
	}
	if r == nil {
		return s
	}
	readings(s.Temperatures, r.Temperatures)
	readings(s.Fans, r.Fans)
	readings(s.Voltages, r.Voltages)
	for k, v := range r.PowerSupplies {
		s.PowerSupplies[k] = v
	}
	return s
}

// readings copies the reported values into dst. Null readings are dropped.
func readings(dst map[string]float64, src map[string]model.Number) {
	for k, v := range src {
		if v.Valid {
			dst[k] = v.Value
		}
	}
}

// MemoryPercent reports memory utilization; ok is false when the total is unknown.
func MemoryPercent(s model.ResourceSnapshot) (float64, bool) {
	return percent(s.MemoryUsedBytes, s.MemoryTotalBytes)
}

// StoragePercent reports storage utilization; ok is false when the total is unknown.
func StoragePercent(s model.ResourceSnapshot) (float64, bool) {
	return percent(s.StorageUsedBytes, s.StorageTotalBytes)
}

func percent(used, total uint64) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	return float64(used) / float64(total) * 100, true
}
