// Package display builds the view model of the router details screen from the
// latest telemetry: formatted strings, status bands and staleness flags.
package display

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/weperezh01/router-telemetry/format"
	"github.com/weperezh01/router-telemetry/model"
	"github.com/weperezh01/router-telemetry/monitor"
	"github.com/weperezh01/router-telemetry/poller"
	"github.com/weperezh01/router-telemetry/snapshot"
	"github.com/weperezh01/router-telemetry/status"
	"github.com/weperezh01/router-telemetry/traffic"
)

type Screen struct {
	Router       Router      `json:"router"`
	Resources    *Resources  `json:"resources,omitempty"`
	Interfaces   []Interface `json:"interfaces"`
	VLANs        int         `json:"vlans"`
	IPAddresses  int         `json:"ip_addresses"`
	ResourcePoll Poll        `json:"resource_poll"`
	TrafficPoll  Poll        `json:"traffic_poll"`
}

type Router struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ManagementIPs []string `json:"management_ips"`
}

type Gauge struct {
	Available bool          `json:"available"`
	Percent   string        `json:"percent"`
	Detail    string        `json:"detail,omitempty"`
	Status    status.Status `json:"status"`
}

type Resources struct {
	CPU       Gauge   `json:"cpu"`
	Memory    Gauge   `json:"memory"`
	Storage   Gauge   `json:"storage"`
	Uptime    string  `json:"uptime"`
	OSVersion string  `json:"os_version"`
	Board     string  `json:"board"`
	Sensors   Sensors `json:"sensors"`
}

type Reading struct {
	Name   string         `json:"name"`
	Value  string         `json:"value"`
	Status *status.Status `json:"status,omitempty"`
}

// Sensors is the sensor panel. HasData false selects the "no sensor data" panel.
type Sensors struct {
	HasData       bool      `json:"has_data"`
	Temperatures  []Reading `json:"temperatures"`
	PowerSupplies []Reading `json:"power_supplies"`
	Fans          []Reading `json:"fans"`
	Voltages      []Reading `json:"voltages"`
}

type Interface struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	MTU      string `json:"mtu"`
	MAC      string `json:"mac"`
	ARP      string `json:"arp"`
	Switch   string `json:"switch,omitempty"`
	Comment  string `json:"comment,omitempty"`
	Upload   string `json:"upload"`
	Download string `json:"download"`
	Sampled  bool   `json:"sampled"`
}

// Poll summarizes a loop. Stale is set when the last refresh failed but older
// data is still shown.
type Poll struct {
	Running     bool   `json:"running"`
	LastSuccess string `json:"last_success,omitempty"`
	Error       string `json:"error,omitempty"`
	Stale       bool   `json:"stale"`
}

func Build(m *monitor.Monitor) Screen {
	screen := Screen{Router: Router{ID: string(m.RouterID())}}

	if id, ok := m.Identity(); ok {
		screen.Router.Name = id.Name
		screen.Router.ManagementIPs = id.ManagementIPs()
	}

	snap, hasSnapshot := m.Snapshot()
	if hasSnapshot {
		r := BuildResources(snap)
		screen.Resources = &r
	}

	list, _ := m.InterfaceList()
	screen.VLANs = len(list.VLANs)
	screen.IPAddresses = len(list.IPAddresses)
	screen.Interfaces = BuildInterfaces(m.Rows())

	screen.ResourcePoll = BuildPoll(m.ResourceState(), hasSnapshot)
	screen.TrafficPoll = BuildPoll(m.TrafficState(), m.HasTraffic())
	return screen
}

func BuildResources(s model.ResourceSnapshot) Resources {
	r := Resources{
		Uptime:    format.Uptime(s.Uptime.Value()),
		OSVersion: orNotAvailable(s.OSVersion),
		Board:     orNotAvailable(s.BoardName),
		Sensors:   BuildSensors(s.Sensors),
	}

	if s.CPULoadPercent != nil {
		r.CPU = gauge(*s.CPULoadPercent, "")
	} else {
		r.CPU = unavailable()
	}

	if p, ok := snapshot.MemoryPercent(s); ok {
		r.Memory = gauge(p, format.Bytes(float64(s.MemoryUsedBytes))+" / "+format.Bytes(float64(s.MemoryTotalBytes)))
	} else {
		r.Memory = unavailable()
	}

	if p, ok := snapshot.StoragePercent(s); ok {
		r.Storage = gauge(p, format.Bytes(float64(s.StorageUsedBytes))+" / "+format.Bytes(float64(s.StorageTotalBytes)))
	} else {
		r.Storage = unavailable()
	}

	return r
}

func gauge(percent float64, detail string) Gauge {
	return Gauge{
		Available: true,
		Percent:   format.Percent(percent),
		Detail:    detail,
		Status:    status.Utilization(percent),
	}
}

func unavailable() Gauge {
	return Gauge{Percent: format.NotAvailable}
}

func BuildSensors(s model.Sensors) Sensors {
	out := Sensors{
		HasData:       !s.Empty(),
		Temperatures:  []Reading{},
		PowerSupplies: []Reading{},
		Fans:          []Reading{},
		Voltages:      []Reading{},
	}
	if !out.HasData {
		return out
	}

	for _, name := range sortedKeys(s.Temperatures) {
		v := s.Temperatures[name]
		st := status.Temperature(v)
		out.Temperatures = append(out.Temperatures, Reading{Name: name, Value: decimal(v) + " °C", Status: &st})
	}
	for _, name := range sortedKeys(s.PowerSupplies) {
		st := status.PowerSupply(s.PowerSupplies[name])
		out.PowerSupplies = append(out.PowerSupplies, Reading{Name: name, Value: st.Label, Status: &st})
	}
	for _, name := range sortedKeys(s.Fans) {
		v := s.Fans[name]
		st := status.Fan(v)
		out.Fans = append(out.Fans, Reading{Name: name, Value: format.Count(int64(math.Round(v))) + " RPM", Status: &st})
	}
	for _, name := range sortedKeys(s.Voltages) {
		out.Voltages = append(out.Voltages, Reading{Name: name, Value: decimal(s.Voltages[name]) + " V"})
	}
	return out
}

func BuildInterfaces(rows []traffic.Row) []Interface {
	out := make([]Interface, 0, len(rows))
	for _, row := range rows {
		iface := row.Interface
		mtu := format.NotAvailable
		if iface.MTU.Valid {
			mtu = strconv.FormatFloat(iface.MTU.Value, 'f', -1, 64)
		}
		out = append(out, Interface{
			Name:     iface.Name,
			Type:     iface.Type,
			MTU:      mtu,
			MAC:      orNotAvailable(iface.MACAddress),
			ARP:      orNotAvailable(iface.ARP),
			Switch:   iface.Switch,
			Comment:  iface.Comment,
			Upload:   format.BitsPerSecond(row.Traffic.UploadBitsPerSecond),
			Download: format.BitsPerSecond(row.Traffic.DownloadBitsPerSecond),
			Sampled:  row.Sampled,
		})
	}
	return out
}

func BuildPoll(st poller.PollState, hasData bool) Poll {
	p := Poll{
		Running: st.Running,
		Error:   st.LastError,
		Stale:   st.LastError != "" && hasData,
	}
	if !st.LastSuccessAt.IsZero() {
		p.LastSuccess = st.LastSuccessAt.Format(time.RFC3339)
	}
	return p
}

func decimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

func orNotAvailable(s string) string {
	if s == "" {
		return format.NotAvailable
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
