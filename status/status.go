// Package status classifies raw router metrics into display bands.
package status

import "strings"

type Severity int

const (
	SeverityOK Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	}
	return "unknown"
}

// Status is the result of a classifier. Icon is an opaque tag for the presentation
// layer and is only set by the fan and power supply classifiers.
type Status struct {
	Color    string
	Label    string
	Icon     string
	Severity Severity
}

const (
	ColorGreen  = "#4CAF50"
	ColorBlue   = "#2196F3"
	ColorOrange = "#FF9800"
	ColorRed    = "#F44336"
)

// Utilization classifies a CPU, memory or storage percentage.
func Utilization(percent float64) Status {
	switch {
	case percent < 50:
		return Status{Color: ColorGreen, Label: "Bajo", Severity: SeverityOK}
	case percent < 70:
		return Status{Color: ColorBlue, Label: "Normal", Severity: SeverityInfo}
	case percent < 90:
		return Status{Color: ColorOrange, Label: "Alto", Severity: SeverityWarning}
	default:
		return Status{Color: ColorRed, Label: "Crítico", Severity: SeverityCritical}
	}
}

// Temperature classifies a reading in °C: up to 50 optimal, up to 65 normal,
// up to 70 warm, above that critical.
func Temperature(celsius float64) Status {
	switch {
	case celsius <= 50:
		return Status{Color: ColorGreen, Label: "Óptima", Severity: SeverityOK}
	case celsius <= 65:
		return Status{Color: ColorBlue, Label: "Normal", Severity: SeverityInfo}
	case celsius <= 70:
		return Status{Color: ColorOrange, Label: "Caliente", Severity: SeverityWarning}
	default:
		return Status{Color: ColorRed, Label: "Crítica", Severity: SeverityCritical}
	}
}

// PowerSupply classifies the backend state string. Only "ok" is healthy; "warning"
// is reserved for a degraded state the backend does not report yet.
func PowerSupply(state string) Status {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "ok":
		return Status{Color: ColorGreen, Label: "OK", Icon: "check-circle", Severity: SeverityOK}
	case "warning":
		return Status{Color: ColorOrange, Label: "Advertencia", Icon: "alert", Severity: SeverityWarning}
	default:
		return Status{Color: ColorRed, Label: "Falla", Icon: "alert-circle", Severity: SeverityCritical}
	}
}

// Fan classifies a fan speed in RPM.
func Fan(rpm float64) Status {
	switch {
	case rpm <= 0:
		return Status{Color: ColorRed, Label: "Detenido", Icon: "fan-off", Severity: SeverityCritical}
	case rpm < 1000:
		return Status{Color: ColorOrange, Label: "Lento", Icon: "fan-alert", Severity: SeverityWarning}
	default:
		return Status{Color: ColorGreen, Label: "Normal", Icon: "fan", Severity: SeverityOK}
	}
}
