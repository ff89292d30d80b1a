// Package format turns raw telemetry values into display strings.
// Every function is total: bad input yields a placeholder, never a panic.
package format

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const NotAvailable = "N/A"

var (
	byteUnits = []string{"B", "KB", "MB", "GB", "TB"}
	bitUnits  = []string{"bps", "Kbps", "Mbps", "Gbps", "Tbps"}

	printer = message.NewPrinter(language.English)
)

// Bytes scales by 1024. Zero, negative and NaN all render as "0 B".
func Bytes(b float64) string {
	if math.IsNaN(b) || b <= 0 {
		return "0 B"
	}
	return scale(b, 1024, byteUnits)
}

// BitsPerSecond scales by 1000. Unlike Bytes, a negative rate is not a rate at all
// and renders as N/A, while an idle link renders as "0 bps".
func BitsPerSecond(bps float64) string {
	if math.IsNaN(bps) || bps < 0 {
		return NotAvailable
	}
	if bps == 0 {
		return "0 bps"
	}
	return scale(bps, 1000, bitUnits)
}

func OptionalBitsPerSecond(bps *float64) string {
	if bps == nil {
		return NotAvailable
	}
	return BitsPerSecond(*bps)
}

func scale(v float64, base float64, units []string) string {
	i := 0
	for v >= base && i < len(units)-1 {
		v /= base
		i++
	}
	return round2(v) + " " + units[i]
}

func round2(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Uptime accepts the two shapes the backend sends: a pre-formatted duration string,
// returned unchanged, or a number of seconds, decomposed into days, hours and minutes.
func Uptime(v any) string {
	switch u := v.(type) {
	case string:
		if u == "" {
			return NotAvailable
		}
		return u
	case fmt.Stringer:
		return Uptime(u.String())
	case int:
		return uptimeSeconds(float64(u))
	case int32:
		return uptimeSeconds(float64(u))
	case int64:
		return uptimeSeconds(float64(u))
	case uint64:
		return uptimeSeconds(float64(u))
	case float32:
		return uptimeSeconds(float64(u))
	case float64:
		return uptimeSeconds(u)
	default:
		return NotAvailable
	}
}

func uptimeSeconds(s float64) string {
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		return NotAvailable
	}
	total := int64(s)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// Count groups thousands: 1234567 -> "1,234,567".
func Count(n int64) string {
	if n == 0 {
		return "0"
	}
	return printer.Sprintf("%d", n)
}

func Percent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(math.Round(p*10)/10, 'f', -1, 64) + "%"
}
