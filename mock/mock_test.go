//go:build dev

package mock

import (
	"context"
	"reflect"
	"testing"

	"github.com/weperezh01/router-telemetry/monitor"
)

func TestGenerateIsDeterministic(t *testing.T) {
	s1, i1, t1 := Generate()
	s2, i2, t2 := Generate()

	if !reflect.DeepEqual(s1, s2) || !reflect.DeepEqual(i1, i2) || !reflect.DeepEqual(t1, t2) {
		t.Error("Generate must return identical data on every call")
	}
	if s1.Sensors.Empty() {
		t.Error("mock snapshot should exercise the sensor panel")
	}
	if len(i1) == 0 || len(t1) == 0 {
		t.Error("mock interfaces and traffic must not be empty")
	}
}

func TestSourceTrafficSequence(t *testing.T) {
	src := NewSource()
	first, _ := src.GetTraffic(context.Background(), "1")
	second, _ := src.GetTraffic(context.Background(), "1")

	if !reflect.DeepEqual(first, Traffic(0)) || !reflect.DeepEqual(second, Traffic(1)) {
		t.Error("traffic must follow the deterministic sequence")
	}
}

func TestSourceImplementsMonitorSource(t *testing.T) {
	var _ monitor.Source = NewSource()
}
