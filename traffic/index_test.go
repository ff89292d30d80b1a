package traffic

import (
	"sync"
	"testing"

	"github.com/weperezh01/router-telemetry/model"
)

func TestLookup(t *testing.T) {
	idx := NewIndex()
	idx.Rebuild([]model.TrafficSample{
		{Name: "ether1", UploadBitsPerSecond: 1000, DownloadBitsPerSecond: 9000},
		{Name: "sfp-sfpplus1", UploadBitsPerSecond: 5e8, DownloadBitsPerSecond: 2e9},
	})

	got := idx.Lookup("ether1")
	if got.UploadBitsPerSecond != 1000 || got.DownloadBitsPerSecond != 9000 {
		t.Errorf("unexpected sample: %+v", got)
	}

	missing := idx.Lookup("wlan1")
	if missing.Name != "wlan1" || missing.UploadBitsPerSecond != 0 || missing.DownloadBitsPerSecond != 0 {
		t.Errorf("expected zero sample, got %+v", missing)
	}
}

func TestLookupBeforeFirstRebuild(t *testing.T) {
	idx := NewIndex()
	if s := idx.Lookup("ether1"); s.UploadBitsPerSecond != 0 {
		t.Errorf("expected zero sample, got %+v", s)
	}
	if idx.Len() != 0 {
		t.Errorf("expected empty index")
	}
}

func TestRebuildReplaces(t *testing.T) {
	idx := NewIndex()
	idx.Rebuild([]model.TrafficSample{{Name: "ether1", UploadBitsPerSecond: 1}})
	idx.Rebuild([]model.TrafficSample{{Name: "ether2", UploadBitsPerSecond: 2}})

	if s := idx.Lookup("ether1"); s.UploadBitsPerSecond != 0 {
		t.Errorf("stale sample survived rebuild: %+v", s)
	}
	if idx.Len() != 1 {
		t.Errorf("expected 1 sample, got %d", idx.Len())
	}
}

func TestJoin(t *testing.T) {
	idx := NewIndex()
	idx.Rebuild([]model.TrafficSample{{Name: "ether2", UploadBitsPerSecond: 42}})

	interfaces := []model.InterfaceRecord{
		{Name: "ether1", Comment: "uplink"},
		{Name: "ether2"},
	}
	rows := idx.Join(interfaces)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Sampled || rows[0].Traffic.UploadBitsPerSecond != 0 || rows[0].Interface.Comment != "uplink" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if !rows[1].Sampled || rows[1].Traffic.UploadBitsPerSecond != 42 {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
	if interfaces[0].Name != "ether1" || interfaces[0].Comment != "uplink" {
		t.Error("join must not mutate interface records")
	}
}

func TestConcurrentReadWrite(t *testing.T) {
	idx := NewIndex()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			idx.Rebuild([]model.TrafficSample{{Name: "ether1", UploadBitsPerSecond: float64(i)}})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = idx.Lookup("ether1")
			_ = idx.Join([]model.InterfaceRecord{{Name: "ether1"}})
		}
	}()
	wg.Wait()
}
