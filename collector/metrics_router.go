package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/weperezh01/router-telemetry/model"
	"github.com/weperezh01/router-telemetry/status"
	"github.com/weperezh01/router-telemetry/traffic"
)

func AddMetricsRouter(registry prometheus.Registerer, snapshot model.ResourceSnapshot, rows []traffic.Row) {
	addMetricsResources(registry, snapshot)
	addMetricsSensors(prometheus.WrapRegistererWithPrefix("sensor_", registry), snapshot.Sensors)
	addMetricsInterfaces(prometheus.WrapRegistererWithPrefix("interface_", registry), rows)
}

func addMetricsResources(registry prometheus.Registerer, snapshot model.ResourceSnapshot) {
	// CPU, only when reported
	if snapshot.CPULoadPercent != nil {
		cpuGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cpu_load_percent",
		})
		registry.MustRegister(cpuGauge)
		cpuGauge.Set(*snapshot.CPULoadPercent)
	}

	// RAM
	memoryTotalGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "memory_total_bytes",
	})
	registry.MustRegister(memoryTotalGauge)
	memoryUsedGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "memory_used_bytes",
	})
	registry.MustRegister(memoryUsedGauge)

	memoryTotalGauge.Set(float64(snapshot.MemoryTotalBytes))
	memoryUsedGauge.Set(float64(snapshot.MemoryUsedBytes))

	// Storage
	storageTotalGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storage_total_bytes",
	})
	registry.MustRegister(storageTotalGauge)
	storageUsedGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storage_used_bytes",
	})
	registry.MustRegister(storageUsedGauge)

	storageTotalGauge.Set(float64(snapshot.StorageTotalBytes))
	storageUsedGauge.Set(float64(snapshot.StorageUsedBytes))

	// Uptime, only when sent as seconds
	if snapshot.Uptime.Seconds.Valid {
		uptimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "uptime_seconds",
		})
		registry.MustRegister(uptimeGauge)
		uptimeGauge.Set(snapshot.Uptime.Seconds.Value)
	}

	infoGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "info",
	}, []string{"version", "board"})
	registry.MustRegister(infoGaugeVec)
	infoGaugeVec.WithLabelValues(snapshot.OSVersion, snapshot.BoardName).Set(1)
}

func addMetricsSensors(registry prometheus.Registerer, sensors model.Sensors) {
	// Temperatures
	temperatureGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "temperature_celsius",
	}, []string{"sensor"})
	registry.MustRegister(temperatureGaugeVec)

	for name, value := range sensors.Temperatures {
		temperatureGaugeVec.WithLabelValues(name).Set(value)
	}

	// FANs
	fanSpeedGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fan_speed_rpm",
	}, []string{"fan"})
	registry.MustRegister(fanSpeedGaugeVec)

	for name, value := range sensors.Fans {
		fanSpeedGaugeVec.WithLabelValues(name).Set(value)
	}

	// PSUs, 1 when the backend reports "ok"
	psuOkGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "psu_ok",
	}, []string{"psu"})
	registry.MustRegister(psuOkGaugeVec)

	for name, state := range sensors.PowerSupplies {
		var ok float64
		if status.PowerSupply(state).Severity == status.SeverityOK {
			ok = 1
		}
		psuOkGaugeVec.WithLabelValues(name).Set(ok)
	}

	// Voltages
	voltageGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "voltage_volts",
	}, []string{"sensor"})
	registry.MustRegister(voltageGaugeVec)

	for name, value := range sensors.Voltages {
		voltageGaugeVec.WithLabelValues(name).Set(value)
	}
}

func addMetricsInterfaces(registry prometheus.Registerer, rows []traffic.Row) {
	uploadGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "upload_bits_per_second",
	}, []string{"name"})
	registry.MustRegister(uploadGaugeVec)
	downloadGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "download_bits_per_second",
	}, []string{"name"})
	registry.MustRegister(downloadGaugeVec)
	mtuGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mtu",
	}, []string{"name"})
	registry.MustRegister(mtuGaugeVec)

	infoGaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "info",
	}, []string{"name", "mac", "comment"})
	registry.MustRegister(infoGaugeVec)

	for _, row := range rows {
		name := row.Interface.Name
		uploadGaugeVec.WithLabelValues(name).Set(row.Traffic.UploadBitsPerSecond)
		downloadGaugeVec.WithLabelValues(name).Set(row.Traffic.DownloadBitsPerSecond)

		if row.Interface.MTU.Valid {
			mtuGaugeVec.WithLabelValues(name).Set(row.Interface.MTU.Value)
		}
		infoGaugeVec.WithLabelValues(name, row.Interface.MACAddress, row.Interface.Comment).Set(1)
	}
}
