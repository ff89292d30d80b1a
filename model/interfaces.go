package model

import "encoding/json"

type InterfaceList struct {
	Interfaces  []InterfaceRecord `json:"interfaces"`
	VLANs       []VLAN            `json:"vlans"`
	IPAddresses []IPAddress       `json:"ipAddresses"`
}

type InterfaceRecord struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	MTU        Number `json:"mtu"`
	MACAddress string `json:"mac-address"`
	ARP        string `json:"arp"`
	// optional
	Switch  string `json:"switch"`
	Comment string `json:"comment"`
}

type VLAN struct {
	Name      string `json:"name"`
	VLANID    Number `json:"vlan-id"`
	Interface string `json:"interface"`
	Comment   string `json:"comment"`
}

type IPAddress struct {
	Address   string `json:"address"`
	Network   string `json:"network"`
	Interface string `json:"interface"`
	Disabled  bool   `json:"disabled"`
}

// TrafficSample holds live rates for one interface. Upload is device egress,
// download is device ingress.
type TrafficSample struct {
	Name                  string  `json:"name"`
	UploadBitsPerSecond   float64 `json:"upload_bps"`
	DownloadBitsPerSecond float64 `json:"download_bps"`
}

func (t *TrafficSample) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string `json:"name"`
		Upload   Number `json:"upload_bps"`
		Download Number `json:"download_bps"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = TrafficSample{
		Name:                  raw.Name,
		UploadBitsPerSecond:   raw.Upload.Value,
		DownloadBitsPerSecond: raw.Download.Value,
	}
	return nil
}
