package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a backend identifier that is sometimes sent as a number and sometimes as a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type RouterIdentity struct {
	ID       ID     `json:"id_router"`
	Name     string `json:"router_name"`
	PublicIP string `json:"ip_publica"`
	WANIP    string `json:"ip_wan"`
	LANIP    string `json:"ip_lan"`
}

// ManagementIPs returns the non-empty management addresses, public first.
func (r RouterIdentity) ManagementIPs() []string {
	ips := make([]string, 0, 3)
	for _, ip := range []string{r.PublicIP, r.WANIP, r.LANIP} {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

type RouterRequest struct {
	RouterID ID `json:"id_router"`
}
