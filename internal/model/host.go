package model

// Host 清单中的一台设备
type Host struct {
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
}

// Label 日志与归档用的主机标识，无主机名时退化为IP
func (h Host) Label() string {
	if h.Hostname != "" {
		return h.Hostname
	}
	return h.IP
}
