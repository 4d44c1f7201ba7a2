package discovery

// AnnouncementRecord is a decoded device announcement: device_id, its
// current IPv4 address, and the protocol version it advertises. It is
// not retained beyond the NotifyFunc call that delivers it.
type AnnouncementRecord struct {
	DeviceID        string
	IPv4            string
	ProtocolVersion string
}

// NotifyFunc receives each successfully decoded announcement. Exactly
// one NotifyFunc is registered per Scanner.
type NotifyFunc func(AnnouncementRecord)

// wireAnnouncement mirrors the JSON shape a Tuya device broadcasts:
// {"gwId": "...", "ip": "...", "version": "..."}.
type wireAnnouncement struct {
	GwID    string `json:"gwId"`
	IP      string `json:"ip"`
	Version string `json:"version"`
}
