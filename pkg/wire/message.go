package wire

// GetPayload is the canonical cleartext body of a GET frame.
type GetPayload struct {
	DevID string `json:"devId"`
	GwID  string `json:"gwId"`
}

// SetPayload is the cleartext body encrypted into a SET frame.
type SetPayload struct {
	DevID string         `json:"devId"`
	UID   string         `json:"uid"`
	T     string         `json:"t"`
	Dps   map[string]any `json:"dps"`
}
