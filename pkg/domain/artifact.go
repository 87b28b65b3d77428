package domain

// Artifact is a rendered document ready for delivery.
type Artifact struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Caption  string `json:"caption"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}
