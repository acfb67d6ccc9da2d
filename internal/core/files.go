package core

// FileRef describes a stored document. ModifiedTime is RFC 3339 as reported
// by the backing store.
type FileRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MIMEType     string `json:"mimeType"`
	ViewLink     string `json:"viewLink,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,omitempty"`
}
