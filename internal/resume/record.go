package resume

// Status is the authoritative server-side state of an uploaded document.
// Transitions only move forward, except failed, which is terminal and
// reachable from any non-terminal state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusParsed     Status = "parsed"
	StatusFailed     Status = "failed"
)

// NoResumeStatus is the display fallback when the server holds no records.
// An empty list is a valid state, not an error.
const NoResumeStatus = "No resume uploaded"

// Record is the client's read-mostly snapshot of one uploaded document. The
// server owns every mutation except the single client-initiated
// pending-to-uploaded transition.
type Record struct {
	ID               string  `json:"id"`
	Filename         string  `json:"filename"`
	OriginalFilename string  `json:"original_filename"`
	FileSize         *int64  `json:"file_size"`
	Status           Status  `json:"status"`
	UploadProgress   float64 `json:"upload_progress"`
	UploadedAt       string  `json:"uploaded_at"`
}

type ListResponse struct {
	Resumes []*Record `json:"resumes"`
	Total   int       `json:"total"`
}

// UploadTarget is the short-lived, single-use capability the server issues
// for one direct upload: a destination plus the exact form fields the storage
// signature covers. Never persisted.
type UploadTarget struct {
	ResumeID  string            `json:"resume_id"`
	URL       string            `json:"upload_url"`
	Fields    map[string]string `json:"upload_fields"`
	ExpiresIn int               `json:"expires_in"`
}
