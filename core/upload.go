package core

// MaxVideoSize is the largest file the video host accepts (2GB)
const MaxVideoSize int64 = 2 * 1024 * 1024 * 1024

// UploadStatus is the state of an upload session
type UploadStatus string

const (
	UploadIdle       UploadStatus = "idle"
	UploadUploading  UploadStatus = "uploading"
	UploadProcessing UploadStatus = "processing"
	UploadSuccess    UploadStatus = "success"
	UploadError      UploadStatus = "error"
)

// UploadTarget is a one-time upload destination issued by the backend
type UploadTarget struct {
	UploadURL string `json:"uploadURL"`
	VideoID   string `json:"videoId"`
}

// UploadResult is returned once the video host acknowledged the file
type UploadResult struct {
	VideoID string
}
