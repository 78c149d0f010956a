package model

// Application is a registered downloadable application. CreatedBy and
// UpdatedBy hold the ids of the users that last touched the row.
type Application struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
	CreatedBy   int64  `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedBy   int64  `json:"updated_by"`
	UpdatedAt   string `json:"updated_at"`
}
