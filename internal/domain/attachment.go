package domain

import "time"

// Attachment is file metadata pointing at a path on local disk. The physical
// file lifecycle follows the row: deleting the row removes the file.
type Attachment struct {
	ID         string
	ChatID     string
	MessageID  *string
	FileName   string
	FilePath   string
	MimeType   string
	SizeBytes  int64
	UploadedBy *string
	CreatedAt  time.Time
}
