package messaging

// Attachment is a file owned by exactly one message.
type Attachment struct {
	ID        string `db:"id"`
	MessageID string `db:"message_id"`
	FileName  string `db:"file_name"`
	FileURL   string `db:"file_url"`
	FileType  string `db:"file_type"`
	FileSize  int64  `db:"file_size"`
}

// MaxAttachmentsPerMessage bounds the atomic append.
const MaxAttachmentsPerMessage = 10
