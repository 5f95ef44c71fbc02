package model

// AttachmentKind classifies an attached file
type AttachmentKind string

const (
	AttachmentPhoto AttachmentKind = "photo"
	AttachmentAudio AttachmentKind = "audio"
	AttachmentFile  AttachmentKind = "file"
)

// Attachment points at a blob in the attachment store. Occurrences of one
// series carry copies of the same record, so StoredFileName is shared.
type Attachment struct {
	ID             string         `json:"id"`
	OriginalName   string         `json:"original_name"`
	StoredFileName string         `json:"stored_file_name"`
	Kind           AttachmentKind `json:"kind"`
}
