package pipeline

// Supported upload content types.
const (
	ContentTypeText  = "text"
	ContentTypePDF   = "pdf"
	ContentTypeVideo = "video"
)

// UploadRequest is a single normalized upload: inline text for
// ContentTypeText, a file path on disk otherwise. The file is owned by the
// caller; the pipeline never deletes it.
type UploadRequest struct {
	ContentType string
	Text        string
	FilePath    string
	Language    string
}

// ExtractionResult is the output of the normalization stage.
type ExtractionResult struct {
	Text       string
	MethodUsed string
	Warnings   []string
}

// StructuringRequest is the input to the AI structuring stage.
type StructuringRequest struct {
	Text        string
	Language    string
	ContentType string
}
