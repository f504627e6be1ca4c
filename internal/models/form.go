package models

// Upload is a file part of a multipart create/update request
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ContentForm carries the editable fields of a blog or video.
// Nil fields are not sent.
type ContentForm struct {
	Title    *string
	Body     *string
	Status   *Status
	Duration *string

	Image     *Upload // blog only
	Video     *Upload // video only
	Thumbnail *Upload // video only
}

// IsEmpty reports whether the form carries no field at all
func (f ContentForm) IsEmpty() bool {
	return f.Title == nil && f.Body == nil && f.Status == nil && f.Duration == nil &&
		f.Image == nil && f.Video == nil && f.Thumbnail == nil
}

// Diff returns the subset of f that differs from original.
// New uploads always count as a change.
func (f ContentForm) Diff(original *ContentItem) ContentForm {
	if original == nil {
		return f
	}

	var out ContentForm
	if f.Title != nil && *f.Title != original.Title {
		out.Title = f.Title
	}
	if f.Body != nil && *f.Body != original.Body {
		out.Body = f.Body
	}
	if f.Status != nil && *f.Status != original.Status {
		out.Status = f.Status
	}
	if f.Duration != nil && *f.Duration != original.Duration {
		out.Duration = f.Duration
	}
	out.Image = f.Image
	out.Video = f.Video
	out.Thumbnail = f.Thumbnail
	return out
}
