package remote

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/content-lifecycle-console/internal/models"
)

// encodeForm writes the non-nil fields of form as multipart/form-data.
// Blogs carry their text in "content", videos in "description".
func encodeForm(kind models.ContentKind, form models.ContentForm) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct {
		name  string
		value *string
	}{
		{"title", form.Title},
		{bodyFieldName(kind), form.Body},
		{"duration", form.Duration},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := w.WriteField(f.name, *f.value); err != nil {
			return nil, "", err
		}
	}
	if form.Status != nil {
		if err := w.WriteField("status", string(*form.Status)); err != nil {
			return nil, "", err
		}
	}

	files := []struct {
		name   string
		upload *models.Upload
	}{
		{"image", form.Image},
		{"video", form.Video},
		{"thumbnail", form.Thumbnail},
	}
	for _, f := range files {
		if f.upload == nil {
			continue
		}
		if err := writeFile(w, f.name, f.upload); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, u *models.Upload) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, u.Filename))
	contentType := u.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(u.Data)
	return err
}

func bodyFieldName(kind models.ContentKind) string {
	if kind == models.KindVideo {
		return "description"
	}
	return "content"
}
