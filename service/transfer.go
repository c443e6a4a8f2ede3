package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/0xacademy/academy/core"
)

// progressReader reports the running byte count after every read
type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}

// multipartBody frames the file as the single "file" field of a
// multipart/form-data body without buffering the file itself
func multipartBody(file *VideoFile, content io.Reader) (io.Reader, int64, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": file.Name,
	}))
	header.Set("Content-Type", file.ContentType)
	if _, err := mw.CreatePart(header); err != nil {
		return nil, 0, "", fmt.Errorf("write multipart header: %w", err)
	}

	prefix := bytes.Clone(buf.Bytes())
	buf.Reset()
	if err := mw.Close(); err != nil {
		return nil, 0, "", fmt.Errorf("write multipart trailer: %w", err)
	}
	suffix := bytes.Clone(buf.Bytes())

	body := io.MultiReader(bytes.NewReader(prefix), io.LimitReader(content, file.Size), bytes.NewReader(suffix))
	size := int64(len(prefix)) + file.Size + int64(len(suffix))

	return body, size, mw.FormDataContentType(), nil
}

// transfer posts file to uploadURL and returns nil only on a 2xx response
func (u *Uploader) transfer(ctx context.Context, uploadURL string, file *VideoFile, report func(sent, total int64)) error {
	content, err := file.Open()
	if err != nil {
		return fmt.Errorf("open video file: %w", err)
	}
	defer content.Close()

	body, size, contentType, err := multipartBody(file, content)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &progressReader{r: body, total: size, report: report})
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", core.ErrUploadRejected, resp.StatusCode)
	}
	return nil
}
