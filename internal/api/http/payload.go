package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/service"
)

const (
	bodyPart   = "body"
	filePrefix = "file:"
)

// readPayload accepts either a JSON object or a multipart form carrying the
// JSON object in a "body" part plus files named "file:{field}" or
// "file:{field}:{index}".
func readPayload(c *gin.Context, maxBytes int64) (domain.Record, []service.FileUpload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
		}
		return domain.Record(body), nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}

	body := domain.Record{}
	if raw := form.Value[bodyPart]; len(raw) > 0 && strings.TrimSpace(raw[0]) != "" {
		if err := json.Unmarshal([]byte(raw[0]), &body); err != nil {
			return nil, nil, fmt.Errorf("%w: body part: %w", domain.ErrInvalidRecord, err)
		}
	}

	var files []service.FileUpload
	for name, headers := range form.File {
		if !strings.HasPrefix(name, filePrefix) {
			continue
		}
		field, index, err := parseFileKey(strings.TrimPrefix(name, filePrefix))
		if err != nil {
			return nil, nil, err
		}
		for _, fh := range headers {
			data, err := readFile(fh, maxBytes)
			if err != nil {
				return nil, nil, err
			}
			files = append(files, service.FileUpload{
				Field:       field,
				Index:       index,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return body, files, nil
}

func parseFileKey(key string) (string, int, error) {
	field, idx, found := strings.Cut(key, ":")
	if field == "" {
		return "", 0, fmt.Errorf("%w: empty file field", domain.ErrInvalidRecord)
	}
	if !found {
		return field, -1, nil
	}
	index, err := strconv.Atoi(idx)
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: bad file index %q", domain.ErrInvalidRecord, idx)
	}
	return field, index, nil
}

// readFile reads at most maxBytes+1 so the uploader can still reject the
// oversized payload with its own error.
func readFile(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrUploadFailed, fh.Filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrUploadFailed, fh.Filename, err)
	}
	return data, nil
}
