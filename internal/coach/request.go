package coach

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

type filePart struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func (c *Client) postJSON(ctx context.Context, url string, payload any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interview.ErrTransport, err)
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("request payload",
		zap.String("url", url),
		zap.Int("payload_length", utf8.RuneCount(body)),
		zap.String("payload_preview", utils.TruncateForLog(string(body), c.MaxLogLength)),
	)

	return c.do(req)
}

func (c *Client) postMultipart(ctx context.Context, url string, fields map[string]string, files []filePart) (map[string]any, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return nil, err
		}
	}

	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.name))
		header.Set("Content-Type", file.contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, err
		}

		if _, err := part.Write(file.data); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interview.ErrTransport, err)
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req)
}

// do sends the request and decodes the JSON object in the answer. Non-2xx answers
// become *interview.RequestFailedError, everything below HTTP becomes ErrTransport.
func (c *Client) do(req *http.Request) (map[string]any, error) {
	resp, err := c.request(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interview.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", interview.ErrTransport, err)
	}

	c.logger.Debug("got response",
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.String("response_preview", utils.TruncateForLog(string(raw), c.MaxLogLength)),
	)

	var data map[string]any
	decodeErr := json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		failed := &interview.RequestFailedError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			failed.Detail = detailOf(data)
		}
		return nil, failed
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %w", interview.ErrTransport, decodeErr)
	}

	if data == nil {
		return nil, fmt.Errorf("%w: response is not a json object", interview.ErrInvalidResponseShape)
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(reader)
}
