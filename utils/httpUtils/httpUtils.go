package httpUtils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"github.com/Brawl345/lensbot/logger"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

var (
	log               = logger.New("httpUtils")
	DefaultHttpClient *http.Client
)

const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost
)

func init() {
	DefaultHttpClient = createHTTPClient()
}

func createHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = 7 * time.Second
	transport.ResponseHeaderTimeout = 15 * time.Second
	transport.MaxIdleConnsPerHost = 20
	transport.IdleConnTimeout = 5 * time.Minute

	client := &http.Client{
		Transport: transport,
	}

	return client
}

type (
	RequestOptions struct {
		Method   string
		URL      string
		Headers  map[string]string
		Body     any // JSON-encoded unless it is an io.Reader
		Response any // JSON target, may be nil
	}

	MultiPartParam struct {
		Name  string
		Value string
	}

	MultiPartFile struct {
		FieldName string
		FileName  string
		Content   io.Reader
	}
)

// MakeRequest performs a single request and decodes a JSON response into opts.Response.
// Non-200 responses return *HttpError, undecodable bodies wrap ErrMalformedResponse.
func MakeRequest(ctx context.Context, opts RequestOptions) error {
	log.Debug().
		Str("method", opts.Method).
		Str("url", opts.URL).
		Send()

	var reqBody io.Reader
	isJson := false
	switch v := opts.Body.(type) {
	case nil:
	case io.Reader:
		reqBody = v
	default:
		jsonData, err := json.Marshal(v)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(jsonData)
		isJson = true
	}

	method := opts.Method
	if method == "" {
		method = MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, opts.URL, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if isJson {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := DefaultHttpClient.Do(req)
	if err != nil {
		return err
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Err(err).Msg("Failed to close response body")
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &HttpError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	if opts.Response == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, opts.Response); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	log.Debug().
		Str("url", opts.URL).
		Int("bytes", len(body)).
		Send()
	return nil
}

func MultiPartFormRequest(ctx context.Context, url string, headers map[string]string, params []MultiPartParam, files []MultiPartFile) (*http.Response, error) {
	log.Debug().
		Str("url", url).
		Interface("params", params).
		Send()

	var b bytes.Buffer
	writer := multipart.NewWriter(&b)

	for _, param := range params {
		err := writer.WriteField(param.Name, param.Value)
		if err != nil {
			return nil, err
		}
	}

	for _, file := range files {
		fw, err := writer.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(fw, file.Content)
		if err != nil {
			return nil, err
		}
	}

	err := writer.Close()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, MethodPost, url, &b)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return DefaultHttpClient.Do(req)
}

// DownloadFile fetches a Telegram file. The caller closes the returned body.
func DownloadFile(b *gotgbot.Bot, fileID string) (io.ReadCloser, error) {
	file, err := b.GetFile(fileID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get file from Telegram: %w", err)
	}

	fileUrl := file.URL(b, nil)
	resp, err := DefaultHttpClient.Get(fileUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &HttpError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	return resp.Body, nil
}
