/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package assistant talks to the crop assistant HTTP backend.
package assistant

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"krishimitra/internal/clip"
	"krishimitra/pkg/format"
)

var (
	ErrEmptyRequest = errors.New("assistant: nothing to send")
	// ErrNoTranscription means the backend has no /transcribe route. The
	// stock backend only serves /predict.
	ErrNoTranscription = errors.New("assistant: backend does not transcribe speech")
)

// statusError is a non-200 reply from the backend.
type statusError struct {
	path   string
	code   int
	status string
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("post %s: status %s: %s", e.path, e.status, e.body)
}

// maxReplyBytes bounds a /predict body; the mp3 rides inside it as base64.
const maxReplyBytes = 48 << 20

// Request is one user turn.
type Request struct {
	Text      string
	Language  string
	Image     []byte
	ImageName string
	ImageMime string
}

// Reply is the assistant's answer. Text is empty when the backend returned
// neither an analysis nor an error.
type Reply struct {
	Text     string
	AudioRef string
	Failed   bool
}

type predictResponse struct {
	Analysis     string  `json:"analysis"`
	AudioContent *string `json:"audioContent"`
	Error        string  `json:"error"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
	HTTPClient  *http.Client
}

// Client sends requests to the backend, at most one per MinInterval.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

func New(opts Options, log zerolog.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if opts.MinInterval > 0 {
		lim = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}
	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		limiter: lim,
		log:     log.With().Str("component", "assistant").Logger(),
	}
}

// ======================================================
// Endpoints
// ======================================================

// Predict sends text and an optional photo to /predict. Transport and decode
// errors are returned; an error reported by the backend is a Failed reply.
func (c *Client) Predict(ctx context.Context, req Request) (*Reply, error) {
	if strings.TrimSpace(req.Text) == "" && len(req.Image) == 0 {
		return nil, ErrEmptyRequest
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	if len(req.Image) > 0 {
		name := req.ImageName
		if name == "" {
			name = "photo"
		}
		if err := writeFile(mw, "file", name, req.ImageMime, req.Image); err != nil {
			return nil, err
		}
	} else {
		// the backend expects the part even when there is no photo
		if err := writeFile(mw, "file", "empty.png", format.MimePNG, nil); err != nil {
			return nil, err
		}
	}
	mw.WriteField("text", req.Text)
	mw.WriteField("language", languageOrDefault(req.Language))
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var resp predictResponse
	if err := c.post(ctx, "/predict", mw.FormDataContentType(), body, &resp); err != nil {
		return nil, err
	}

	reply := &Reply{Text: resp.Analysis}
	if reply.Text == "" && resp.Error != "" {
		reply.Text = resp.Error
		reply.Failed = true
	}
	if resp.AudioContent != nil && *resp.AudioContent != "" {
		audio, err := base64.StdEncoding.DecodeString(*resp.AudioContent)
		if err != nil {
			c.log.Warn().Err(err).Msg("discarding undecodable audio")
		} else {
			reply.AudioRef = clip.DataURI(format.MimeMP3, audio)
		}
	}

	c.log.Info().
		Int("chars", len(reply.Text)).
		Bool("audio", reply.AudioRef != "").
		Bool("failed", reply.Failed).
		Msg("predict")
	return reply, nil
}

// Transcribe sends a 16 kHz mono WAV to /transcribe and returns the text.
// A backend without that route yields ErrNoTranscription.
func (c *Client) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	if len(wav) == 0 {
		return "", ErrEmptyRequest
	}
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := writeFile(mw, "file", "voice.wav", format.MimeWAV, wav); err != nil {
		return "", err
	}
	mw.WriteField("language", languageOrDefault(language))
	if err := mw.Close(); err != nil {
		return "", err
	}

	var resp transcribeResponse
	if err := c.post(ctx, "/transcribe", mw.FormDataContentType(), body, &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.code == http.StatusNotFound || se.code == http.StatusMethodNotAllowed) {
			return "", fmt.Errorf("%w: %v", ErrNoTranscription, err)
		}
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// Ping checks that the backend answers on its root route.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping backend: status %s", resp.Status)
	}
	return nil
}

// ======================================================
// Transport
// ======================================================

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("backend")

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{path: path, code: resp.StatusCode, status: resp.Status, body: strings.TrimSpace(string(snippet))}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplyBytes)).Decode(out); err != nil {
		return fmt.Errorf("post %s: decode: %w", path, err)
	}
	return nil
}

func writeFile(mw *multipart.Writer, field, name, mime string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	if mime == "" {
		mime = "application/octet-stream"
	}
	h.Set("Content-Type", mime)
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return "en"
	}
	return lang
}
