package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Brawl345/lensbot/metrics"
	"github.com/Brawl345/lensbot/utils/httpUtils"
)

const (
	ApiUrl       = "https://api.openai.com/v1/audio/transcriptions"
	MaxVoiceSize = 25000000 // File uploads to Whisper are limited to 25 MB
	MaxDuration  = 180      // 3 minutes
	DefaultModel = "whisper-1"
)

type (
	Whisper struct {
		apiKey   string
		endpoint string
		model    string
	}

	WhisperOption func(*Whisper)
)

func WithEndpoint(endpoint string) WhisperOption {
	return func(w *Whisper) {
		w.endpoint = endpoint
	}
}

// WithModel selects the transcription model. An empty model keeps the default.
func WithModel(model string) WhisperOption {
	return func(w *Whisper) {
		if model != "" {
			w.model = model
		}
	}
}

func NewWhisper(apiKey string, opts ...WhisperOption) *Whisper {
	w := &Whisper{
		apiKey:   apiKey,
		endpoint: ApiUrl,
		model:    DefaultModel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Whisper) StartListening(ctx context.Context, audio Audio, onText func(string), onState func(bool), opts Options) bool {
	if audio.Content == nil {
		metrics.VoiceSessionsTotal.WithLabelValues("unavailable").Inc()
		return false
	}
	if onText == nil {
		onText = func(string) {}
	}
	if onState == nil {
		onState = func(bool) {}
	}
	metrics.VoiceSessionsTotal.WithLabelValues("started").Inc()

	go func() {
		onState(true)
		defer onState(false)

		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("Panic during transcription")
				metrics.VoiceSessionsTotal.WithLabelValues("failed").Inc()
			}
		}()

		transcription, err := w.transcribe(ctx, audio, opts)
		if err != nil {
			log.Err(err).Msg("Failed to transcribe voice message")
			metrics.VoiceSessionsTotal.WithLabelValues("failed").Inc()
			return
		}

		if opts.InterimResults && len(transcription.Segments) > 1 {
			var sb strings.Builder
			for _, seg := range transcription.Segments[:len(transcription.Segments)-1] {
				sb.WriteString(seg.Text)
				onText(strings.TrimSpace(sb.String()))
			}
		}

		text := strings.TrimSpace(transcription.Text)
		if text == "" {
			log.Warn().Msg("Voice message contains no text")
			metrics.VoiceSessionsTotal.WithLabelValues("empty").Inc()
			return
		}
		onText(text)
		metrics.VoiceSessionsTotal.WithLabelValues("completed").Inc()
	}()

	return true
}

func (w *Whisper) transcribe(ctx context.Context, audio Audio, opts Options) (*transcriptionResponse, error) {
	fileName := audio.FileName
	if fileName == "" {
		fileName = "voice.ogg"
	}

	params := []httpUtils.MultiPartParam{
		{Name: "model", Value: w.model},
		{Name: "response_format", Value: "verbose_json"},
	}
	if lang := languageCode(opts.Language); lang != "" {
		params = append(params, httpUtils.MultiPartParam{Name: "language", Value: lang})
	}

	resp, err := httpUtils.MultiPartFormRequest(
		ctx,
		w.endpoint,
		map[string]string{
			"Authorization": fmt.Sprintf("Bearer %s", w.apiKey),
		},
		params,
		[]httpUtils.MultiPartFile{
			{
				FieldName: "file",
				FileName:  fileName,
				Content:   audio.Content,
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Err(err).Msg("Failed to close response body")
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var errorResponse apiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResponse); err != nil || errorResponse.Error.Message == "" {
			return nil, &httpUtils.HttpError{StatusCode: resp.StatusCode, Status: resp.Status}
		}
		return nil, fmt.Errorf("%s (%s): %w",
			errorResponse.Error.Message,
			errorResponse.Error.Type,
			&httpUtils.HttpError{StatusCode: resp.StatusCode, Status: resp.Status},
		)
	}

	var transcription transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&transcription); err != nil {
		return nil, fmt.Errorf("%w: %w", httpUtils.ErrMalformedResponse, err)
	}
	return &transcription, nil
}

// languageCode turns a BCP 47 tag into the ISO-639-1 code Whisper expects.
func languageCode(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
