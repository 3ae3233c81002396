package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AzureOption configures the Azure TTS client.
type AzureOption func(*AzureClient)

// WithVoice sets the TTS voice.
func WithVoice(voice string) AzureOption {
	return func(c *AzureClient) {
		c.voice = voice
	}
}

// WithAudioFormat sets the audio output format.
func WithAudioFormat(format string) AzureOption {
	return func(c *AzureClient) {
		c.format = format
	}
}

// WithHTTPTimeout sets the HTTP client timeout for TTS requests.
func WithHTTPTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) {
		c.httpClient.Timeout = d
	}
}

// AzureClient synthesizes speech via the Azure Cognitive Services REST API.
type AzureClient struct {
	key        string
	endpoint   string
	voice      string
	lang       string
	format     string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// Voice returns the configured voice name.
func (c *AzureClient) Voice() string { return c.voice }

// NewAzureClient creates an Azure TTS client for the given region. The SSML
// language tag is derived from the voice name ("tr-TR-EmelNeural" speaks tr-TR).
func NewAzureClient(key, region string, log *zap.SugaredLogger, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		key:        key,
		endpoint:   fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region),
		voice:      DefaultVoice,
		format:     DefaultAudioFormat,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lang = voiceLang(c.voice)
	return c
}

// Synthesize converts text to WAV audio bytes.
func (c *AzureClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body := c.ssml(text)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("azure tts: build request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.format)
	req.Header.Set("User-Agent", "KitchenPilot/1.0")

	c.log.Debugw("azure tts request", "chars", len(text), "voice", c.voice)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure tts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("azure tts: status %d: %s", resp.StatusCode, string(detail))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure tts: read audio: %w", err)
	}
	c.log.Debugw("azure tts response", "bytes", len(audio))
	return audio, nil
}

// xmlEscaper covers the characters that would break the SSML document.
// Spoken lines occasionally contain "&" (quantities, brand names).
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func (c *AzureClient) ssml(text string) string {
	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice xml:lang='%s' name='%s'>%s</voice></speak>`,
		c.lang, c.lang, c.voice, xmlEscaper.Replace(text),
	)
}

func voiceLang(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "tr-TR"
}
