package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/dubbing/dubber/secrets"
	"github.com/lfedgeai/dubbing/pkg/net"
)

const (
	OutputFormat = "riff-24khz-16bit-mono-pcm"

	voicesListPath = "/cognitiveservices/voices/list"
	synthesizePath = "/cognitiveservices/v1"
	userAgent      = "dubber"
)

var ErrSynthesis = errors.New("synthesis failed")

// SynthesisError is a non-success answer from the speech service.
type SynthesisError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("error from Azure API (%s): status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *SynthesisError) Is(target error) bool {
	return target == ErrSynthesis
}

// Client talks to the Azure Speech REST API of the region named in the
// credentials.
type Client struct {
	creds      secrets.Provider
	httpClient *http.Client

	// BaseURL overrides https://{region}.tts.speech.microsoft.com when set.
	BaseURL string
}

func NewClient(creds secrets.Provider, httpClient *http.Client) *Client {
	return &Client{creds: creds, httpClient: httpClient}
}

func (c *Client) endpoint(creds secrets.AzureCredentials, path string) string {
	base := c.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.tts.speech.microsoft.com", creds.Region)
	}
	return strings.TrimSuffix(base, "/") + path
}

func (c *Client) credentials(ctx context.Context) (secrets.AzureCredentials, error) {
	creds, err := c.creds.AzureCredentials(ctx)
	if err != nil {
		return secrets.AzureCredentials{}, fmt.Errorf("error loading speech credentials: %w", err)
	}
	return creds, nil
}

// ListVoices fetches the full voice catalog.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	creds, err := c.credentials(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := net.SendRequest(ctx, c.httpClient, http.MethodGet,
		c.endpoint(creds, voicesListPath), nil, net.ContentTypeNone,
		map[string]string{"Ocp-Apim-Subscription-Key": creds.APIKey})
	if err != nil {
		return nil, fmt.Errorf("error fetching voices: %w", err)
	}
	if !resp.OK() {
		log.Errorf("Failed to fetch Azure voices: %d %s", resp.StatusCode, string(resp.Body))
		return nil, &SynthesisError{Op: "voices", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var voices []Voice
	if err := json.Unmarshal(resp.Body, &voices); err != nil {
		return nil, fmt.Errorf("error unmarshalling voices: %v", err)
	}
	log.Debugf("Fetched %d voices", len(voices))
	return voices, nil
}

// Synthesize renders an SSML document to WAV bytes. lang is the document's
// xml:lang and is only used for logging.
func (c *Client) Synthesize(ctx context.Context, ssml []byte, lang string) ([]byte, error) {
	creds, err := c.credentials(ctx)
	if err != nil {
		return nil, err
	}
	log.Infof("Synthesizing %d bytes of SSML for %s", len(ssml), lang)
	resp, err := net.SendRequest(ctx, c.httpClient, http.MethodPost,
		c.endpoint(creds, synthesizePath), ssml, net.ContentTypeSSML,
		map[string]string{
			"Ocp-Apim-Subscription-Key": creds.APIKey,
			"X-Microsoft-OutputFormat":  OutputFormat,
			"User-Agent":                userAgent,
		})
	if err != nil {
		return nil, fmt.Errorf("error calling speech service: %w", err)
	}
	if !resp.OK() {
		log.Errorf("Error from Azure API: %d %s", resp.StatusCode, string(resp.Body))
		return nil, &SynthesisError{Op: "synthesize", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	if len(resp.Body) == 0 {
		return nil, &SynthesisError{Op: "synthesize", StatusCode: resp.StatusCode, Body: "empty audio"}
	}
	return resp.Body, nil
}
