package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/status"

	"github.com/avatarctic/docflow/internal/core/domain/document"
)

func TestOpenAIExtractor_SendsImageAsDataURL(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Hello\n\nWorld  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL
	e := NewOpenAIExtractor(openai.NewClientWithConfig(cfg), "", 0)

	text, err := e.Extract(context.Background(), document.Upload{ContentType: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	require.Equal(t, "Hello\n\nWorld", text)

	require.Equal(t, "gpt-4.1-mini", got.Model)
	require.Equal(t, 4096, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	parts := got.Messages[0].MultiContent
	require.Len(t, parts, 2)
	require.Equal(t, ExtractionPrompt, parts[0].Text)
	require.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,cG5n"))
}

func TestOpenAIExtractor_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL
	_, err := NewOpenAIExtractor(openai.NewClientWithConfig(cfg), "m", 10).Extract(context.Background(), document.Upload{ContentType: "image/png", Data: []byte("x")})
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGoogleExtractor(t *testing.T) {
	var seen *visionpb.BatchAnnotateImagesRequest
	g := &GoogleExtractor{annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		seen = req
		return &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
			FullTextAnnotation: &visionpb.TextAnnotation{Text: "Scanned text\n"},
		}}}, nil
	}}

	text, err := g.Extract(context.Background(), document.Upload{Data: []byte("img")})
	require.NoError(t, err)
	require.Equal(t, "Scanned text", text)
	require.Equal(t, []byte("img"), seen.Requests[0].Image.Content)
	require.Equal(t, visionpb.Feature_DOCUMENT_TEXT_DETECTION, seen.Requests[0].Features[0].Type)
	require.NoError(t, g.Close())
}

func TestGoogleExtractor_Errors(t *testing.T) {
	g := &GoogleExtractor{annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{{
			Error: &status.Status{Message: "bad image"},
		}}}, nil
	}}
	_, err := g.Extract(context.Background(), document.Upload{Data: []byte("img")})
	require.ErrorContains(t, err, "bad image")

	boom := errors.New("unavailable")
	g.annotate = func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return nil, boom
	}
	_, err = g.Extract(context.Background(), document.Upload{Data: []byte("img")})
	require.ErrorIs(t, err, boom)
}
