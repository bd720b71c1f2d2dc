package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/docflow/internal/core/domain/image"
	"github.com/avatarctic/docflow/test/mocks"
)

func TestImageService_Generate(t *testing.T) {
	var generated string
	gen := &mocks.ImageGeneratorMock{
		EnhancePromptFn: func(_ context.Context, prompt, previous string) (string, error) {
			return "enhanced " + prompt, nil
		},
		GenerateFn: func(_ context.Context, prompt string) (string, error) {
			generated = prompt
			return "aW1n", nil
		},
	}
	cache := mocks.NewCacheMock()
	svc := NewImageService(gen, cache, nil)

	res, err := svc.Generate(context.Background(), uuid.New(), &image.GenerateRequest{Prompt: " a fox "})
	require.NoError(t, err)
	assert.Equal(t, "enhanced a fox", generated)
	assert.Equal(t, "aW1n", res.ImageBase64)
	assert.Equal(t, "data:image/png;base64,aW1n", res.DataURL)
	_, err = uuid.Parse(res.ResponseID)
	require.NoError(t, err)
	assert.Contains(t, cache.Data, historyKey(res.ResponseID))
}

func TestImageService_FollowUpUsesPreviousPrompt(t *testing.T) {
	var previousSeen []string
	gen := &mocks.ImageGeneratorMock{
		EnhancePromptFn: func(_ context.Context, prompt, previous string) (string, error) {
			previousSeen = append(previousSeen, previous)
			return prompt + "!", nil
		},
	}
	svc := NewImageService(gen, mocks.NewCacheMock(), nil)
	owner := uuid.New()

	first, err := svc.Generate(context.Background(), owner, &image.GenerateRequest{Prompt: "a fox"})
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), owner, &image.GenerateRequest{Prompt: "make it blue", ResponseID: first.ResponseID})
	require.NoError(t, err)
	// Another user cannot refine someone else's image.
	_, err = svc.Generate(context.Background(), uuid.New(), &image.GenerateRequest{Prompt: "green", ResponseID: first.ResponseID})
	require.NoError(t, err)
	// Unknown ids start fresh.
	_, err = svc.Generate(context.Background(), owner, &image.GenerateRequest{Prompt: "red", ResponseID: "missing"})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "a fox!", "", ""}, previousSeen)
}

func TestImageService_EnhancementFailureFallsBack(t *testing.T) {
	var generated string
	gen := &mocks.ImageGeneratorMock{
		EnhancePromptFn: func(context.Context, string, string) (string, error) { return "", errors.New("quota") },
		GenerateFn: func(_ context.Context, prompt string) (string, error) {
			generated = prompt
			return "aW1n", nil
		},
	}
	cache := mocks.NewCacheMock()
	cache.Err = errors.New("redis down")
	svc := NewImageService(gen, cache, nil)

	_, err := svc.Generate(context.Background(), uuid.New(), &image.GenerateRequest{Prompt: "a fox", ResponseID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "a fox", generated)
}

func TestImageService_Errors(t *testing.T) {
	svc := NewImageService(&mocks.ImageGeneratorMock{}, nil, nil)
	_, err := svc.Generate(context.Background(), uuid.New(), &image.GenerateRequest{Prompt: "  "})
	assert.ErrorIs(t, err, image.ErrPromptRequired)
	assert.True(t, IsImageClientError(err))

	empty := NewImageService(&mocks.ImageGeneratorMock{
		GenerateFn: func(context.Context, string) (string, error) { return "", nil },
	}, nil, nil)
	_, err = empty.Generate(context.Background(), uuid.New(), &image.GenerateRequest{Prompt: "x"})
	assert.ErrorIs(t, err, image.ErrNoImage)

	failing := NewImageService(&mocks.ImageGeneratorMock{
		GenerateFn: func(context.Context, string) (string, error) { return "", image.ErrNoImage },
	}, nil, nil)
	_, err = failing.Generate(context.Background(), uuid.New(), &image.GenerateRequest{Prompt: "x"})
	assert.ErrorIs(t, err, image.ErrNoImage)
}
