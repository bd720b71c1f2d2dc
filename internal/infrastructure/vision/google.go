package vision

import (
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	config "github.com/avatarctic/docflow/configs"
	"github.com/avatarctic/docflow/internal/core/domain/document"
)

type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// GoogleExtractor runs Cloud Vision DOCUMENT_TEXT_DETECTION on the image.
type GoogleExtractor struct {
	annotate annotateFunc
	close    func() error
}

// NewGoogleExtractor connects with inline JSON credentials, a credentials file,
// or application default credentials, in that order.
func NewGoogleExtractor(ctx context.Context, cfg *config.VisionConfig) (*GoogleExtractor, error) {
	var opts []option.ClientOption
	switch {
	case cfg.GoogleCredentials != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.GoogleCredentials)))
	case cfg.GoogleCredFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	return &GoogleExtractor{
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
			return client.BatchAnnotateImages(ctx, req)
		},
		close: client.Close,
	}, nil
}

func (g *GoogleExtractor) Name() string { return "google" }

func (g *GoogleExtractor) Extract(ctx context.Context, img document.Upload) (string, error) {
	resp, err := g.annotate(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: img.Data},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("google vision: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", ErrEmptyResponse
	}
	r := resp.GetResponses()[0]
	if r.GetError() != nil {
		return "", fmt.Errorf("google vision: %s", r.GetError().GetMessage())
	}
	return strings.TrimSpace(r.GetFullTextAnnotation().GetText()), nil
}

func (g *GoogleExtractor) Close() error {
	if g.close != nil {
		return g.close()
	}
	return nil
}
