package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/lox/skyglass/internal/forecast"
)

// ErrNoAPIKey is returned by NewGenerator when no OpenAI key is configured.
var ErrNoAPIKey = errors.New("OPENAI_API_KEY not set")

// Generator handles banner image generation using OpenAI's API.
type Generator struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewGenerator creates a new image generator. An empty apiKey disables
// generation and returns ErrNoAPIKey.
func NewGenerator(apiKey string, logger *zap.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  "gpt-image-1",
		logger: logger.Named("imagegen"),
	}, nil
}

// Generate creates a banner for the given gradient and returns PNG bytes.
func (g *Generator) Generate(ctx context.Context, gradient forecast.Gradient) ([]byte, error) {
	prompt := forecast.BuildBannerPrompt(gradient)

	g.logger.Info("generating banner", zap.String("gradient", string(gradient)))

	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:        g.model,
		Prompt:       prompt,
		Size:         openai.ImageGenerateParamsSize1536x1024, // Wide landscape for header
		Quality:      openai.ImageGenerateParamsQualityLow,
		OutputFormat: openai.ImageGenerateParamsOutputFormatPNG,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no image data returned")
	}

	imageData := resp.Data[0].B64JSON
	if imageData == "" {
		return nil, errors.New("empty image data returned")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	g.logger.Info("generated banner", zap.String("gradient", string(gradient)), zap.Int("bytes", len(imageBytes)))
	return imageBytes, nil
}
