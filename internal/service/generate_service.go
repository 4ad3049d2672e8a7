package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"researchnest/internal/ai"
)

var (
	ErrProjectNameRequired = errors.New("project name is required")
	ErrDescriptionFailed   = errors.New("failed to generate description")
	ErrImageFailed         = errors.New("failed to generate image")
)

// GenerateService produces AI-written project descriptions and covers
type GenerateService struct {
	completer ai.Completer
	images    ai.ImageGenerator
}

// NewGenerateService creates a new generate service
func NewGenerateService(completer ai.Completer, images ai.ImageGenerator) *GenerateService {
	return &GenerateService{completer: completer, images: images}
}

// Description writes a short project description
func (s *GenerateService) Description(ctx context.Context, projectName, category, gradeLevel string) (string, error) {
	if strings.TrimSpace(projectName) == "" {
		return "", ErrProjectNameRequired
	}
	out, err := s.completer.Complete(ctx, ai.DescriptionMessages(projectName, category, gradeLevel), ai.CreativeTemperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDescriptionFailed, err)
	}
	return strings.TrimSpace(out), nil
}

// ProjectImage writes an image prompt and renders it, returning the
// temporary image URL
func (s *GenerateService) ProjectImage(ctx context.Context, projectName, description, category string) (string, error) {
	if strings.TrimSpace(projectName) == "" {
		return "", ErrProjectNameRequired
	}

	prompt, err := s.completer.Complete(ctx, ai.ImagePromptMessages(projectName, description, category), ai.CreativeTemperature)
	if err != nil {
		return "", fmt.Errorf("%w: prompt: %v", ErrImageFailed, err)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrImageFailed)
	}

	imageURL, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageFailed, err)
	}
	return imageURL, nil
}
