package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
)

type labelDetector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionIdentifier names foods from AWS Rekognition image labels
type RekognitionIdentifier struct {
	client        labelDetector
	maxLabels     int32
	minConfidence float32
}

// labels too broad to look up on their own
var genericLabels = map[string]bool{
	"food":       true,
	"meal":       true,
	"dish":       true,
	"plate":      true,
	"lunch":      true,
	"dinner":     true,
	"breakfast":  true,
	"produce":    true,
	"platter":    true,
	"cuisine":    true,
	"tableware":  true,
	"bowl":       true,
	"cutlery":    true,
	"fork":       true,
	"spoon":      true,
	"table":      true,
	"dining":     true,
	"supper":     true,
	"brunch":     true,
	"vegetable":  true,
	"fruit":      true,
	"beverage":   true,
	"drink":      true,
	"ingredient": true,
}

func NewRekognitionIdentifier(ctx context.Context, region string) (*RekognitionIdentifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newRekognitionIdentifier(rekognition.NewFromConfig(cfg)), nil
}

func newRekognitionIdentifier(client labelDetector) *RekognitionIdentifier {
	return &RekognitionIdentifier{client: client, maxLabels: 15, minConfidence: 75}
}

func (r *RekognitionIdentifier) IdentifyFoods(ctx context.Context, img domain.Image) ([]string, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img.Data},
		MaxLabels:     aws.Int32(r.maxLabels),
		MinConfidence: aws.Float32(r.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}
	return foodLabels(out.Labels), nil
}

func foodLabels(labels []types.Label) []string {
	seen := make(map[string]bool)
	var names []string
	for _, l := range labels {
		if l.Name == nil {
			continue
		}
		name := strings.TrimSpace(*l.Name)
		key := strings.ToLower(name)
		if name == "" || genericLabels[key] || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}
