// Package ai holds the model clients that identify foods in photos and
// estimate their macros.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
	"github.com/vladimiradmaev/macro-tracker/internal/nutrition"
	"google.golang.org/api/option"
)

// generator is implemented by *genai.GenerativeModel
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type GeminiClient struct {
	client   *genai.Client
	identify generator
	macros   generator
}

const identifyPrompt = `You are an expert food identifier. Identify the food items present in the photo of the meal.

REQUIREMENTS:
- Return one entry per distinct food item
- Use short common names ("grilled chicken breast", "white rice")
- Do not include plates, cutlery or other non-food objects
- If no food is visible return an empty list`

const macrosPrompt = `You are a nutritional expert. Given a food item and its serving size, look up its nutritional information.

Food Item: %s
Serving Size: %s

Return calories in kcal and protein, carbs, fat and fiber in grams for the given serving size.`

// NewGeminiClient creates the client with one model per task, each with its
// own JSON response schema.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	identify := client.GenerativeModel(modelName)
	identify.ResponseMIMEType = "application/json"
	identify.ResponseSchema = foodItemsSchema

	macros := client.GenerativeModel(modelName)
	macros.ResponseMIMEType = "application/json"
	macros.ResponseSchema = macrosSchema
	macros.SetTemperature(0.2)

	logger.Info("Gemini client initialized", "model", modelName)
	return &GeminiClient{client: client, identify: identify, macros: macros}, nil
}

var foodItemsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"foodItems": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of food items identified in the image.",
		},
	},
	Required: []string{"foodItems"},
}

var macrosSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"calories": {Type: genai.TypeNumber, Description: "Calories for the given serving size."},
		"protein":  {Type: genai.TypeNumber, Description: "Protein in grams for the given serving size."},
		"carbs":    {Type: genai.TypeNumber, Description: "Carbohydrates in grams for the given serving size."},
		"fat":      {Type: genai.TypeNumber, Description: "Fat in grams for the given serving size."},
		"fiber":    {Type: genai.TypeNumber, Description: "Fiber in grams for the given serving size."},
	},
	Required: []string{"calories", "protein", "carbs", "fat", "fiber"},
}

// IdentifyFoods returns the names of the foods visible in img
func (c *GeminiClient) IdentifyFoods(ctx context.Context, img domain.Image) ([]string, error) {
	blob := genai.Blob{MIMEType: img.MIMEType, Data: img.Data}
	resp, err := c.identify.GenerateContent(ctx, blob, genai.Text(identifyPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return parseFoodItems(text)
}

// LookupMacros estimates the nutrients of one serving of foodName
func (c *GeminiClient) LookupMacros(ctx context.Context, foodName, servingSize string) (nutrition.Nutrients, error) {
	prompt := fmt.Sprintf(macrosPrompt, foodName, servingSize)
	resp, err := c.macros.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nutrition.Nutrients{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nutrition.Nutrients{}, err
	}
	return parseMacros(text)
}

// Close releases the underlying connection
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

var errEmptyResponse = errors.New("model returned no content")

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errEmptyResponse
	}
	return sb.String(), nil
}
