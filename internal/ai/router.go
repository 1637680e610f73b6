package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Provider identifies which vendor serves a route.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Route is the closed set of logical agent routes.
type Route string

const (
	RouteReplan         Route = "replan"
	RouteInstructions   Route = "instructions"
	RouteImagePantry    Route = "image/pantry"
	RouteImageOrder     Route = "image/order"
	RouteImageCookCheck Route = "image/cookcheck"
)

// AllRoutes enumerates every declared route; the router test walks it to
// keep Pick total.
var AllRoutes = []Route{
	RouteReplan,
	RouteInstructions,
	RouteImagePantry,
	RouteImageOrder,
	RouteImageCookCheck,
}

// ErrProvider marks failures of the model call itself (network, auth,
// quota), as opposed to invalid output.
var ErrProvider = errors.New("provider request failed")

// ErrUnknownRoute is returned for route values outside the enumeration.
var ErrUnknownRoute = errors.New("no model configured for route")

// ModelChoice is the (provider, model) pair statically configured for a route.
type ModelChoice struct {
	Provider Provider
	Model    string
}

// Pick maps a route to its configured provider and model. The switch covers
// every declared Route constant.
func Pick(route Route) (ModelChoice, error) {
	switch route {
	case RouteReplan:
		return ModelChoice{Provider: ProviderOpenAI, Model: "gpt-5.2"}, nil
	case RouteInstructions:
		return ModelChoice{Provider: ProviderOpenAI, Model: "gpt-5-mini"}, nil
	case RouteImagePantry, RouteImageOrder, RouteImageCookCheck:
		return ModelChoice{Provider: ProviderGemini, Model: "gemini-3-pro-preview"}, nil
	default:
		return ModelChoice{}, fmt.Errorf("%w: %q", ErrUnknownRoute, route)
	}
}

const systemMessage = "You are a helpful meal-planning assistant. Output only what the route expects."

// TextRunner runs a text-only agent route.
type TextRunner interface {
	RunAgent(ctx context.Context, route Route, prompt string) (string, error)
}

// VisionRunner runs an agent route with an inline image.
type VisionRunner interface {
	RunAgentWithImage(ctx context.Context, route Route, prompt, imageBase64, mimeType string) (string, error)
}

// Runner combines both agent entry points.
type Runner interface {
	TextRunner
	VisionRunner
}

// Client routes agent calls to the configured provider. It is constructed
// once at process start and injected into handlers; each provider client is
// initialized lazily so a missing API key only fails the routes that need it,
// with the constructor's descriptive error.
type Client struct {
	openaiOnce sync.Once
	openai     *OpenAIClient
	openaiErr  error

	geminiOnce sync.Once
	gemini     *GeminiClient
	geminiErr  error
}

// NewClient creates a new routing Client.
func NewClient() *Client {
	return &Client{}
}

func (c *Client) openaiClient() (*OpenAIClient, error) {
	c.openaiOnce.Do(func() {
		c.openai, c.openaiErr = NewOpenAIClient()
	})
	return c.openai, c.openaiErr
}

func (c *Client) geminiClient(ctx context.Context) (*GeminiClient, error) {
	c.geminiOnce.Do(func() {
		c.gemini, c.geminiErr = NewGeminiClient(ctx)
	})
	return c.gemini, c.geminiErr
}

// RunAgent sends a text prompt down the given route.
func (c *Client) RunAgent(ctx context.Context, route Route, prompt string) (string, error) {
	choice, err := Pick(route)
	if err != nil {
		return "", err
	}

	if choice.Provider == ProviderOpenAI {
		client, err := c.openaiClient()
		if err != nil {
			return "", err
		}
		return client.Complete(ctx, choice.Model, []Message{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		})
	}

	client, err := c.geminiClient(ctx)
	if err != nil {
		return "", err
	}
	return client.Generate(ctx, choice.Model, prompt)
}

// RunAgentWithImage sends a prompt plus image down the given route. Only
// Gemini routes accept image input.
func (c *Client) RunAgentWithImage(ctx context.Context, route Route, prompt, imageBase64, mimeType string) (string, error) {
	choice, err := Pick(route)
	if err != nil {
		return "", err
	}
	if choice.Provider != ProviderGemini {
		return "", fmt.Errorf("route %q is not configured for image input", route)
	}

	client, err := c.geminiClient(ctx)
	if err != nil {
		return "", err
	}
	return client.GenerateWithImage(ctx, choice.Model, prompt, imageBase64, mimeType)
}
