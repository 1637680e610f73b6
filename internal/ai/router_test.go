package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickIsTotalOverDeclaredRoutes(t *testing.T) {
	for _, route := range AllRoutes {
		choice, err := Pick(route)
		require.NoError(t, err, "route %q has no model configured", route)
		assert.NotEmpty(t, choice.Provider)
		assert.NotEmpty(t, choice.Model)
	}
}

func TestPickModelTable(t *testing.T) {
	tests := []struct {
		route    Route
		provider Provider
		model    string
	}{
		{RouteReplan, ProviderOpenAI, "gpt-5.2"},
		{RouteInstructions, ProviderOpenAI, "gpt-5-mini"},
		{RouteImagePantry, ProviderGemini, "gemini-3-pro-preview"},
		{RouteImageOrder, ProviderGemini, "gemini-3-pro-preview"},
		{RouteImageCookCheck, ProviderGemini, "gemini-3-pro-preview"},
	}

	for _, tt := range tests {
		choice, err := Pick(tt.route)
		require.NoError(t, err)
		assert.Equal(t, tt.provider, choice.Provider, "route %q", tt.route)
		assert.Equal(t, tt.model, choice.Model, "route %q", tt.route)
	}
}

func TestPickUnknownRoute(t *testing.T) {
	_, err := Pick(Route("image/receipt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRoute)
	assert.Contains(t, err.Error(), "image/receipt")
}

func TestRunAgentUnknownRoute(t *testing.T) {
	c := NewClient()
	_, err := c.RunAgent(context.Background(), Route("bogus"), "hi")
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestRunAgentWithImageRejectsTextRoutes(t *testing.T) {
	c := NewClient()
	_, err := c.RunAgentWithImage(context.Background(), RouteReplan, "hi", "aGk=", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured for image input")
}

func TestRunAgentMissingOpenAIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY_FILE", "")

	c := NewClient()
	_, err := c.RunAgent(context.Background(), RouteReplan, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
