package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/platewise/backend/config"
	"github.com/pageza/platewise/backend/internal/agent"
	"github.com/pageza/platewise/backend/internal/ai"
	"github.com/pageza/platewise/backend/internal/middleware"
	"github.com/pageza/platewise/backend/internal/models"
	"github.com/pageza/platewise/backend/internal/service"
)

const (
	replanTimeout = 60 * time.Second
	visionTimeout = 120 * time.Second

	// contextRowLimit caps how many rows of each kind go into the replan
	// prompt.
	contextRowLimit = 100
)

// AgentHandler handles the AI endpoints: natural-language replanning, pantry
// photo extraction and provider smoke tests.
type AgentHandler struct {
	db         *gorm.DB
	ai         ai.Runner
	ingest     *service.IngestService
	dispatcher *agent.Dispatcher
	cfg        *config.Config
	s3         *config.S3Config
}

// NewAgentHandler creates a new AgentHandler instance
func NewAgentHandler(db *gorm.DB, runner ai.Runner, ingest *service.IngestService, dispatcher *agent.Dispatcher, cfg *config.Config, s3 *config.S3Config) *AgentHandler {
	return &AgentHandler{
		db:         db,
		ai:         runner,
		ingest:     ingest,
		dispatcher: dispatcher,
		cfg:        cfg,
		s3:         s3,
	}
}

// RegisterAIRoutes registers the model-calling routes on the given group.
// The caller attaches auth and rate limiting to the group.
func (h *AgentHandler) RegisterAIRoutes(group *gin.RouterGroup) {
	group.POST("/replan", h.Replan)
	group.POST("/image/pantry", h.ImagePantry)
	group.GET("/test/openai", h.TestOpenAI)
	group.GET("/test/gemini", h.TestGemini)
}

// RegisterRoutes registers the read-only diagnostics and ingest listing,
// which do not call models and stay outside the rate limiter.
func (h *AgentHandler) RegisterRoutes(router *gin.Engine, validator middleware.TokenValidator) {
	router.GET("/api/diag", middleware.AuthMiddleware(validator), h.Diag)
	router.GET("/api/v1/ingests", middleware.AuthMiddleware(validator), h.ListIngests)
}

// ReplanRequest is the JSON body of a replan call.
type ReplanRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Replan sends the user's free-form request to the model with their current
// state as context, validates the returned action list and applies it.
// Exactly one agent_runs row is written after the model call, whatever the
// outcome.
func (h *AgentHandler) Replan(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req ReplanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing prompt"})
		return
	}

	prompt := h.buildPrompt(c.Request.Context(), userID, req.Prompt)

	ctx, cancel := context.WithTimeout(c.Request.Context(), replanTimeout)
	defer cancel()

	raw, err := h.ai.RunAgent(ctx, ai.RouteReplan, prompt)
	if err != nil {
		h.audit(c, userID, req.Prompt, models.AgentRunStatusError, "", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Agent failed or returned invalid JSON",
			"detail": err.Error(),
		})
		return
	}

	parsed, err := agent.ParseAgentOutput(raw)
	if err != nil {
		h.audit(c, userID, req.Prompt, models.AgentRunStatusError, rawJSON(raw), err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Agent failed or returned invalid JSON",
			"detail": err.Error(),
			"raw":    raw,
		})
		return
	}

	failed, err := h.dispatcher.Apply(c.Request.Context(), userID, parsed.Actions)
	if err != nil {
		h.audit(c, userID, req.Prompt, models.AgentRunStatusError, rawJSON(raw), err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         "Failed to apply agent actions",
			"detail":        err.Error(),
			"failed_action": failed,
		})
		return
	}

	responseJSON := rawJSON(raw)
	if data, err := json.Marshal(parsed); err == nil {
		responseJSON = string(data)
	}
	h.audit(c, userID, req.Prompt, models.AgentRunStatusOK, responseJSON, "")

	c.JSON(http.StatusOK, gin.H{
		"ok":                true,
		"assistant_message": parsed.AssistantMessage,
		"actions":           parsed.Actions,
	})
}

// buildPrompt reads the caller's current state and assembles the replan
// prompt. Context reads are best effort; a missing preferences row just
// yields an empty block.
func (h *AgentHandler) buildPrompt(ctx context.Context, userID uuid.UUID, userPrompt string) string {
	var prefs *models.UserPreferences
	var prefsRow models.UserPreferences
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefsRow).Error; err == nil {
		prefs = &prefsRow
	}

	var inventory []models.InventoryItem
	h.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc").Limit(contextRowLimit).Find(&inventory)

	var plan []models.MealPlanDay
	h.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("day asc").Limit(contextRowLimit).Find(&plan)

	var groceries []models.GroceryItem
	h.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc").Limit(contextRowLimit).Find(&groceries)

	today := time.Now().UTC().Format("2006-01-02")
	return agent.BuildReplanPrompt(today, userPrompt, prefs, inventory, plan, groceries)
}

// audit appends one agent_runs row. Audit failures are logged, not surfaced.
func (h *AgentHandler) audit(c *gin.Context, userID uuid.UUID, prompt, status, responseJSON, errorText string) {
	run := models.AgentRun{
		UserID:       userID,
		Route:        string(ai.RouteReplan),
		Prompt:       prompt,
		Status:       status,
		ResponseJSON: responseJSON,
		ErrorText:    errorText,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&run).Error; err != nil {
		log.Printf("[AgentHandler] Failed to record agent run for user %s: %v", userID, err)
	}
}

// rawJSON wraps unvalidated model text so it can be stored in a JSON column.
func rawJSON(raw string) string {
	data, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return `{"raw":""}`
	}
	return string(data)
}

// PantryIngestRequest is the JSON body of a pantry extraction call.
type PantryIngestRequest struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

// ImagePantry runs a pantry photo through the vision model and returns the
// extracted item list.
func (h *AgentHandler) ImagePantry(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req PantryIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ImageBase64 == "" || req.MimeType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing imageBase64 or mimeType"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), visionTimeout)
	defer cancel()

	res, err := h.ingest.ExtractPantry(ctx, userID, req.ImageBase64, req.MimeType)
	if res == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image", "detail": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Gemini returned invalid JSON",
			"detail":    err.Error(),
			"raw":       res.Raw,
			"ingest_id": res.IngestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":                true,
		"ingest_id":         res.IngestID,
		"assistant_message": res.Extract.AssistantMessage,
		"items":             res.Extract.Items,
	})
}

// ingestSummary is the list shape for past ingests; the raw base64 stays out.
type ingestSummary struct {
	ID            uuid.UUID `json:"id"`
	Kind          string    `json:"kind"`
	MimeType      string    `json:"mime_type"`
	Status        string    `json:"status"`
	ExtractedJSON string    `json:"extracted_json,omitempty"`
	ArchiveURL    string    `json:"archive_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListIngests returns the caller's recent ingests with presigned archive
// links when archiving is configured.
func (h *AgentHandler) ListIngests(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var rows []models.ImageIngest
	if err := h.db.Select("id", "kind", "mime_type", "status", "extracted_json", "archive_key", "created_at").
		Where("user_id = ?", userID).
		Order("created_at desc").Limit(50).
		Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ingests := make([]ingestSummary, 0, len(rows))
	for _, row := range rows {
		summary := ingestSummary{
			ID:            row.ID,
			Kind:          row.Kind,
			MimeType:      row.MimeType,
			Status:        row.Status,
			ExtractedJSON: row.ExtractedJSON,
			CreatedAt:     row.CreatedAt,
		}
		if h.s3 != nil && row.ArchiveKey != "" {
			url, err := h.s3.GeneratePresignedURL(c.Request.Context(), row.ArchiveKey, 15*time.Minute)
			if err != nil {
				log.Printf("[AgentHandler] Failed to presign archive for ingest %s: %v", row.ID, err)
			} else {
				summary.ArchiveURL = url
			}
		}
		ingests = append(ingests, summary)
	}

	c.JSON(http.StatusOK, gin.H{"ingests": ingests})
}

// TestOpenAI pings the OpenAI text route.
func (h *AgentHandler) TestOpenAI(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), replanTimeout)
	defer cancel()

	out, err := h.ai.RunAgent(ctx, ai.RouteInstructions, "Reply with exactly: OK_OPENAI")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "out": out})
}

// TestGemini pings the Gemini text route.
func (h *AgentHandler) TestGemini(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), replanTimeout)
	defer cancel()

	out, err := h.ai.RunAgent(ctx, ai.RouteImagePantry, "Reply with exactly: OK_GEMINI")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "out": out})
}

// Diag reports configuration presence without revealing secrets.
func (h *AgentHandler) Diag(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"db_host":         h.cfg.DBHost,
		"has_openai_key":  h.cfg.OpenAIAPIKey != "",
		"openai_key_len":  len(h.cfg.OpenAIAPIKey),
		"has_gemini_key":  h.cfg.GeminiAPIKey != "",
		"gemini_key_len":  len(h.cfg.GeminiAPIKey),
		"archive_enabled": h.s3 != nil,
	})
}
