package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status is the health payload.
type Status struct {
	OK            bool   `json:"ok"`
	LLMConfigured bool   `json:"llmConfigured"`
	Provider      string `json:"provider"`
}

// Service encapsulates health-related checks.
type Service struct {
	provider   string
	configured func() bool
}

// NewService constructs a health service. configured reports whether a gateway is wired.
func NewService(provider string, configured func() bool) *Service {
	return &Service{provider: provider, configured: configured}
}

// Status returns the current health payload.
func (s *Service) Status() Status {
	return Status{
		OK:            true,
		LLMConfigured: s.configured != nil && s.configured(),
		Provider:      s.provider,
	}
}

// Handler serves GET /api/health.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.Status())
	}
}
