package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/blood-donation-tracker/internal/repository"
)

// PublicHandler serves unauthenticated endpoints.
type PublicHandler struct {
	Counters *repository.StatsRepo
	Log      *zap.Logger
}

func NewPublicHandler(stats *repository.StatsRepo, log *zap.Logger) *PublicHandler {
	return &PublicHandler{Counters: stats, Log: log}
}

// Stats handles GET /v1/stats with the home page counters.
func (h *PublicHandler) Stats(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	s, err := h.Counters.Load(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}
