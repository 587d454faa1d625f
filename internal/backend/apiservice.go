package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/juceldev/ColoringBook/internal/common"
	"github.com/juceldev/ColoringBook/internal/core"
	"github.com/juceldev/ColoringBook/internal/events"
	"github.com/juceldev/ColoringBook/internal/generation"
	"github.com/juceldev/ColoringBook/internal/prompts"
	"github.com/labstack/echo/v4"
)

const (
	mimePNG           = "image/png"
	sseBufferSize     = 16
	sseKeepAliveEvery = 15 * time.Second
)

type APIService struct {
	config      *core.ServiceConfig
	coreService *core.CoreService
	hub         *events.Hub
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService, hub *events.Hub) *APIService {
	return &APIService{
		config:      config,
		coreService: coreService,
		hub:         hub,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	api := e.Group("/api")
	api.POST("/generate", s.generateHandler)
	api.GET("/history", s.listHistoryHandler)
	api.DELETE("/history", s.clearHistoryHandler)
	api.GET("/history/:id", s.getHistoryItemHandler)
	api.DELETE("/history/:id", s.deleteHistoryItemHandler)
	api.GET("/history/:id/results/:index/:kind", s.downloadImageHandler)
	api.GET("/history/:id/results/:index/:kind/thumbnail", s.thumbnailHandler)
	api.GET("/niches", s.nichesHandler)
	api.GET("/events/:batchId", s.eventsHandler)
}

func (s *APIService) generateHandler(ctx echo.Context) error {
	var req core.GenerateRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}
	if req.BatchID == "" {
		req.BatchID = uuid.NewString()
	}

	outcome, err := s.coreService.Generate(ctx.Request().Context(), req, s.publisher())
	if err != nil {
		status := StatusFor(err)
		slog.Warn("generateHandler: batch failed",
			"status", status, "batch_id", req.BatchID, "results", len(outcome.Results), "error", err)
		return ctx.JSON(status, outcome)
	}
	return ctx.JSON(http.StatusOK, outcome)
}

func (s *APIService) listHistoryHandler(ctx echo.Context) error {
	items, err := s.coreService.History(ctx.Request().Context())
	if err != nil {
		slog.Error("listHistoryHandler: failed to list history", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list history")
	}
	common.SetNoCache(ctx)
	return ctx.JSON(http.StatusOK, items)
}

func (s *APIService) getHistoryItemHandler(ctx echo.Context) error {
	item, err := s.coreService.HistoryItem(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return s.httpError("getHistoryItemHandler", err)
	}
	return ctx.JSON(http.StatusOK, item)
}

func (s *APIService) deleteHistoryItemHandler(ctx echo.Context) error {
	if err := s.coreService.DeleteHistoryItem(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return s.httpError("deleteHistoryItemHandler", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *APIService) clearHistoryHandler(ctx echo.Context) error {
	if err := s.coreService.ClearHistory(ctx.Request().Context()); err != nil {
		return s.httpError("clearHistoryHandler", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *APIService) nichesHandler(ctx echo.Context) error {
	niches, err := s.coreService.Niches(ctx.Request().Context())
	if err != nil {
		slog.Error("nichesHandler: failed to suggest niches", "error", err)
		return echo.NewHTTPError(StatusFor(err), core.UserMessage(err))
	}
	return ctx.JSON(http.StatusOK, map[string][]string{"niches": niches})
}

func (s *APIService) downloadImageHandler(ctx echo.Context) error {
	id, index, kind, data, err := s.resultImage(ctx)
	if err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, DownloadFileName(id, index, kind)))
	return ctx.Blob(http.StatusOK, mimePNG, data)
}

func (s *APIService) thumbnailHandler(ctx echo.Context) error {
	_, _, _, data, err := s.resultImage(ctx)
	if err != nil {
		return err
	}
	thumbnail, err := s.coreService.Thumbnail(data)
	if err != nil {
		slog.Error("thumbnailHandler: failed to scale image", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create thumbnail")
	}
	// history items never change, only disappear
	ctx.Response().Header().Set("Cache-Control", "private, max-age=3600")
	return ctx.Blob(http.StatusOK, mimePNG, thumbnail)
}

func (s *APIService) resultImage(ctx echo.Context) (id string, index int, kind string, data []byte, err error) {
	id = ctx.Param("id")
	kind = ctx.Param("kind")
	index, convErr := strconv.Atoi(ctx.Param("index"))
	if convErr != nil || index < 0 {
		return "", 0, "", nil, echo.NewHTTPError(http.StatusBadRequest, "index must be a non-negative number")
	}

	data, err = s.coreService.ResultImage(ctx.Request().Context(), id, index, kind)
	if err != nil {
		return "", 0, "", nil, s.httpError("resultImage", err)
	}
	return id, index, kind, data, nil
}

// eventsHandler streams the progress of one batch as server-sent events
func (s *APIService) eventsHandler(ctx echo.Context) error {
	batchID := ctx.Param("batchId")
	if batchID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing batch id")
	}

	w := ctx.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	msgCh := make(chan []byte, sseBufferSize)
	s.hub.Subscribe(msgCh, batchID)
	defer s.hub.Unsubscribe(msgCh, batchID)

	_, _ = fmt.Fprint(w, ": connected\n\n")
	w.Flush()

	keepAlive := time.NewTicker(sseKeepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case <-keepAlive.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			w.Flush()
		case msg := <-msgCh:
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg); err != nil {
				return nil
			}
			w.Flush()

			var p generation.Progress
			if err := json.Unmarshal(msg, &p); err == nil && p.Done {
				return nil
			}
		}
	}
}

func (s *APIService) publisher() generation.ProgressFunc {
	if s.hub == nil {
		return nil
	}
	return s.hub.PublishProgress
}

func (s *APIService) httpError(handler string, err error) error {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(handler+": request failed", "status", status, "error", err)
	}
	return echo.NewHTTPError(status, core.UserMessage(err))
}

// StatusFor maps service errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, prompts.ErrEmptyPrompt),
		errors.Is(err, generation.ErrInvalidMode),
		errors.Is(err, core.ErrInvalidCount),
		errors.Is(err, core.ErrInvalidImageKind):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	}
	var batchErr *generation.BatchError
	if errors.As(err, &batchErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// DownloadFileName names a downloaded image after its batch, 1-based position and kind
func DownloadFileName(id string, index int, kind string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("coloringbook-%s-%d-%s.png", short, index+1, kind)
}
