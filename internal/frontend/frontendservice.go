package frontend

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/juceldev/ColoringBook/internal/common"
	"github.com/juceldev/ColoringBook/internal/core"
	"github.com/juceldev/ColoringBook/internal/events"
	"github.com/juceldev/ColoringBook/internal/generation"
	"github.com/juceldev/ColoringBook/internal/history"
	"github.com/labstack/echo/v4"
)

const MainPageName = "index.html"

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
	hub         *events.Hub
}

type indexData struct {
	DefaultCount int
	MaxCount     int
}

type resultsData struct {
	Outcome        *core.GenerateOutcome
	ItemID         string
	Failed         bool
	RefreshHistory bool
	History        []*history.Item
}

type nichesData struct {
	Niches []string
	Error  string
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService, hub *events.Hub) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
		hub:         hub,
	}
}

// rootRedirectHandler redirects root path to index.html
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, "/"+MainPageName)
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = newTemplate()

	e.GET("/", service.rootRedirectHandler)
	e.GET("/"+MainPageName, service.indexHandler)
	e.POST("/htmx/generate", service.htmxGenerateHandler)

	e.GET("/htmx/history", service.htmxListHistoryHandler)
	e.GET("/htmx/history/:id", service.htmxShowHistoryItemHandler)
	e.DELETE("/htmx/history/:id", service.htmxDeleteHistoryItemHandler)
	e.DELETE("/htmx/history", service.htmxClearHistoryHandler)
	e.GET("/htmx/niches", service.htmxNichesHandler)

	e.GET("/icon.svg", service.iconHandler)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, MainPageName, indexData{
		DefaultCount: service.config.Generation.DefaultCount,
		MaxCount:     core.MaxCount,
	})
}

// htmxGenerateHandler runs a batch and answers with the results plus an out-of-band history refresh.
// Failures are rendered as a message; the status stays 200 so htmx swaps the fragment.
func (service *FrontendService) htmxGenerateHandler(ctx echo.Context) error {
	var req core.GenerateRequest
	if err := ctx.Bind(&req); err != nil {
		slog.Warn("htmxGenerateHandler: failed to bind form", "status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Invalid form")
	}

	var progress generation.ProgressFunc
	if service.hub != nil {
		progress = service.hub.PublishProgress
	}

	outcome, err := service.coreService.Generate(ctx.Request().Context(), req, progress)
	if err != nil {
		slog.Warn("htmxGenerateHandler: batch failed",
			"batch_id", req.BatchID, "results", len(outcome.Results), "error", err)
	}

	data := resultsData{
		Outcome: outcome,
		Failed:  err != nil,
	}
	if outcome.Item != nil {
		data.ItemID = outcome.Item.ID
	}
	if len(outcome.Results) > 0 {
		items, listErr := service.coreService.History(ctx.Request().Context())
		if listErr != nil {
			slog.Error("htmxGenerateHandler: failed to list history for OOB update", "error", listErr)
		} else {
			data.RefreshHistory = true
			data.History = items
		}
	}

	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "results", data)
}

func (service *FrontendService) htmxListHistoryHandler(ctx echo.Context) error {
	return service.renderHistory(ctx)
}

func (service *FrontendService) htmxShowHistoryItemHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	item, err := service.coreService.HistoryItem(ctx.Request().Context(), id)
	if err != nil {
		slog.Warn("htmxShowHistoryItemHandler: history item not available", "id", id, "error", err)
		return ctx.Render(http.StatusOK, "results", resultsData{
			Outcome: &core.GenerateOutcome{Message: core.UserMessage(err)},
			Failed:  true,
		})
	}

	return ctx.Render(http.StatusOK, "results", resultsData{
		Outcome: &core.GenerateOutcome{Item: item, Results: item.Results},
		ItemID:  item.ID,
	})
}

func (service *FrontendService) htmxDeleteHistoryItemHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		slog.Warn("htmxDeleteHistoryItemHandler: missing id", "status", http.StatusBadRequest)
		return ctx.String(http.StatusBadRequest, "Missing history ID")
	}

	// a concurrent delete from another tab is not an error for the list view
	if err := service.coreService.DeleteHistoryItem(ctx.Request().Context(), id); err != nil && !errors.Is(err, core.ErrNotFound) {
		slog.Error("htmxDeleteHistoryItemHandler: failed to delete history item",
			"status", http.StatusInternalServerError, "id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to delete history item")
	}
	return service.renderHistory(ctx)
}

func (service *FrontendService) htmxClearHistoryHandler(ctx echo.Context) error {
	if err := service.coreService.ClearHistory(ctx.Request().Context()); err != nil {
		slog.Error("htmxClearHistoryHandler: failed to clear history",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to clear history")
	}
	return service.renderHistory(ctx)
}

func (service *FrontendService) htmxNichesHandler(ctx echo.Context) error {
	niches, err := service.coreService.Niches(ctx.Request().Context())
	if err != nil {
		slog.Error("htmxNichesHandler: failed to suggest niches", "error", err)
		return ctx.Render(http.StatusOK, "niches", nichesData{Error: core.UserMessage(err)})
	}
	return ctx.Render(http.StatusOK, "niches", nichesData{Niches: niches})
}

func (service *FrontendService) renderHistory(ctx echo.Context) error {
	items, err := service.coreService.History(ctx.Request().Context())
	if err != nil {
		slog.Error("renderHistory: failed to list history",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to list history")
	}

	common.SetNoCache(ctx)
	return ctx.Render(http.StatusOK, "history", items)
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}
