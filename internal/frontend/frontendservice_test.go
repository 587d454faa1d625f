package frontend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/juceldev/ColoringBook/internal/core"
	"github.com/labstack/echo/v4"
)

func newTestFrontend(t *testing.T) (*echo.Echo, *core.CoreService) {
	t.Helper()

	cfg := core.DefaultConfig()
	cfg.Generator.MockImageSize = 16
	coreService, err := core.NewCoreService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewCoreService error: %v", err)
	}
	t.Cleanup(func() { _ = coreService.Close() })

	e := echo.New()
	NewFrontendService(cfg, coreService, nil).SetRoutes(e)
	return e, coreService
}

func postForm(e *echo.Echo, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func get(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRootRedirect(t *testing.T) {
	e, _ := newTestFrontend(t)
	rec := get(e, http.MethodGet, "/")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/"+MainPageName {
		t.Errorf("redirect = %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestIndexPage(t *testing.T) {
	e, _ := newTestFrontend(t)
	rec := get(e, http.MethodGet, "/"+MainPageName)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`hx-post="/htmx/generate"`, `id="history"`, `max="10"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %s", want)
		}
	}
}

func TestHtmxGenerate(t *testing.T) {
	e, svc := newTestFrontend(t)

	rec := postForm(e, "/htmx/generate", url.Values{
		"prompt": {"1. \"a <b>bold</b> cat\"\n2. \"a dog\""},
		"mode":   {"both"},
		"count":  {""},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()

	if strings.Count(body, "data:image/png;base64,") != 4 {
		t.Errorf("expected 4 inline images in:\n%s", body)
	}
	if strings.Contains(body, "<b>bold</b>") {
		t.Error("prompt text must be escaped")
	}
	if !strings.Contains(body, `hx-swap-oob="innerHTML"`) {
		t.Error("expected out-of-band history refresh")
	}

	items, _ := svc.History(context.Background())
	if len(items) != 1 {
		t.Fatalf("expected one history item, got %d", len(items))
	}
	if !strings.Contains(body, "/api/history/"+items[0].ID+"/results/1/coloring") {
		t.Error("missing download link")
	}
}

func TestHtmxGenerate_ErrorMessage(t *testing.T) {
	e, _ := newTestFrontend(t)
	rec := postForm(e, "/htmx/generate", url.Values{"prompt": {"  "}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please enter a prompt.") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHtmxHistory(t *testing.T) {
	e, svc := newTestFrontend(t)

	rec := get(e, http.MethodGet, "/htmx/history")
	if !strings.Contains(rec.Body.String(), "No generations yet.") {
		t.Errorf("empty history body = %s", rec.Body.String())
	}

	postForm(e, "/htmx/generate", url.Values{"prompt": {"a cat"}, "mode": {"coloring"}})
	items, _ := svc.History(context.Background())
	id := items[0].ID

	rec = get(e, http.MethodGet, "/htmx/history")
	if !strings.Contains(rec.Body.String(), "/api/history/"+id+"/results/0/coloring/thumbnail") {
		t.Errorf("history body = %s", rec.Body.String())
	}

	rec = get(e, http.MethodGet, "/htmx/history/"+id)
	if !strings.Contains(rec.Body.String(), "data:image/png;base64,") {
		t.Errorf("show item body = %s", rec.Body.String())
	}

	rec = get(e, http.MethodDelete, "/htmx/history/"+id)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "No generations yet.") {
		t.Errorf("delete response = %d %s", rec.Code, rec.Body.String())
	}

	postForm(e, "/htmx/generate", url.Values{"prompt": {"a dog"}, "mode": {"original"}})
	rec = get(e, http.MethodDelete, "/htmx/history")
	if !strings.Contains(rec.Body.String(), "No generations yet.") {
		t.Errorf("clear response = %s", rec.Body.String())
	}
}

func TestHtmxNiches(t *testing.T) {
	e, _ := newTestFrontend(t)
	rec := get(e, http.MethodGet, "/htmx/niches")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "data-niche=") {
		t.Errorf("niches response = %d %s", rec.Code, rec.Body.String())
	}
}

func TestIcon(t *testing.T) {
	e, _ := newTestFrontend(t)
	rec := get(e, http.MethodGet, "/icon.svg")
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != "image/svg+xml" {
		t.Errorf("icon response = %d %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
}
