package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stockpredictorai/prediction-backend/internal/errs"
	"github.com/stockpredictorai/prediction-backend/internal/response"
	"github.com/stockpredictorai/prediction-backend/internal/window"
)

func windowHandlersAt(resp response.ResponseHandler, now time.Time) *windowHandlers {
	h := NewWindowHandlers(&Deps{ResponseHandler: resp})
	h.Now = func() time.Time { return now }
	return h
}

func TestWindowStatusOpen(t *testing.T) {
	resp := &stubResponseHandler{}
	// Tuesday 09:02, inside the hourly window.
	h := windowHandlersAt(resp, time.Date(2026, 3, 3, 9, 2, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/prediction-window/Hourly", nil)
	req = withChiParam(req, "type", "Hourly")
	rr := httptest.NewRecorder()
	h.Status(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("WriteSuccess not called with status 200")
	}
	status, ok := resp.writeSuccessData.(window.Status)
	if !ok {
		t.Fatalf("unexpected payload type: %T", resp.writeSuccessData)
	}
	if !status.IsOpen {
		t.Fatalf("expected the hourly window to be open at 09:02")
	}
	if want := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC); !status.Deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", status.Deadline, want)
	}
}

func TestWindowStatusClosed(t *testing.T) {
	resp := &stubResponseHandler{}
	h := windowHandlersAt(resp, time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/prediction-window/Hourly", nil)
	req = withChiParam(req, "type", "Hourly")
	rr := httptest.NewRecorder()
	h.Status(rr, req)

	status, ok := resp.writeSuccessData.(window.Status)
	if !ok {
		t.Fatalf("unexpected payload type: %T", resp.writeSuccessData)
	}
	if status.IsOpen {
		t.Fatalf("expected the hourly window to be closed at 09:30")
	}
}

func TestWindowStream(t *testing.T) {
	resp := &stubResponseHandler{}
	h := windowHandlersAt(resp, time.Date(2026, 3, 3, 9, 2, 0, 0, time.UTC))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/prediction-window/Hourly/stream", nil)
	req = req.WithContext(ctx)
	req = withChiParam(req, "type", "Hourly")
	rr := httptest.NewRecorder()
	h.Stream(rr, req)

	if got := rr.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q", got)
	}
	body := rr.Body.String()
	if !strings.HasPrefix(body, "data: ") || !strings.Contains(body, `"isOpen":true`) {
		t.Fatalf("unexpected stream body: %q", body)
	}
}

func TestWindowStatusUnknownType(t *testing.T) {
	resp := &stubResponseHandler{}
	h := windowHandlersAt(resp, time.Date(2026, 3, 3, 9, 2, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/prediction-window/Fortnightly", nil)
	req = withChiParam(req, "type", "Fortnightly")
	rr := httptest.NewRecorder()
	h.Status(rr, req)

	if resp.writeSuccessCalled {
		t.Fatalf("WriteSuccess should not be called for an unknown type")
	}
	var verr *errs.ValidationError
	if !errors.As(resp.handleError, &verr) {
		t.Fatalf("expected a validation error, got %v", resp.handleError)
	}
}
