package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stockpredictorai/prediction-backend/internal/dto"
	"github.com/stockpredictorai/prediction-backend/internal/errs"
)

type stubWidgetService struct {
	dashboard *dto.DashboardViewModel
	winners   []dto.HourlyWinner
	leaders   []dto.LeaderEntry
	assets    []dto.KeyAsset
	famous    dto.FamousStocksSlice
	err       error
}

func (s *stubWidgetService) Dashboard(_ context.Context) *dto.DashboardViewModel {
	return s.dashboard
}

func (s *stubWidgetService) HourlyWinners(_ context.Context) ([]dto.HourlyWinner, error) {
	return s.winners, s.err
}

func (s *stubWidgetService) DailyLeaders(_ context.Context) ([]dto.LeaderEntry, error) {
	return s.leaders, s.err
}

func (s *stubWidgetService) LongTermLeaders(_ context.Context) ([]dto.LeaderEntry, error) {
	return s.leaders, s.err
}

func (s *stubWidgetService) KeyAssets(_ context.Context) ([]dto.KeyAsset, error) {
	return s.assets, s.err
}

func (s *stubWidgetService) FamousStocks(_ context.Context) (dto.FamousStocksSlice, error) {
	return s.famous, s.err
}

func TestDashboardAlwaysSucceeds(t *testing.T) {
	svc := &stubWidgetService{dashboard: &dto.DashboardViewModel{
		Sections: map[string]bool{dto.SourceHourlyWinners: false},
	}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rr := httptest.NewRecorder()
	h.Dashboard(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("dashboard must answer 200 even with degraded sections")
	}
	vm, ok := resp.writeSuccessData.(*dto.DashboardViewModel)
	if !ok || vm.Sections[dto.SourceHourlyWinners] {
		t.Fatalf("unexpected payload: %+v", resp.writeSuccessData)
	}
}

func TestHourlyWinnersWidget(t *testing.T) {
	svc := &stubWidgetService{winners: []dto.HourlyWinner{{PredictionID: "p1", Rating: 96}}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/widgets/hourly-winners", nil)
	rr := httptest.NewRecorder()
	h.HourlyWinners(rr, req)

	winners, ok := resp.writeSuccessData.([]dto.HourlyWinner)
	if !ok || len(winners) != 1 || winners[0].PredictionID != "p1" {
		t.Fatalf("unexpected payload: %+v", resp.writeSuccessData)
	}
}

func TestKeyAssetsWidgetError(t *testing.T) {
	svc := &stubWidgetService{err: errs.NewExternalServiceError("market", "quotes unavailable", true, errors.New("timeout"))}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/market/key-assets", nil)
	rr := httptest.NewRecorder()
	h.KeyAssets(rr, req)

	if !resp.handleErrorCalled {
		t.Fatalf("expected HandleError on service failure")
	}
	if resp.writeSuccessCalled {
		t.Fatalf("WriteSuccess should not be called after an error")
	}
}
