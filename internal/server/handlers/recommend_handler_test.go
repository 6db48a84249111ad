package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/restockd/restock/internal/domain/models"
	"github.com/restockd/restock/internal/service/recommend"
)

type fakeRecommendService struct {
	result models.RecommendationResult
	err    error
}

func (s *fakeRecommendService) Recommend(context.Context, string) (models.RecommendationResult, error) {
	return s.result, s.err
}

type fakeListFinder struct {
	list models.ShoppingList
	err  error
}

func (f *fakeListFinder) FindOrCreateActiveShoppingList(context.Context, string) (models.ShoppingList, error) {
	return f.list, f.err
}

type fakeExporter struct {
	exported []models.ShoppingList
	err      error
}

func (e *fakeExporter) ExportShoppingList(_ context.Context, list models.ShoppingList) error {
	if e.err != nil {
		return e.err
	}
	e.exported = append(e.exported, list)
	return nil
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler(c)
	return w
}

func TestPredictAndRecommend(t *testing.T) {
	t.Run("success payload carries the pipeline result", func(t *testing.T) {
		svc := &fakeRecommendService{result: models.RecommendationResult{
			Username:     "lucy",
			ModelTrained: true,
			Recommendations: []models.ShoppingListItem{
				{ItemName: "milk", Quantity: 2, Source: models.SourceAI},
			},
		}}
		h := NewRecommendHandler(svc, &fakeListFinder{}, nil, nil)

		w := postJSON(t, h.PredictAndRecommend, `{"username":"lucy"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if payload["username"] != "lucy" {
			t.Errorf("username = %v, want lucy", payload["username"])
		}
		if payload["model_trained"] != true {
			t.Errorf("model_trained = %v, want true", payload["model_trained"])
		}
	})

	t.Run("unknown user is informational not an error", func(t *testing.T) {
		h := NewRecommendHandler(&fakeRecommendService{err: recommend.ErrNoUserHistory}, &fakeListFinder{}, nil, nil)

		w := postJSON(t, h.PredictAndRecommend, `{"username":"ghost"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if !strings.Contains(w.Body.String(), "No items found for the specified user.") {
			t.Errorf("body = %s, missing informational message", w.Body.String())
		}
	})

	t.Run("missing username is rejected", func(t *testing.T) {
		h := NewRecommendHandler(&fakeRecommendService{}, &fakeListFinder{}, nil, nil)

		w := postJSON(t, h.PredictAndRecommend, `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("pipeline failure maps to 500", func(t *testing.T) {
		h := NewRecommendHandler(&fakeRecommendService{err: errors.New("mongo down")}, &fakeListFinder{}, nil, nil)

		w := postJSON(t, h.PredictAndRecommend, `{"username":"lucy"}`)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", w.Code)
		}
	})
}

func TestExportShoppingList(t *testing.T) {
	t.Run("unconfigured exporter returns 503", func(t *testing.T) {
		h := NewRecommendHandler(&fakeRecommendService{}, &fakeListFinder{}, nil, nil)

		w := postJSON(t, h.ExportShoppingList, `{"username":"lucy"}`)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", w.Code)
		}
	})

	t.Run("exports the active list", func(t *testing.T) {
		exporter := &fakeExporter{}
		lists := &fakeListFinder{list: models.ShoppingList{UserName: "lucy", TotalItems: 3}}
		h := NewRecommendHandler(&fakeRecommendService{}, lists, exporter, nil)

		w := postJSON(t, h.ExportShoppingList, `{"username":"lucy"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if len(exporter.exported) != 1 || exporter.exported[0].UserName != "lucy" {
			t.Errorf("exported = %+v, want lucy's list", exporter.exported)
		}
	})

	t.Run("export failure maps to 502", func(t *testing.T) {
		exporter := &fakeExporter{err: errors.New("quota exceeded")}
		h := NewRecommendHandler(&fakeRecommendService{}, &fakeListFinder{}, exporter, nil)

		w := postJSON(t, h.ExportShoppingList, `{"username":"lucy"}`)
		if w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", w.Code)
		}
	})
}
