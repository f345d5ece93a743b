package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/eaas-dev/eaas-backend/internal/logger"
	"github.com/eaas-dev/eaas-backend/internal/middleware"
	"github.com/eaas-dev/eaas-backend/internal/services"
	"github.com/eaas-dev/eaas-backend/internal/store"
	"github.com/eaas-dev/eaas-backend/internal/types"
)

func testExperimentRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	eh := NewExperimentHandler(services.NewExperimentService(store.NewMemoryKV(), log))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &types.User{ID: "user-1", Email: "user@example.com"})
		c.Next()
	})
	r.GET("/api/experiments", eh.List)
	r.POST("/api/experiments", eh.Create)
	r.GET("/api/experiments/:id", eh.Get)
	r.PUT("/api/experiments/:id", eh.Update)
	r.DELETE("/api/experiments/:id", eh.Delete)
	r.POST("/api/experiments/:id/run", eh.Run)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %s: %v", w.Body.String(), err)
	}
	return w, env
}

func TestExperimentEndpoints(t *testing.T) {
	r := testExperimentRouter(t)

	w, env := doJSON(t, r, http.MethodGet, "/api/experiments", nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("list: code=%d env=%+v", w.Code, env)
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/experiments", gin.H{
		"name":        "Load Test",
		"description": "sustained traffic",
	})
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("create: code=%d env=%+v", w.Code, env)
	}
	created, _ := env.Data.(map[string]any)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("create data = %+v", env.Data)
	}

	w, env = doJSON(t, r, http.MethodPost, "/api/experiments/"+id+"/run", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("run: code=%d env=%+v", w.Code, env)
	}
	ran, _ := env.Data.(map[string]any)
	if runs, _ := ran["evaluation_runs_count"].(float64); runs != 1 {
		t.Fatalf("runs after run = %v", ran["evaluation_runs_count"])
	}

	w, env = doJSON(t, r, http.MethodDelete, "/api/experiments/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: code=%d env=%+v", w.Code, env)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/experiments/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: code=%d", w.Code)
	}
}

func TestExperimentCreateValidation(t *testing.T) {
	r := testExperimentRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/experiments", gin.H{"name": "   "})
	if w.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("blank name: code=%d env=%+v", w.Code, env)
	}
	if env.Error == "" {
		t.Fatal("validation error missing message")
	}
}
