package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/homescout/api/internal/errors"
	"github.com/stwalsh4118/homescout/api/internal/latency"
	"github.com/stwalsh4118/homescout/api/internal/logger"
	"github.com/stwalsh4118/homescout/api/internal/middleware"
	"github.com/stwalsh4118/homescout/api/internal/repository"
	"github.com/stwalsh4118/homescout/api/internal/savedset"
	"github.com/stwalsh4118/homescout/api/internal/seed"
	"github.com/stwalsh4118/homescout/api/internal/services"
)

// testAPI is a router wired to memory repositories loaded with the embedded
// sample data.
type testAPI struct {
	router  *gin.Engine
	tracker *savedset.Tracker
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()

	data, err := seed.Default()
	require.NoError(t, err)

	log := logger.New("test")
	validate := validator.New()

	propertyRepo := repository.NewMemoryPropertyRepository(data.Properties, latency.None())
	savedRepo := repository.NewMemorySavedRepository(data.Saved, latency.None())
	tracker := savedset.New(savedRepo)
	_, err = tracker.Refresh(context.Background())
	require.NoError(t, err)

	propertyService := services.NewPropertyService(propertyRepo, validate, log)
	savedService := services.NewSavedService(savedRepo, propertyRepo, tracker, nil, validate, log)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	RegisterRoutes(router.Group("/api/v1"), NewPropertyHandler(propertyService), NewSavedHandler(savedService))

	return &testAPI{router: router, tracker: tracker}
}

// do sends a request, JSON-encoding body when it is not nil.
func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorDetail {
	t.Helper()
	return decodeJSON[apierrors.ErrorResponse](t, w).Error
}
