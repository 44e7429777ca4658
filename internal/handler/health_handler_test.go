package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"docex/internal/handler"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	h := handler.NewHealthHandler(fakePinger{})

	c, w := newContext(http.MethodGet, "/healthz", nil, "")
	h.Liveness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodGet, "/readyz", nil, "")
	h.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	down := handler.NewHealthHandler(fakePinger{err: errors.New("connection refused")})
	c, w = newContext(http.MethodGet, "/readyz", nil, "")
	down.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database not reachable")
}
