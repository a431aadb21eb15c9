package mux

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgs(t *testing.T) {
	t.Run("returns nil for request without args", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, Args(r))
	})

	t.Run("returns args from request context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = setRouteContext(r, &RouteMatch{Args: []string{"a", "b"}})
		assert.Equal(t, []string{"a", "b"}, Args(r))
	})
}

func TestCurrentRoute(t *testing.T) {
	t.Run("returns nil for request without route", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Nil(t, CurrentRoute(r))
	})

	t.Run("returns route from request context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		route := &Route{}
		r = setRouteContext(r, &RouteMatch{Route: route})
		result := CurrentRoute(r)
		require.NotNil(t, result)
		assert.Same(t, route, result)
	})
}

func TestValue(t *testing.T) {
	type key struct{}

	t.Run("missing without route context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		v, ok := Value(r, key{})
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("published by the match", func(t *testing.T) {
		var match RouteMatch
		match.Set(key{}, "resolved")

		got, ok := match.Value(key{})
		assert.True(t, ok)
		assert.Equal(t, "resolved", got)

		r := setRouteContext(httptest.NewRequest(http.MethodGet, "/", nil), &match)
		v, ok := Value(r, key{})
		assert.True(t, ok)
		assert.Equal(t, "resolved", v)
	})
}

func TestSetArgs(t *testing.T) {
	t.Run("sets args on bare request", func(t *testing.T) {
		r := SetArgs(httptest.NewRequest(http.MethodGet, "/", nil), []string{"x"})
		assert.Equal(t, []string{"x"}, Args(r))
	})

	t.Run("keeps route and values", func(t *testing.T) {
		type key struct{}
		route := &Route{}
		match := &RouteMatch{Route: route}
		match.Set(key{}, 1)

		r := setRouteContext(httptest.NewRequest(http.MethodGet, "/", nil), match)
		r = SetArgs(r, []string{"y"})

		assert.Same(t, route, CurrentRoute(r))
		assert.Equal(t, []string{"y"}, Args(r))
		v, ok := Value(r, key{})
		assert.True(t, ok)
		assert.Equal(t, 1, v)
	})
}

func TestRouteMatchReset(t *testing.T) {
	match := &RouteMatch{Route: &Route{}, Args: []string{"a"}, Handler: http.NotFoundHandler()}
	match.Set("k", "v")
	match.reset()

	assert.Nil(t, match.Route)
	assert.Nil(t, match.Args)
	assert.Nil(t, match.Handler)
	_, ok := match.Value("k")
	assert.False(t, ok)
}
