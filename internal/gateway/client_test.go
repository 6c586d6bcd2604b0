package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return c, srv
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "/solo/ruta"})
	assert.Error(t, err)
}

func TestRequestDecodesJSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/parametros/catalogos/marcas", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id_marca":1}]`))
	})

	raw, err := c.Request(context.Background(), http.MethodGet, "/parametros/catalogos/marcas", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id_marca":1}]`, string(raw))
}

func TestRequestNoContentResolvesNil(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	raw, err := c.Request(context.Background(), http.MethodDelete, "/parametros/catalogos/marcas", nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRequestEmptyBodyResolvesNil(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	raw, err := c.Request(context.Background(), http.MethodGet, "/x", nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestUnauthorizedFiresHookOnceWithoutRetry(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"mensaje":"sesión expirada"}`))
	}))
	defer srv.Close()

	var hooks []string
	c, err := New(Config{BaseURL: srv.URL, OnSessionExpired: func(msg string) { hooks = append(hooks, msg) }})
	require.NoError(t, err)

	_, err = c.Request(context.Background(), http.MethodGet, "/x", nil)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsForbidden(err))
	assert.Equal(t, []string{"sesión expirada"}, hooks)
	assert.Equal(t, 1, requests)

	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, http.StatusUnauthorized, api.Status)
	assert.Equal(t, "sesión expirada", api.Message)
}

func TestForbiddenDoesNotFireSessionHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"token anti-forgery inválido"}`))
	}))
	defer srv.Close()

	fired := false
	c, err := New(Config{BaseURL: srv.URL, OnSessionExpired: func(string) { fired = true }})
	require.NoError(t, err)

	_, err = c.Request(context.Background(), http.MethodPost, "/x", map[string]string{"a": "b"})
	assert.True(t, IsForbidden(err))
	assert.False(t, fired)
	assert.Equal(t, "token anti-forgery inválido", err.Error())
}

func TestServerErrorBecomesAPIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil)
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, http.StatusInternalServerError, api.Status)
	assert.Equal(t, "HTTP error 500", api.Message)
}

func TestCSRFHeaderEchoedOnStateChangingOnly(t *testing.T) {
	headers := map[string]string{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers[r.Method] = r.Header.Get("X-CSRF-Token")
		w.WriteHeader(http.StatusNoContent)
	})
	c.SetCookie(DefaultCSRFCookie, "tok-123")

	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil)
	require.NoError(t, err)
	_, err = c.Request(context.Background(), http.MethodPut, "/x", map[string]string{"campo": "nombre"})
	require.NoError(t, err)

	assert.Empty(t, headers[http.MethodGet])
	assert.Equal(t, "tok-123", headers[http.MethodPut])
}

func TestCookieJarCarriesServerIssuedSession(t *testing.T) {
	var second *http.Cookie
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
			w.WriteHeader(http.StatusNoContent)
			return
		}
		second, _ = r.Cookie("session")
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := c.Request(context.Background(), http.MethodPost, "/sesion", map[string]string{"usuario": "admin"})
	require.NoError(t, err)
	_, err = c.Request(context.Background(), http.MethodGet, "/x", nil)
	require.NoError(t, err)

	require.NotNil(t, second)
	assert.Equal(t, "abc", second.Value)
}

func TestRequestSendsJSONContentType(t *testing.T) {
	var got map[string]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	})

	_, err := c.Request(context.Background(), http.MethodPost, "/x", map[string]string{"nombre": "Torres"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"nombre": "Torres"}, got)
}

func TestExtractMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"duplicado"}`, "duplicado"},
		{"mensaje field", `{"mensaje":"en uso"}`, "en uso"},
		{"plain text", `registro bloqueado`, "registro bloqueado"},
		{"unparseable json", `{"otro":"x"}`, "HTTP error 409"},
		{"empty body", ``, "HTTP error 409"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractMessage([]byte(tc.body), 409))
		})
	}
}
