package mgmt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKeepsExplicitURL(t *testing.T) {
	base, err := Resolve(context.Background(), "https://broker.example:15671/")
	require.NoError(t, err)
	assert.Equal(t, "https://broker.example:15671", base)
}

func TestResolveProbesAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/overview", r.URL.Path)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	base, err := Resolve(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, base)
}

func TestResolveFollowsRedirect(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+r.URL.Path, http.StatusMovedPermanently)
	}))
	defer redirecting.Close()

	addr := strings.TrimPrefix(redirecting.URL, "http://")
	base, err := Resolve(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, final.URL, base)
}

func TestResolveUnreachable(t *testing.T) {
	_, err := Resolve(context.Background(), "127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}
