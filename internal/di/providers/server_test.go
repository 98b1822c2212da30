package providers

import (
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox-server/internal/config"
)

// newTestInjector wires every provider the HTTP server depends on against
// an in-memory store listening on port.
func newTestInjector(t *testing.T, port string) *do.RootScope {
	t.Helper()

	cfg, err := config.Load([]string{
		"-env", config.EnvTest,
		"-store", config.BackendMemory,
		"-log-level", "error",
		"-port", port,
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
	})
	require.NoError(t, err)

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.Provide(injector, ProvideLogger)
	do.Provide(injector, ProvideMetrics)
	do.Provide(injector, ProvideSSEManager)
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideSearchIndex)
	do.Provide(injector, ProvideRecipeService)
	do.Provide(injector, ProvideRateLimiter)
	do.Provide(injector, ProvideHTTPServer)

	t.Cleanup(func() { _ = injector.Shutdown() })

	return injector
}

func portOf(t *testing.T, ln net.Listener) string {
	t.Helper()
	addr, ok := ln.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return strconv.Itoa(addr.Port)
}

func TestProvideHTTPServer_PortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = taken.Close() })

	injector := newTestInjector(t, portOf(t, taken))

	_, err = do.Invoke[*HTTPServerHandle](injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on :"+portOf(t, taken))
}

func TestProvideHTTPServer_Serves(t *testing.T) {
	free, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := portOf(t, free)
	require.NoError(t, free.Close())

	injector := newTestInjector(t, port)

	_, err = do.Invoke[*HTTPServerHandle](injector)
	require.NoError(t, err)

	resp, err := http.Get("http://127.0.0.1:" + port + "/api/health")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
