package workers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"goxchain/metrics"
	"goxchain/simulator"
	"goxchain/types"
	"goxchain/workers/handlers"
)

func newTestServer(t *testing.T) (*httptest.Server, *simulator.Simulator) {
	t.Helper()
	srv, sim, _ := newLoggedTestServer(t)
	return srv, sim
}

func newLoggedTestServer(t *testing.T) (*httptest.Server, *simulator.Simulator, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	registry := prometheus.NewRegistry()
	sim, err := simulator.New(simulator.Options{
		Scheduler: simulator.ImmediateScheduler{},
		Faults:    simulator.NoFaults,
		Metrics:   metrics.New(registry),
	})
	require.NoError(t, err)
	t.Cleanup(sim.Wait)

	srv := httptest.NewServer(NewRouter(handlers.New(sim, nil), registry, zap.New(core)))
	t.Cleanup(srv.Close)
	return srv, sim, logs
}

func TestRouter_TransferRoundTrip(t *testing.T) {
	req := require.New(t)
	srv, sim := newTestServer(t)

	resp, err := http.Post(srv.URL+"/transactions", "application/json",
		strings.NewReader(`{"fromChain":"ethereum","toChain":"arbitrum","tokenId":"eth","amount":"0.35"}`))
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusAccepted, resp.StatusCode)
	req.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))

	var tx types.Transaction
	req.NoError(json.NewDecoder(resp.Body).Decode(&tx))
	_, err = sim.AwaitTransaction(context.Background(), tx.ID)
	req.NoError(err)

	resp, err = http.Get(srv.URL + "/transactions/" + tx.ID)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
	var final types.Transaction
	req.NoError(json.NewDecoder(resp.Body).Decode(&final))
	req.Equal(types.StatusConfirmed, final.Status)
	req.NotNil(final.ConfirmedAt)

	resp, err = http.Get(srv.URL + "/balances?chain=ethereum")
	req.NoError(err)
	defer resp.Body.Close()
	var balances []types.BalanceEntry
	req.NoError(json.NewDecoder(resp.Body).Decode(&balances))
	for _, b := range balances {
		if b.Token.ID == "eth" {
			req.Equal("2.000000000000000000", b.Balance)
		}
	}
}

func TestRouter_Metrics(t *testing.T) {
	req := require.New(t)
	srv, sim := newTestServer(t)

	_, err := sim.Send(context.Background(), types.ChainSolana, types.ChainPolygon, "gm")
	req.NoError(err)
	sim.Wait()

	resp, err := http.Get(srv.URL + "/metrics")
	req.NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	req.Contains(string(body), "xchain_submitted_operations_total")
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := require.New(t)
	srv, _ := newTestServer(t)

	r, err := http.NewRequest(http.MethodOptions, srv.URL+"/transactions", nil)
	req.NoError(err)
	resp, err := http.DefaultClient.Do(r)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
	req.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestRouter_UnknownPathWithoutApp(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/no/such/page")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_RequestsGoToServiceLog(t *testing.T) {
	req := require.New(t)
	srv, _, logs := newLoggedTestServer(t)

	resp, err := http.Get(srv.URL + "/tokens")
	req.NoError(err)
	resp.Body.Close()

	req.Eventually(func() bool {
		return logs.FilterMessage("HTTP request").Len() == 1
	}, time.Second, 10*time.Millisecond)
	entries := logs.FilterMessage("HTTP request").All()
	fields := entries[0].ContextMap()
	req.Equal("GET", fields["method"])
	req.Equal("/tokens", fields["path"])
	req.EqualValues(http.StatusOK, fields["status"])
}
