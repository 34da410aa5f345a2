package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/measlab/liveplot/pipeline"
)

func newTestServer(t *testing.T, kind pipeline.Kind) (*pipeline.Pipeline, *httptest.Server) {
	t.Helper()
	metrics := pipeline.NewMetrics(kind)
	pipe := pipeline.New(kind, pipeline.NewRepublisher(metrics), metrics)
	ts := httptest.NewServer(NewServer(pipe).Handler())
	t.Cleanup(ts.Close)
	return pipe, ts
}

func getChartData(t *testing.T, ts *httptest.Server) ChartData {
	t.Helper()
	resp, err := http.Get(ts.URL + "/data")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data ChartData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	return data
}

func TestDataEndpointStreaming(t *testing.T) {
	pipe, ts := newTestServer(t, pipeline.KindIT)

	payload := []byte(`{"data": [0.6, 0.005, 100.0, 0], "pixel": {"area": 0.1}, "clear": false, "idn": "dev1"}`)
	require.NoError(t, pipe.HandleMessage("data/raw/it_measurement", payload))

	data := getChartData(t, ts)
	assert.Equal(t, "dev1", data.Title)
	assert.False(t, data.Paused)
	require.Len(t, data.Traces, 1)
	assert.Equal(t, "j", data.Traces[0].Name)
	assert.Equal(t, []float64{0}, data.Traces[0].X)
	assert.InDeltaSlice(t, []float64{50}, data.Traces[0].Y, 1e-9)
}

func TestDataEndpointHidesZeroFilledReverseScan(t *testing.T) {
	pipe, ts := newTestServer(t, pipeline.KindIV)

	forward := []byte(`{"data": [[0.1, 0.010, 100.0, 0], [0.2, 0.008, 100.1, 0]], "pixel": {"area": 0.1}, "clear": false, "idn": "dev1"}`)
	require.NoError(t, pipe.HandleMessage("data/raw/iv_measurement", forward))

	data := getChartData(t, ts)
	require.Len(t, data.Traces, 1)
	assert.Equal(t, "scan0", data.Traces[0].Name)

	reverse := []byte(`{"data": [[0.2, 0.007, 100.2, 0], [0.1, 0.009, 100.3, 0]], "pixel": {"area": 0.1}, "clear": false, "idn": "dev1"}`)
	require.NoError(t, pipe.HandleMessage("data/raw/iv_measurement", reverse))

	data = getChartData(t, ts)
	require.Len(t, data.Traces, 2)
	assert.Equal(t, "scan1", data.Traces[1].Name)
	assert.Equal(t, []float64{0.2, 0.1}, data.Traces[1].X)
	assert.InDeltaSlice(t, []float64{70, 90}, data.Traces[1].Y, 1e-9)
}

func TestDataEndpointReportsPause(t *testing.T) {
	pipe, ts := newTestServer(t, pipeline.KindIT)

	require.NoError(t, pipe.HandleMessage(pipeline.TopicPause, []byte(`true`)))
	data := getChartData(t, ts)
	assert.True(t, data.Paused)
}

func TestIndexServesChartPage(t *testing.T) {
	_, ts := newTestServer(t, pipeline.KindIV)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestMetricsEndpoint(t *testing.T) {
	pipe, ts := newTestServer(t, pipeline.KindIT)

	payload := []byte(`{"data": [0.6, 0.005, 100.0, 0], "pixel": {"area": 0.1}, "clear": false, "idn": "dev1"}`)
	require.NoError(t, pipe.HandleMessage("data/raw/it_measurement", payload))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
