package geoquery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landgauge/landgauge/pkg/errors"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

var testPoint = geo.Coordinates{Lat: -33.8688, Lon: 151.2093}

func TestArcGISClientQueryPoint(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		assert.Equal(t, "/Planning/MapServer/19/query", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"features": []map[string]any{
				{"attributes": map[string]any{"SYM_CODE": "R2", "LAY_CLASS": "Low Density Residential"}},
			},
		})
	}))
	defer server.Close()

	client := NewArcGISClient()
	records, err := client.QueryPoint(context.Background(), Query{
		BaseURL:   server.URL,
		Layer:     "Planning/MapServer/19",
		Point:     testPoint,
		OutFields: "SYM_CODE,LAY_CLASS",
	})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "R2", records[0].String("SYM_CODE"))

	assert.Equal(t, "esriGeometryPoint", gotQuery["geometryType"])
	assert.Equal(t, "esriSpatialRelIntersects", gotQuery["spatialRel"])
	assert.Equal(t, "SYM_CODE,LAY_CLASS", gotQuery["outFields"])
	assert.Equal(t, "false", gotQuery["returnGeometry"])
	assert.Equal(t, "json", gotQuery["f"])

	var geometry map[string]any
	require.NoError(t, json.Unmarshal([]byte(gotQuery["geometry"]), &geometry))
	assert.InDelta(t, testPoint.Lon, geometry["x"], 0.0001)
	assert.InDelta(t, testPoint.Lat, geometry["y"], 0.0001)
}

func TestArcGISClientNoFeatures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"features": []any{}})
	}))
	defer server.Close()

	records, err := NewArcGISClient().QueryPoint(context.Background(), Query{
		BaseURL: server.URL, Layer: "Planning/MapServer/14", Point: testPoint,
	})

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestArcGISClientDefaultsOutFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*", r.URL.Query().Get("outFields"))
		json.NewEncoder(w).Encode(map[string]any{"features": []any{}})
	}))
	defer server.Close()

	_, err := NewArcGISClient().QueryPoint(context.Background(), Query{
		BaseURL: server.URL, Layer: "Planning/MapServer/0", Point: testPoint,
	})
	require.NoError(t, err)
}

func TestArcGISClientEmbeddedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "Invalid or missing input parameters."},
		})
	}))
	defer server.Close()

	_, err := NewArcGISClient().QueryPoint(context.Background(), Query{
		BaseURL: server.URL, Layer: "Planning/MapServer/19", Point: testPoint,
	})

	require.Error(t, err)
	assert.Equal(t, errors.CodeUpstreamRejected, errors.GetCode(err))
}

func TestArcGISClientHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewArcGISClient().QueryPoint(context.Background(), Query{
		BaseURL: server.URL, Layer: "Planning/MapServer/19", Point: testPoint,
	})

	require.Error(t, err)
	assert.Equal(t, errors.CodeUpstreamRejected, errors.GetCode(err))
}

func TestArcGISClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewArcGISClient().QueryPoint(context.Background(), Query{
		BaseURL: server.URL, Layer: "Planning/MapServer/19", Point: testPoint,
	})

	require.Error(t, err)
	assert.Equal(t, errors.CodeUpstreamUnavailable, errors.GetCode(err))
	assert.True(t, errors.IsUpstream(err))
}

func TestArcGISClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := NewArcGISClient().QueryPoint(context.Background(), Query{
		BaseURL: server.URL, Layer: "Planning/MapServer/19", Point: testPoint,
	})

	require.Error(t, err)
	assert.Equal(t, errors.CodeLayerParseError, errors.GetCode(err))
}
