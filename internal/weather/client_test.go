package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper serves requests from an in-process handler.
type mockRoundTripper struct {
	handler http.Handler
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	m.handler.ServeHTTP(rec, req)
	return rec.Result(), nil
}

type failingRoundTripper struct{}

func (failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func newTestClient(handler http.Handler) *Client {
	return &Client{
		APIKey:    "test-key",
		BaseURL:   DefaultBaseURL,
		UserAgent: "test-agent",
		HTTPClient: &http.Client{
			Transport: &mockRoundTripper{handler: handler},
		},
	}
}

const parisBody = `{
	"cod": 200,
	"name": "Paris",
	"sys": {"country": "FR"},
	"weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}],
	"main": {"temp": 15.6, "temp_min": 14.0, "temp_max": 17.2}
}`

func TestFetchCurrent_Success(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Paris", q.Get("q"))
		assert.Equal(t, "test-key", q.Get("appid"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(parisBody))
	})

	resp, err := newTestClient(handler).FetchCurrent(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, StatusCode(200), resp.Cod)
	assert.Equal(t, "Paris", resp.Name)
	assert.Equal(t, "FR", resp.Sys.Country)
	require.Len(t, resp.Weather, 1)
	assert.Equal(t, "Rain", resp.Weather[0].Main)
	assert.Equal(t, "light rain", resp.Weather[0].Description)
	assert.Equal(t, "10d", resp.Weather[0].Icon)
	assert.InDelta(t, 15.6, resp.Main.Temp, 1e-9)
	assert.InDelta(t, 14.0, resp.Main.TempMin, 1e-9)
	assert.InDelta(t, 17.2, resp.Main.TempMax, 1e-9)
}

func TestFetchCurrent_EscapesCity(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "São Paulo & Co", r.URL.Query().Get("q"))
		w.Write([]byte(`{"cod": 200, "weather": []}`))
	})

	_, err := newTestClient(handler).FetchCurrent(context.Background(), "São Paulo & Co")
	require.NoError(t, err)
}

// The provider sends cod as a string on errors, together with a 404 status.
func TestFetchCurrent_NotFoundBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod": "404", "message": "city not found"}`))
	})

	resp, err := newTestClient(handler).FetchCurrent(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Equal(t, StatusCode(404), resp.Cod)
	assert.Equal(t, "city not found", resp.Message)
}

func TestFetchCurrent_APIErrorWithoutJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := newTestClient(handler).FetchCurrent(context.Background(), "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchCurrent_InvalidJSON(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("invalid json {"))
	})

	_, err := newTestClient(handler).FetchCurrent(context.Background(), "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestFetchCurrent_TransportError(t *testing.T) {
	client := &Client{
		APIKey:     "test-key",
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Transport: failingRoundTripper{}},
	}

	_, err := client.FetchCurrent(context.Background(), "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStatusCodeUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    StatusCode
		wantErr bool
	}{
		{name: "number", input: `200`, want: 200},
		{name: "string", input: `"404"`, want: 404},
		{name: "null", input: `null`, want: 0},
		{name: "garbage", input: `"abc"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StatusCode
			err := s.UnmarshalJSON([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestIconURL(t *testing.T) {
	assert.Equal(t, "https://openweathermap.org/img/wn/10d@4x.png",
		IconURL("https://openweathermap.org/img/wn", "10d"))
	assert.Equal(t, "https://cdn.example/icons/01n@4x.png",
		IconURL("https://cdn.example/icons/", "01n"))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("k", "", 0)
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, "k", c.APIKey)
	assert.NotNil(t, c.HTTPClient)
}
