package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/nearbuy/internal/identity"
	"github.com/MyNameIsWhaaat/nearbuy/internal/paging"
	handler "github.com/MyNameIsWhaaat/nearbuy/internal/product/handler/http"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/model"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/service"
	inm "github.com/MyNameIsWhaaat/nearbuy/internal/product/storage/inmemory"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(inm.New(), zerolog.Nop(), service.Options{})
	h := handler.New(svc, zerolog.Nop())

	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(identity.Middleware(mux))
	t.Cleanup(srv.Close)
	return srv
}

func request(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return res
}

func TestUploadAndBrowseNearby(t *testing.T) {
	srv := newServer(t)
	owner := map[string]string{identity.HeaderUserID: uuid.NewString()}

	var first model.Item
	for i := 0; i < 23; i++ {
		res := request(t, http.MethodPost, srv.URL+"/products", map[string]any{
			"name":    fmt.Sprintf("item %d", i),
			"price":   5,
			"lat":     float64(i) * 0.01,
			"lon":     0,
			"address": "Main St",
		}, owner)
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("upload %d: expected 201, got %d", i, res.StatusCode)
		}
		if i == 0 {
			_ = json.NewDecoder(res.Body).Decode(&first)
		}
		_ = res.Body.Close()
	}

	origin := map[string]string{identity.HeaderLat: "0", identity.HeaderLon: "0"}
	res := request(t, http.MethodGet, srv.URL+"/products/nearme?page=1", nil, origin)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var page paging.Result[model.NearbyItem]
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	_ = res.Body.Close()

	if len(page.Items) != 10 || page.TotalPages != 3 || page.Items[0].ID != first.ID {
		t.Fatalf("unexpected first page %+v", page)
	}

	// query parameters override the profile origin
	res = request(t, http.MethodGet, srv.URL+"/products/nearme?page=4&lat=1&lon=1", nil, origin)
	page = paging.Result[model.NearbyItem]{}
	_ = json.NewDecoder(res.Body).Decode(&page)
	_ = res.Body.Close()
	if len(page.Items) != 0 || page.TotalPages != 3 {
		t.Fatalf("unexpected page 4 %+v", page)
	}

	res = request(t, http.MethodGet, srv.URL+"/products/"+first.ID.String(), nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for detail, got %d", res.StatusCode)
	}
	_ = res.Body.Close()
}

func TestProductErrors(t *testing.T) {
	srv := newServer(t)

	cases := []struct {
		name    string
		method  string
		path    string
		body    any
		headers map[string]string
		want    int
	}{
		{"no origin", http.MethodGet, "/products/nearme", nil, nil, http.StatusBadRequest},
		{"bad page", http.MethodGet, "/products/nearme?page=x&lat=0&lon=0", nil, nil, http.StatusBadRequest},
		{"bad origin", http.MethodGet, "/products/nearme?lat=abc&lon=0", nil, nil, http.StatusBadRequest},
		{"out of range origin", http.MethodGet, "/products/nearme?lat=95&lon=0", nil, nil, http.StatusBadRequest},
		{"unknown product", http.MethodGet, "/products/" + uuid.NewString(), nil, nil, http.StatusNotFound},
		{"bad product id", http.MethodGet, "/products/nope", nil, nil, http.StatusBadRequest},
		{"anonymous upload", http.MethodPost, "/products", map[string]any{"name": "x"}, nil, http.StatusBadRequest},
		{"negative price", http.MethodPost, "/products", map[string]any{"name": "x", "price": -2},
			map[string]string{identity.HeaderUserID: uuid.NewString()}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		res := request(t, tc.method, srv.URL+tc.path, tc.body, tc.headers)
		_ = res.Body.Close()
		if res.StatusCode != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, res.StatusCode)
		}
	}
}
