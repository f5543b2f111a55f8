package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/door-control/dcc/internal/config"
)

type staticDoors []config.DoorMapping

func (d staticDoors) Doors() []config.DoorMapping { return d }

func testServer() *Server {
	doors := staticDoors{
		{Name: "front", CMIAddress: "10.0.0.5", CMIPort: 5442, VirtualNode: 2, PDO: 2},
		{Name: "garage", CMIAddress: "10.0.0.6", CMIPort: 5422, VirtualNode: 3, PDO: 0},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(doors, "test", logger)
}

func get(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()

	ts := httptest.NewServer(testServer().Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response of GET %s: %v", path, err)
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	resp, body := get(t, "/api/v1/health")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version field = %v, want test", body["version"])
	}
}

func TestListDoors(t *testing.T) {
	resp, body := get(t, "/api/v1/doors")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	items, ok := body["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("items = %v, want 2 doors", body["items"])
	}

	first, _ := items[0].(map[string]any)
	if first["name"] != "front" {
		t.Errorf("first door = %v, want front", first["name"])
	}
	// Internal index 2 is shown as the configured one-based pdo 3.
	if first["pdo"] != float64(3) {
		t.Errorf("pdo = %v, want 3", first["pdo"])
	}
	if _, leaked := first["digestSecret"]; leaked {
		t.Error("door view must not carry secrets")
	}
}

func TestGetDoor(t *testing.T) {
	resp, body := get(t, "/api/v1/doors/garage")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["cmiAddress"] != "10.0.0.6" {
		t.Errorf("cmiAddress = %v, want 10.0.0.6", body["cmiAddress"])
	}
	if body["pdo"] != float64(1) {
		t.Errorf("pdo = %v, want 1", body["pdo"])
	}
}

func TestGetDoorNotFound(t *testing.T) {
	resp, body := get(t, "/api/v1/doors/back")

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["code"] != "NOT_FOUND" {
		t.Errorf("code = %v, want NOT_FOUND", body["code"])
	}
}
