//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/atelier-cms/atelier/internal/domain/content"
)

type envelope struct {
	Content []content.Item `json:"content"`
}

func login(t *testing.T) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"password": testPassword})
	resp, err := http.Post(testServer.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out.Token
}

func putContent(t *testing.T, token, section string, items []content.Item) (envelope, int) {
	t.Helper()
	body, _ := json.Marshal(envelope{Content: items})
	req, err := http.NewRequest(http.MethodPut, testServer.URL+"/api/v1/content/"+section, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out envelope
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out, resp.StatusCode
}

func getContent(t *testing.T, token, section string) (envelope, int) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, testServer.URL+"/api/v1/content/"+section, http.NoBody)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out envelope
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out, resp.StatusCode
}

func TestContentLifecycle(t *testing.T) {
	token := login(t)

	// Anonymous writes are rejected.
	if _, status := putContent(t, "", "fragmenti", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous write, got %d", status)
	}

	// Create.
	created, status := putContent(t, token, "fragmenti", []content.Item{
		{Type: content.TypeText, Content: "<p>First</p>"},
		{Type: content.TypeImage, Content: "/media/x.jpg"},
		{Type: content.TypeText, Content: "<p><br></p>"},
	})
	if status != http.StatusOK {
		t.Fatalf("put status %d", status)
	}
	if len(created.Content) != 2 {
		t.Fatalf("expected empty block dropped, got %d items", len(created.Content))
	}

	// Anonymous reads are rejected too.
	anon, err := http.Get(testServer.URL + "/api/v1/content/fragmenti")
	if err != nil {
		t.Fatal(err)
	}
	anon.Body.Close()
	if anon.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous read, got %d", anon.StatusCode)
	}

	// Authenticated read agrees.
	listed, status := getContent(t, token, "fragmenti")
	if status != http.StatusOK {
		t.Fatalf("get status %d", status)
	}
	if len(listed.Content) != 2 || listed.Content[0].ID != created.Content[0].ID {
		t.Fatalf("GET disagrees with PUT: %+v", listed.Content)
	}

	// Replay of the canonical list converges.
	replayed, status := putContent(t, token, "fragmenti", created.Content)
	if status != http.StatusOK {
		t.Fatalf("replay status %d", status)
	}
	for i := range created.Content {
		if replayed.Content[i].ID != created.Content[i].ID {
			t.Fatalf("replay changed IDs: %+v vs %+v", replayed.Content[i], created.Content[i])
		}
	}

	// Empty list clears the section.
	cleared, status := putContent(t, token, "fragmenti", nil)
	if status != http.StatusOK {
		t.Fatalf("clear status %d", status)
	}
	if len(cleared.Content) != 0 {
		t.Fatalf("expected cleared section, got %+v", cleared.Content)
	}
}
