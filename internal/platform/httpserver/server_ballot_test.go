package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ballotledger "greenballot/contexts/election-core/ballot-ledger"
	ballothttp "greenballot/contexts/election-core/ballot-ledger/transport/http"
)

const testAdmin = "admin-1"

func newTestServer() *Server {
	module := ballotledger.NewInMemoryModule(testAdmin, nil)
	return New(module, nil, ":0")
}

func doJSON(t *testing.T, server *Server, method string, path string, principal string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set("X-Principal-Id", principal)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(recorder.Body).Decode(&out); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return out
}

func registerVoterBody(name string) string {
	return fmt.Sprintf(`{"name":%q,"nationality":"Nigerian","age":30,"lga":"Ikeja"}`, name)
}

func sessionBody(name string) string {
	now := time.Now().UTC()
	return fmt.Sprintf(`{"name":%q,"start_time":%q,"end_time":%q}`,
		name,
		now.Format(time.RFC3339),
		now.Add(24*time.Hour).Format(time.RFC3339),
	)
}

func TestMutatingRoutesRequirePrincipal(t *testing.T) {
	server := newTestServer()

	recorder := doJSON(t, server, http.MethodPost, "/api/ballot/v1/candidates", "", `{"name":"Ada","party":"Green"}`)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal header, got %d", recorder.Code)
	}
	errResp := decodeBody[ballothttp.ErrorResponse](t, recorder)
	if errResp.Code != "missing_principal" {
		t.Fatalf("error code mismatch: %+v", errResp)
	}
}

func TestCandidateLifecycleOverHTTP(t *testing.T) {
	server := newTestServer()

	recorder := doJSON(t, server, http.MethodPost, "/api/ballot/v1/candidates", "intruder", `{"name":"Ada","party":"Green"}`)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodPost, "/api/ballot/v1/candidates", testAdmin, `{"name":"","party":"Green"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodPost, "/api/ballot/v1/candidates", testAdmin, `{"name":"Ada","party":"Green"}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	created := decodeBody[ballothttp.CandidateResponse](t, recorder)
	if created.CandidateID != 1 || created.VoteCount != 0 {
		t.Fatalf("created candidate mismatch: %+v", created)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/ballot/v1/candidates/1", "", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/ballot/v1/candidates/99", "", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown candidate, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/ballot/v1/candidates/abc", "", "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", recorder.Code)
	}
}

func TestVoterRoutesMapDomainErrors(t *testing.T) {
	server := newTestServer()

	recorder := doJSON(t, server, http.MethodPost, "/api/ballot/v1/voters", "voter-1", registerVoterBody("Alice"))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = doJSON(t, server, http.MethodPost, "/api/ballot/v1/voters", "voter-1", registerVoterBody("Alice"))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate registration, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/ballot/v1/voters/ghost", "", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown voter, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/ballot/v1/voters/ghost/voted", "", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for has-voted on unknown voter, got %d", recorder.Code)
	}
	voted := decodeBody[ballothttp.HasVotedResponse](t, recorder)
	if voted.HasVoted {
		t.Fatalf("unknown voter must report has_voted=false")
	}

	recorder = doJSON(t, server, http.MethodDelete, "/api/ballot/v1/voters/voter-1", testAdmin, "")
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for unregister, got %d", recorder.Code)
	}
}

func TestVoteFlowOverHTTP(t *testing.T) {
	server := newTestServer()

	if code := doJSON(t, server, http.MethodPost, "/api/ballot/v1/candidates", testAdmin, `{"name":"Ada","party":"Green"}`).Code; code != http.StatusCreated {
		t.Fatalf("candidate setup failed with %d", code)
	}
	if code := doJSON(t, server, http.MethodPost, "/api/ballot/v1/sessions", testAdmin, sessionBody("General")).Code; code != http.StatusCreated {
		t.Fatalf("session setup failed with %d", code)
	}
	if code := doJSON(t, server, http.MethodPost, "/api/ballot/v1/voters", "voter-1", registerVoterBody("Alice")).Code; code != http.StatusCreated {
		t.Fatalf("voter setup failed with %d", code)
	}

	recorder := doJSON(t, server, http.MethodPost, "/api/ballot/v1/votes", "voter-1", `{"candidate_id":1,"session_id":1}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201 for vote, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = doJSON(t, server, http.MethodPost, "/api/ballot/v1/votes", "voter-1", `{"candidate_id":1,"session_id":1}`)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for double vote, got %d", recorder.Code)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/ballot/v1/sessions/1/results", "", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for results, got %d", recorder.Code)
	}
	results := decodeBody[ballothttp.SessionResultsResponse](t, recorder)
	if len(results.Items) != 1 || results.Items[0].VoteCount != 1 {
		t.Fatalf("results mismatch: %+v", results)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/ballot/v1/results/winner", "", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for winner, got %d", recorder.Code)
	}
	winner := decodeBody[ballothttp.CandidateResponse](t, recorder)
	if winner.CandidateID != 1 {
		t.Fatalf("winner mismatch: %+v", winner)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/ballot/v1/stats", "", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for stats, got %d", recorder.Code)
	}
	stats := decodeBody[ballothttp.SystemStatsResponse](t, recorder)
	if stats.TotalVotes != 1 || !stats.SystemActive {
		t.Fatalf("stats mismatch: %+v", stats)
	}
}

func TestSystemToggleMapsInactiveToConflict(t *testing.T) {
	server := newTestServer()

	recorder := doJSON(t, server, http.MethodPost, "/api/ballot/v1/system/toggle", testAdmin, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for toggle, got %d", recorder.Code)
	}
	state := decodeBody[ballothttp.SystemStateResponse](t, recorder)
	if state.Active {
		t.Fatalf("expected inactive after toggle: %+v", state)
	}

	recorder = doJSON(t, server, http.MethodPost, "/api/ballot/v1/voters", "voter-1", registerVoterBody("Alice"))
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 while system inactive, got %d", recorder.Code)
	}
	errResp := decodeBody[ballothttp.ErrorResponse](t, recorder)
	if errResp.Message != "System is not active" {
		t.Fatalf("error message mismatch: %+v", errResp)
	}

	recorder = doJSON(t, server, http.MethodGet, "/api/ballot/v1/admin", "", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin query, got %d", recorder.Code)
	}
	admin := decodeBody[ballothttp.AdminResponse](t, recorder)
	if admin.Admin != testAdmin {
		t.Fatalf("admin mismatch: %+v", admin)
	}
}

func TestInvalidJSONBodyIsRejected(t *testing.T) {
	server := newTestServer()

	recorder := doJSON(t, server, http.MethodPost, "/api/ballot/v1/candidates", testAdmin, `{"name":`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", recorder.Code)
	}
	errResp := decodeBody[ballothttp.ErrorResponse](t, recorder)
	if errResp.Code != "invalid_json" {
		t.Fatalf("error code mismatch: %+v", errResp)
	}
}
