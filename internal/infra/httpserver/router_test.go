package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/Samith-P/ciphercopdemo/internal/application"
	appanalyzer "github.com/Samith-P/ciphercopdemo/internal/application/analyzer"
	appauth "github.com/Samith-P/ciphercopdemo/internal/application/auth"
	apphistory "github.com/Samith-P/ciphercopdemo/internal/application/history"
	"github.com/Samith-P/ciphercopdemo/internal/domain/analysis"
	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
	"github.com/Samith-P/ciphercopdemo/internal/domain/users"
	"github.com/Samith-P/ciphercopdemo/internal/infra/providers"
)

//
// In-memory stores backing the full stack under httptest.
//

type memResults struct {
	records []*tests.TestResult
}

func (m *memResults) Save(ctx context.Context, t *tests.TestResult) error {
	m.records = append(m.records, t)
	return nil
}

func (m *memResults) Get(ctx context.Context, userID string, id tests.ResultID) (*tests.TestResult, error) {
	for _, t := range m.records {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return nil, tests.ErrNotFound
}

func (m *memResults) History(ctx context.Context, userID string, f tests.HistoryFilter) (tests.PaginatedResult, error) {
	var mine []*tests.TestResult
	for _, t := range m.records {
		if t.UserID != userID {
			continue
		}
		if f.TestType != "" && t.TestType != f.TestType {
			continue
		}
		mine = append(mine, t)
	}
	// Newest first, matching the SQL repositories' ordering.
	sort.SliceStable(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID > mine[j].ID
	})
	total := int64(len(mine))
	start := (f.Page - 1) * f.Limit
	if start > len(mine) {
		start = len(mine)
	}
	end := start + f.Limit
	if end > len(mine) {
		end = len(mine)
	}
	page := mine[start:end]
	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return tests.PaginatedResult{
		Data: page, Page: f.Page, Limit: f.Limit,
		Count: len(page), Total: total, TotalPages: pages,
	}, nil
}

func (m *memResults) Stats(ctx context.Context, userID string) ([]tests.TypeStats, error) {
	groups := map[tests.TestType]*tests.TypeStats{}
	var order []tests.TestType
	for _, t := range m.records {
		if t.UserID != userID {
			continue
		}
		g, ok := groups[t.TestType]
		if !ok {
			g = &tests.TypeStats{TestType: t.TestType}
			groups[t.TestType] = g
			order = append(order, t.TestType)
		}
		g.Count++
		if t.Result.IsThreat {
			g.ThreatsFound++
		}
		g.AvgRiskScore += float64(t.Result.RiskScore)
		if t.CreatedAt.After(g.LastTest) {
			g.LastTest = t.CreatedAt
		}
	}
	var out []tests.TypeStats
	for _, tt := range order {
		g := groups[tt]
		g.AvgRiskScore /= float64(g.Count)
		out = append(out, *g)
	}
	return out, nil
}

func (m *memResults) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, t := range m.records {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

type memUsers struct {
	byEmail map[string]*users.User
	byID    map[string]*users.User
}

func (m *memUsers) Create(ctx context.Context, u *users.User) error {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) ByEmail(ctx context.Context, email string) (*users.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memUsers) ByID(ctx context.Context, id string) (*users.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type memSessions struct {
	byToken map[string]*users.Session
}

func (m *memSessions) Save(ctx context.Context, s *users.Session) error {
	m.byToken[s.Token] = s
	return nil
}

func (m *memSessions) Get(ctx context.Context, token string) (*users.Session, error) {
	if s, ok := m.byToken[token]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memSessions) Delete(ctx context.Context, token string) error {
	delete(m.byToken, token)
	return nil
}

type staticCollector struct{}

func (staticCollector) Collect(ctx context.Context, domain string) (*analysis.DomainSignals, error) {
	return &analysis.DomainSignals{
		Domain: domain, LookupOK: true, AgeDays: 4000, ResolvedIP: "93.184.216.34",
	}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memResults) {
	t.Helper()
	results := &memResults{}
	fixtures := providers.NewFixture()

	analyzerSvc := &appanalyzer.Service{
		Repo:      results,
		Collector: staticCollector{},
		Malware:   fixtures,
		Clone:     fixtures,
		Scam:      fixtures,
		Clock:     application.SystemClock{},
	}
	historySvc := &apphistory.Service{Repo: results}
	authSvc := &appauth.Service{
		Users:    &memUsers{byEmail: map[string]*users.User{}, byID: map[string]*users.User{}},
		Sessions: &memSessions{byToken: map[string]*users.Session{}},
		Clock:    application.SystemClock{},
	}

	srv := httptest.NewServer(NewRouter(analyzerSvc, historySvc, authSvc))
	t.Cleanup(srv.Close)
	return srv, results
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return resp, env
}

func signup(t *testing.T, base, email string) string {
	t.Helper()
	resp, env := doJSON(t, http.MethodPost, base+"/signup", "", map[string]string{
		"email": email, "password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("signup failed: %d %s", resp.StatusCode, env.Error)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("no token in signup response: %v", err)
	}
	return data.Token
}

func TestRouter_AuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/phishing/analyze"},
		{http.MethodPost, "/api/phishing/analyze-email"},
		{http.MethodPost, "/api/malware/store"},
		{http.MethodPost, "/api/malware/analyze"},
		{http.MethodPost, "/api/clone/analyze"},
		{http.MethodPost, "/api/scam/analyze"},
		{http.MethodGet, "/api/tests/history"},
		{http.MethodGet, "/api/tests/stats"},
		{http.MethodGet, "/api/tests/abc"},
		{http.MethodGet, "/checkAuth"},
	}
	for _, ep := range protected {
		resp, env := doJSON(t, ep.method, srv.URL+ep.path, "", map[string]string{})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s: status %d, want 401", ep.method, ep.path, resp.StatusCode)
		}
		if env.Success {
			t.Errorf("%s %s: success=true on auth failure", ep.method, ep.path)
		}
	}
}

func TestRouter_SignupLoginFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL

	token := signup(t, base, "alice@example.com")

	resp, env := doJSON(t, http.MethodGet, base+"/checkAuth", token, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("checkAuth: %d %s", resp.StatusCode, env.Error)
	}

	// duplicate signup rejected
	resp, env = doJSON(t, http.MethodPost, base+"/signup", "", map[string]string{
		"email": "alice@example.com", "password": "hunter22",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate signup: %d, want 400", resp.StatusCode)
	}

	// login with wrong password
	resp, _ = doJSON(t, http.MethodPost, base+"/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login: %d, want 401", resp.StatusCode)
	}

	// logout kills the session
	resp, _ = doJSON(t, http.MethodPost, base+"/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, base+"/checkAuth", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("checkAuth after logout: %d, want 401", resp.StatusCode)
	}
}

func TestRouter_SignupValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing password", map[string]string{"email": "alice@example.com"}},
		{"missing email", map[string]string{"password": "hunter22"}},
		{"short password", map[string]string{"email": "alice@example.com", "password": "short"}},
	}
	for _, tc := range cases {
		resp, env := doJSON(t, http.MethodPost, srv.URL+"/signup", "", tc.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", tc.name, resp.StatusCode)
		}
		if env.Success || env.Error == "" {
			t.Errorf("%s: envelope = %+v", tc.name, env)
		}
	}
}

func TestRouter_AnalyzeURLPersists(t *testing.T) {
	srv, results := newTestServer(t)
	token := signup(t, srv.URL, "alice@example.com")

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/phishing/analyze", token, map[string]string{
		"url": "https://example.com",
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("analyze: %d %s", resp.StatusCode, env.Error)
	}
	var data struct {
		URL        string `json:"url"`
		Domain     string `json:"domain"`
		IsPhishing bool   `json:"isPhishing"`
		RiskScore  int    `json:"riskScore"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Domain != "example.com" || data.IsPhishing {
		t.Errorf("data = %+v", data)
	}
	if len(results.records) != 1 {
		t.Fatalf("persisted %d records, want 1", len(results.records))
	}
	if results.records[0].TestType != tests.TypePhishing {
		t.Errorf("record type = %s", results.records[0].TestType)
	}
}

func TestRouter_AnalyzeSimpleDoesNotPersist(t *testing.T) {
	srv, results := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/phishing/analyze-simple", "", map[string]string{
		"url": "example.com",
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("analyze-simple: %d %s", resp.StatusCode, env.Error)
	}
	if len(results.records) != 0 {
		t.Errorf("persisted %d records, want 0", len(results.records))
	}
}

func TestRouter_MissingAndInvalidInput(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signup(t, srv.URL, "alice@example.com")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/phishing/analyze", token, map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing url: %d, want 400", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/phishing/analyze", token, map[string]string{
		"url": "not a url at all",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid url: %d, want 400", resp.StatusCode)
	}
}

func TestRouter_MalwareStoreAndDetail(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signup(t, srv.URL, "alice@example.com")

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/malware/store", token, map[string]any{
		"fileName": "sample.exe",
		"testType": "malware",
		"result":   map[string]any{"positives": 12, "total": 60, "verdict": "malicious"},
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("store: %d %s", resp.StatusCode, env.Error)
	}
	var stored struct {
		TestID string `json:"testId"`
	}
	if err := json.Unmarshal(env.Data, &stored); err != nil || stored.TestID == "" {
		t.Fatalf("no testId: %v", err)
	}

	resp, env = doJSON(t, http.MethodGet, srv.URL+"/api/tests/"+stored.TestID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("detail: %d %s", resp.StatusCode, env.Error)
	}
	var detail struct {
		TestType string `json:"testType"`
		Result   struct {
			IsMalware   bool   `json:"isMalware"`
			ThreatLevel string `json:"threatLevel"`
			RiskScore   int    `json:"riskScore"`
		} `json:"result"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatal(err)
	}
	if detail.TestType != "malware" || !detail.Result.IsMalware || detail.Result.ThreatLevel != "high" {
		t.Errorf("detail = %+v", detail)
	}
	if detail.Result.RiskScore != 20 {
		t.Errorf("RiskScore = %d, want 20", detail.Result.RiskScore)
	}
	if detail.Details == nil {
		t.Error("detail response should include details")
	}
}

func TestRouter_DetailOwnershipIsolation(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := signup(t, srv.URL, "alice@example.com")
	bob := signup(t, srv.URL, "bob@example.com")

	_, env := doJSON(t, http.MethodPost, srv.URL+"/api/malware/store", alice, map[string]any{
		"fileName": "sample.exe",
		"testType": "malware",
		"result":   map[string]any{"positives": 1, "total": 5},
	})
	var stored struct {
		TestID string `json:"testId"`
	}
	if err := json.Unmarshal(env.Data, &stored); err != nil {
		t.Fatal(err)
	}

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/tests/"+stored.TestID, bob, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign record fetch: %d, want 404", resp.StatusCode)
	}
}

func TestRouter_HistoryPaginationAndFilter(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signup(t, srv.URL, "alice@example.com")

	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("file%d.exe", i)
		if _, env := doJSON(t, http.MethodPost, srv.URL+"/api/malware/store", token, map[string]any{
			"fileName": name,
			"testType": "malware",
			"result":   map[string]any{"positives": 0, "total": 5},
		}); !env.Success {
			t.Fatalf("store %s: %s", name, env.Error)
		}
	}
	if _, env := doJSON(t, http.MethodPost, srv.URL+"/api/scam/analyze", token, map[string]string{
		"content": "see you at lunch",
	}); !env.Success {
		t.Fatalf("scam analyze: %s", env.Error)
	}

	// default page size is 10
	_, env := doJSON(t, http.MethodGet, srv.URL+"/api/tests/history", token, nil)
	var page struct {
		Tests      []map[string]any `json:"tests"`
		Pagination struct {
			Current    int   `json:"current"`
			Total      int   `json:"total"`
			Count      int   `json:"count"`
			TotalTests int64 `json:"totalTests"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Tests) != 10 || page.Pagination.Current != 1 || page.Pagination.TotalTests != 13 {
		t.Errorf("page 1 = %+v (len %d)", page.Pagination, len(page.Tests))
	}
	// history entries carry no details payload
	if _, ok := page.Tests[0]["details"]; ok {
		t.Error("history entry includes details")
	}
	// newest record first: the scam analysis was stored last
	if page.Tests[0]["testType"] != "scam" {
		t.Errorf("first entry type = %v, want scam", page.Tests[0]["testType"])
	}

	// page 2 holds the remaining 3 records, disjoint from page 1,
	// and the concatenation stays newest-first
	_, env = doJSON(t, http.MethodGet, srv.URL+"/api/tests/history?page=2", token, nil)
	var page2 struct {
		Tests      []map[string]any `json:"tests"`
		Pagination struct {
			Current int `json:"current"`
			Count   int `json:"count"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &page2); err != nil {
		t.Fatal(err)
	}
	if len(page2.Tests) != 3 || page2.Pagination.Current != 2 {
		t.Errorf("page 2 = %+v (len %d)", page2.Pagination, len(page2.Tests))
	}
	seen := map[string]bool{}
	var prev time.Time
	for i, row := range append(append([]map[string]any{}, page.Tests...), page2.Tests...) {
		id, _ := row["id"].(string)
		if id == "" || seen[id] {
			t.Fatalf("row %d: duplicate or missing id %q across pages", i, id)
		}
		seen[id] = true
		created, err := time.Parse(time.RFC3339Nano, row["createdAt"].(string))
		if err != nil {
			t.Fatalf("row %d: bad createdAt: %v", i, err)
		}
		if i > 0 && created.After(prev) {
			t.Errorf("row %d newer than row %d: history not newest-first", i, i-1)
		}
		prev = created
	}
	if len(seen) != 13 {
		t.Errorf("pages cover %d distinct records, want 13", len(seen))
	}

	// type filter
	_, env = doJSON(t, http.MethodGet, srv.URL+"/api/tests/history?testType=scam", token, nil)
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatal(err)
	}
	if page.Pagination.TotalTests != 1 {
		t.Errorf("scam filter totalTests = %d, want 1", page.Pagination.TotalTests)
	}

	// unknown type filter is ignored, not an error
	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/tests/history?testType=bogus", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bogus filter: %d", resp.StatusCode)
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatal(err)
	}
	if page.Pagination.TotalTests != 13 {
		t.Errorf("bogus filter totalTests = %d, want 13", page.Pagination.TotalTests)
	}
}

func TestRouter_Stats(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signup(t, srv.URL, "alice@example.com")

	// one detected file (score 80) and one clean one (score 0)
	for _, rec := range []map[string]any{
		{"fileName": "bad.exe", "testType": "malware", "result": map[string]any{"positives": 48, "total": 60}},
		{"fileName": "ok.txt", "testType": "malware", "result": map[string]any{"positives": 0, "total": 5}},
	} {
		if _, env := doJSON(t, http.MethodPost, srv.URL+"/api/malware/store", token, rec); !env.Success {
			t.Fatalf("store: %s", env.Error)
		}
	}

	_, env := doJSON(t, http.MethodGet, srv.URL+"/api/tests/stats", token, nil)
	var report tests.StatsReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatal(err)
	}
	if report.TotalTests != 2 {
		t.Errorf("TotalTests = %d, want 2", report.TotalTests)
	}
	if len(report.ByType) != 1 || report.ByType[0].Count != 2 || report.ByType[0].ThreatsFound != 1 {
		t.Errorf("ByType = %+v", report.ByType)
	}
	if report.ByType[0].AvgRiskScore != 40 {
		t.Errorf("AvgRiskScore = %v, want 40 (mean of 80 and 0)", report.ByType[0].AvgRiskScore)
	}
	if report.Summary.TotalThreats != 1 {
		t.Errorf("TotalThreats = %d, want 1", report.Summary.TotalThreats)
	}
	if report.ByType[0].LastTest.After(time.Now().Add(time.Minute)) {
		t.Errorf("LastTest in the future: %v", report.ByType[0].LastTest)
	}
}

func TestRouter_EnvelopeShape(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/phishing/analyze-simple", "", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if env.Success || env.Error == "" {
		t.Errorf("error envelope = %+v", env)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}
