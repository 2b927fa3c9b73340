package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appanalyzer "github.com/Samith-P/ciphercopdemo/internal/application/analyzer"
	appauth "github.com/Samith-P/ciphercopdemo/internal/application/auth"
	apphistory "github.com/Samith-P/ciphercopdemo/internal/application/history"
	"github.com/Samith-P/ciphercopdemo/internal/domain/scoring"
	"github.com/Samith-P/ciphercopdemo/internal/domain/tests"
	"github.com/Samith-P/ciphercopdemo/internal/middleware"
)

type Router struct {
	analyzer *appanalyzer.Service
	history  *apphistory.Service
	auth     *appauth.Service
}

// NewRouter wires every endpoint. Auth-protected routes sit behind the
// session middleware; the simple phishing endpoint and the auth
// endpoints themselves do not.
func NewRouter(analyzerSvc *appanalyzer.Service, historySvc *apphistory.Service, authSvc *appauth.Service) http.Handler {
	r := &Router{analyzer: analyzerSvc, history: historySvc, auth: authSvc}
	mux := chi.NewRouter()

	mux.Post("/signup", r.wrap(r.handleSignup))
	mux.Post("/login", r.wrap(r.handleLogin))
	mux.Post("/logout", r.wrap(r.handleLogout))

	mux.Post("/api/phishing/analyze-simple", r.wrap(r.handleAnalyzeSimple))

	mux.Group(func(g chi.Router) {
		g.Use(middleware.SessionAuth(r.auth))

		g.Get("/checkAuth", r.wrap(r.handleCheckAuth))

		g.Post("/api/phishing/analyze", r.wrap(r.handleAnalyzeURL))
		g.Post("/api/phishing/analyze-email", r.wrap(r.handleAnalyzeEmail))

		g.Post("/api/malware/store", r.wrap(r.handleMalwareStore))
		g.Post("/api/malware/analyze", r.wrap(r.handleMalwareAnalyze))
		g.Post("/api/clone/analyze", r.wrap(r.handleCloneAnalyze))
		g.Post("/api/scam/analyze", r.wrap(r.handleScamAnalyze))

		// /api/tests/stats must register before /api/tests/{id}
		g.Get("/api/tests/history", r.wrap(r.handleHistory))
		g.Get("/api/tests/stats", r.wrap(r.handleStats))
		g.Get("/api/tests/{id}", r.wrap(r.handleDetail))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeError(w, statusFor(err), err.Error())
		}
	}
}

//
// ==== AUTH ====
//

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return tests.ErrMissingInput
	}
	u, sess, err := r.auth.Signup(req.Context(), appauth.SignupCommand{
		Email: body.Email, Username: body.Username, Password: body.Password,
	})
	if err != nil {
		return err
	}
	setSessionCookie(w, sess.Token, sess.ExpiresAt)
	return writeData(w, map[string]any{
		"user":      u,
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return tests.ErrMissingInput
	}
	u, sess, err := r.auth.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		return err
	}
	setSessionCookie(w, sess.Token, sess.ExpiresAt)
	return writeData(w, map[string]any{
		"user":      u,
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
	})
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) error {
	if token := middleware.TokenFromRequest(req); token != "" {
		if err := r.auth.Logout(req.Context(), token); err != nil {
			return err
		}
	}
	clearSessionCookie(w)
	return writeData(w, map[string]any{"message": "logged out"})
}

func (r *Router) handleCheckAuth(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	return writeData(w, map[string]any{"message": "User is authenticated", "user": u})
}

//
// ==== ANALYSIS ====
//

func (r *Router) handleAnalyzeURL(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.URL == "" {
		return tests.ErrMissingInput
	}
	middleware.IncrementAnalyses()
	out, err := r.analyzer.AnalyzeURL(req.Context(), u.ID, body.URL, true)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeData(w, out)
}

// handleAnalyzeSimple is the unauthenticated extension variant: same
// pipeline, abbreviated response, never persisted.
func (r *Router) handleAnalyzeSimple(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.URL == "" {
		return tests.ErrMissingInput
	}
	out, err := r.analyzer.AnalyzeURL(req.Context(), "", body.URL, false)
	if err != nil {
		return err
	}
	summary := "Analysis completed"
	if out.AI != nil && out.AI.Enabled && out.AI.Insights != "" {
		summary = out.AI.Insights
	}
	return writeData(w, map[string]any{
		"url":         out.URL,
		"domain":      out.Domain,
		"isPhishing":  out.IsPhishing,
		"threatLevel": out.ThreatLevel,
		"riskScore":   out.RiskScore,
		"flags":       out.Flags,
		"summary":     summary,
	})
}

func (r *Router) handleAnalyzeEmail(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Content == "" {
		return tests.ErrMissingInput
	}
	out, err := r.analyzer.AnalyzeEmail(req.Context(), u.ID, body.Content)
	if err != nil {
		return err
	}
	return writeData(w, out)
}

func (r *Router) handleMalwareStore(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	var body struct {
		FileName string               `json:"fileName"`
		TestType tests.TestType       `json:"testType"`
		Result   *scoring.ScanOutcome `json:"result"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return tests.ErrMissingInput
	}
	if body.FileName == "" || body.TestType == "" || body.Result == nil {
		return tests.ErrMissingInput
	}
	id, err := r.analyzer.StoreScan(req.Context(), u.ID, body.FileName, body.TestType, *body.Result)
	if err != nil {
		return err
	}
	return writeData(w, map[string]any{
		"testId":  id,
		"message": string(body.TestType) + " test result stored successfully",
	})
}

func (r *Router) handleMalwareAnalyze(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	var body struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.FileName == "" {
		return tests.ErrMissingInput
	}
	middleware.IncrementAnalyses()
	rec, err := r.analyzer.AnalyzeMalware(req.Context(), u.ID, body.FileName)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeData(w, resultView(rec, true))
}

func (r *Router) handleCloneAnalyze(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	var body struct {
		URL   string `json:"url"`
		Brand string `json:"brand"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.URL == "" {
		return tests.ErrMissingInput
	}
	middleware.IncrementAnalyses()
	rec, err := r.analyzer.AnalyzeClone(req.Context(), u.ID, body.URL, body.Brand)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeData(w, resultView(rec, true))
}

func (r *Router) handleScamAnalyze(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Content == "" {
		return tests.ErrMissingInput
	}
	middleware.IncrementAnalyses()
	rec, err := r.analyzer.AnalyzeScam(req.Context(), u.ID, body.Content)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeData(w, resultView(rec, true))
}

//
// ==== HISTORY / STATS / DETAIL ====
//

func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	testType := tests.TestType(req.URL.Query().Get("testType"))

	result, err := r.history.History(req.Context(), u.ID, tests.HistoryFilter{
		TestType: testType, Page: page, Limit: limit,
	})
	if err != nil {
		return err
	}

	views := make([]map[string]any, 0, len(result.Data))
	for _, t := range result.Data {
		views = append(views, resultView(t, false))
	}
	return writeData(w, map[string]any{
		"tests": views,
		"pagination": map[string]any{
			"current":    result.Page,
			"total":      result.TotalPages,
			"count":      result.Count,
			"totalTests": result.Total,
		},
	})
}

func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	report, err := r.history.Stats(req.Context(), u.ID)
	if err != nil {
		return err
	}
	return writeData(w, report)
}

func (r *Router) handleDetail(w http.ResponseWriter, req *http.Request) error {
	u := middleware.UserFromContext(req.Context())
	id := chi.URLParam(req, "id")

	rec, err := r.history.Detail(req.Context(), u.ID, tests.ResultID(id))
	if err != nil {
		return err
	}
	return writeData(w, resultView(rec, true))
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
