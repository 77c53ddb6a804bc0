// Package api is the HTTP surface of the scanner: scan preview and run,
// history, profile, filters, and skills. Rendering is the client's job:
// handlers return data, never markup.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/p-shah256/careerfit/pkg/errors"
	"github.com/p-shah256/careerfit/pkg/logger"
	"github.com/p-shah256/careerfit/pkg/types"

	"github.com/p-shah256/careerfit/internal/extract"
	"github.com/p-shah256/careerfit/internal/fetch"
	"github.com/p-shah256/careerfit/internal/history"
	"github.com/p-shah256/careerfit/internal/llm"
	"github.com/p-shah256/careerfit/internal/profile"
	"github.com/p-shah256/careerfit/internal/scan"
	"github.com/p-shah256/careerfit/internal/site"
	"github.com/p-shah256/careerfit/internal/skills"
)

type Server struct {
	port     int
	fetcher  *fetch.Fetcher
	llm      *llm.Client
	runner   *scan.Runner
	hist     *history.Store
	skills   *skills.Store
	profiles *profile.Store
	scanCfg  scan.Config
}

func NewServer(port int, fetcher *fetch.Fetcher, llmClient *llm.Client, hist *history.Store, skillStore *skills.Store, profiles *profile.Store, scanCfg scan.Config) *Server {
	return &Server{
		port:     port,
		fetcher:  fetcher,
		llm:      llmClient,
		runner:   scan.NewRunner(),
		hist:     hist,
		skills:   skillStore,
		profiles: profiles,
		scanCfg:  scanCfg,
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.wrap(s.handleHealth, http.MethodGet))
	mux.HandleFunc("/api/scan/preview", s.wrap(s.handleScanPreview, http.MethodPost))
	mux.HandleFunc("/api/scan/run", s.wrap(s.handleScanRun, http.MethodPost))
	mux.HandleFunc("/api/summarize", s.wrap(s.handleSummarize, http.MethodPost))
	mux.HandleFunc("/api/history", s.wrap(s.handleHistory, http.MethodGet))
	mux.HandleFunc("/api/history/status", s.wrap(s.handleHistoryStatus, http.MethodPost))
	mux.HandleFunc("/api/history/clear", s.wrap(s.handleHistoryClear, http.MethodPost))
	mux.HandleFunc("/api/profile", s.wrap(s.handleProfile, http.MethodGet))
	mux.HandleFunc("/api/profile/analyze", s.wrap(s.handleProfileAnalyze, http.MethodPost))
	mux.HandleFunc("/api/filters", s.wrap(s.handleFilters, http.MethodGet, http.MethodPut))
	mux.HandleFunc("/api/searches", s.wrap(s.handleSearches, http.MethodGet, http.MethodPut))
	mux.HandleFunc("/api/skills", s.wrap(s.handleSkills, http.MethodGet, http.MethodPost))
	mux.HandleFunc("/api/skills/learned", s.wrap(s.handleSkillLearned, http.MethodPost))

	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("starting API server", "port", s.port)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) wrap(h http.HandlerFunc, methods ...string) http.HandlerFunc {
	return RequestID(Logger(Recover(CORS(MethodChecker(methods...)(h)))))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "careerfit"})
}

// =============== scan ===============

type scanPreviewRequest struct {
	URL string `json:"url"`
}

type scanPreviewResponse struct {
	Site    string             `json:"site"`
	Message string             `json:"message,omitempty"`
	Outcome scan.FilterOutcome `json:"outcome"`
	State   string             `json:"state"`
}

// handleScanPreview fetches the search page, extracts candidates and runs
// the quick filter. Nothing is scored until /api/scan/run confirms.
func (s *Server) handleScanPreview(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())

	var req scanPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		RespondWithError(w, apierrors.ErrBadRequest("Body must be JSON with a non-empty \"url\"").WithRequestID(requestID))
		return
	}

	cfg, ok := site.LookupURL(req.URL)
	if !ok {
		RespondWithError(w, apierrors.ErrBadRequest("This site is not configured for scanning").WithRequestID(requestID))
		return
	}
	if !cfg.IsSearchPage(req.URL) {
		RespondWithError(w, apierrors.ErrBadRequest("Not a search-results page on "+cfg.Site.String()).WithRequestID(requestID))
		return
	}

	prof, filters, err := s.profiles.LoadProfileAndFilters()
	if err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()).WithRequestID(requestID))
		return
	}
	if prof == nil {
		RespondWithError(w, apierrors.ErrPreconditionFailed("No candidate profile. Analyze your resume first.").WithRequestID(requestID))
		return
	}

	doc, err := s.fetcher.Page(r.Context(), req.URL)
	if err != nil {
		RespondWithError(w, apierrors.ErrBadRequest("Failed to fetch page: "+err.Error()).WithRequestID(requestID))
		return
	}

	candidates := extract.Listings(doc, cfg, req.URL)
	if len(candidates) == 0 {
		RespondWithJSON(w, http.StatusOK, scanPreviewResponse{
			Site:    cfg.Site.String(),
			Message: "No listings found on this page",
			State:   scan.StateComplete.String(),
		})
		return
	}

	sess, err := s.runner.Begin(s.scanCfg)
	if err != nil {
		RespondWithError(w, apierrors.ErrConflict(err.Error()).WithRequestID(requestID))
		return
	}
	outcome, err := sess.Filter(candidates, prof, filters)
	if err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()).WithRequestID(requestID))
		return
	}

	resp := scanPreviewResponse{Site: cfg.Site.String(), Outcome: outcome, State: sess.State().String()}
	if outcome.ToScore == 0 {
		resp.Message = "0 jobs to score after quick filter"
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// handleScanRun is the confirmation step: it scores the pending session.
// The request context is the cancellation token: a client that disconnects
// aborts the loop at the next check, and partial results are still flushed.
func (s *Server) handleScanRun(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())

	summary, err := s.runner.Run(r.Context(), s.llm, s.hist)
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrScanInFlight):
			RespondWithError(w, apierrors.ErrConflict("A scan is already running").WithRequestID(requestID))
		case errors.Is(err, scan.ErrWrongState):
			RespondWithError(w, apierrors.ErrPreconditionFailed("No scan awaiting confirmation. Preview first.").WithRequestID(requestID))
		default:
			RespondWithError(w, apierrors.ErrInternalServer(err.Error()).WithRequestID(requestID))
		}
		return
	}
	RespondWithJSON(w, http.StatusOK, summary)
}

// =============== summarize ===============

type summarizeRequest struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Link    string `json:"link"`
	HTML    string `json:"html"`
}

// handleSummarize runs the summarize-only action: a role digest is stored
// on the history record without any fit score.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())

	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.HTML == "" {
		RespondWithError(w, apierrors.ErrBadRequest("Body must be JSON with \"title\" and \"html\"").WithRequestID(requestID))
		return
	}
	if req.Company == "" {
		req.Company = "Unknown"
	}

	summary, err := s.llm.SummarizeRole(r.Context(), req.HTML)
	if err != nil {
		RespondWithError(w, apierrors.ErrScoringFailed(err.Error()).WithRequestID(requestID))
		return
	}

	rec, err := s.hist.Upsert(types.JobRecord{
		ID:        types.Fingerprint(req.Title, req.Company, req.Link),
		Title:     req.Title,
		Company:   req.Company,
		Link:      req.Link,
		Summary:   summary,
		Status:    types.StatusScanned,
		ScannedAt: time.Now(),
	})
	if err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()).WithRequestID(requestID))
		return
	}
	RespondWithJSON(w, http.StatusOK, rec)
}

// =============== history ===============

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("status"); status != "" {
		if !types.ValidStatus(types.JobStatus(status)) {
			RespondWithError(w, apierrors.ErrBadRequest("Unknown status "+status))
			return
		}
		RespondWithJSON(w, http.StatusOK, s.hist.ByStatus(types.JobStatus(status)))
		return
	}
	RespondWithJSON(w, http.StatusOK, s.hist.All())
}

type statusRequest struct {
	ID     string          `json:"id"`
	Status types.JobStatus `json:"status"`
	Notes  string          `json:"notes,omitempty"`
}

func (s *Server) handleHistoryStatus(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		RespondWithError(w, apierrors.ErrBadRequest("Body must be JSON with \"id\" and \"status\"").WithRequestID(requestID))
		return
	}
	if !types.ValidStatus(req.Status) {
		RespondWithError(w, apierrors.ErrBadRequest("Unknown status "+string(req.Status)).WithRequestID(requestID))
		return
	}

	rec, found, err := s.hist.SetStatus(req.ID, req.Status, req.Notes)
	if err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()).WithRequestID(requestID))
		return
	}
	if !found {
		RespondWithError(w, apierrors.ErrNotFound("No job with id "+req.ID).WithRequestID(requestID))
		return
	}
	RespondWithJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.hist.Clear(); err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()))
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// =============== profile & filters ===============

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	prof, err := s.profiles.LoadProfile()
	if err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()))
		return
	}
	if prof == nil {
		RespondWithError(w, apierrors.ErrNotFound("No candidate profile yet"))
		return
	}
	RespondWithJSON(w, http.StatusOK, prof)
}

type analyzeRequest struct {
	Resume string `json:"resume,omitempty"`
	Force  bool   `json:"force,omitempty"`
}

// handleProfileAnalyze extracts the candidate profile from the resume.
// An unchanged resume is not re-analyzed unless force is set; the analysis
// call costs tokens.
func (s *Server) handleProfileAnalyze(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())

	var req analyzeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	resume := req.Resume
	if resume == "" {
		stored, err := s.profiles.LoadResume()
		if err != nil {
			RespondWithError(w, apierrors.ErrInternalServer(err.Error()).WithRequestID(requestID))
			return
		}
		resume = stored
	}
	if resume == "" {
		RespondWithError(w, apierrors.ErrBadRequest("No resume provided or stored").WithRequestID(requestID))
		return
	}

	if !req.Force && !s.profiles.ResumeChanged(resume) {
		if prof, _ := s.profiles.LoadProfile(); prof != nil {
			slog.Info("resume unchanged, returning cached profile", "analyzed_at", prof.AnalyzedAt)
			RespondWithJSON(w, http.StatusOK, prof)
			return
		}
	}

	prof, err := s.llm.AnalyzeResume(r.Context(), resume)
	if err != nil {
		RespondWithError(w, apierrors.ErrScoringFailed(err.Error()).WithRequestID(requestID))
		return
	}

	if err := s.profiles.SaveResume(resume); err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()).WithRequestID(requestID))
		return
	}
	if err := s.profiles.SaveProfile(prof); err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()).WithRequestID(requestID))
		return
	}
	if err := s.profiles.MarkAnalyzed(resume); err != nil {
		slog.Warn("failed to record resume hash", "error", err)
	}
	RespondWithJSON(w, http.StatusOK, prof)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		filters, err := s.profiles.LoadFilters()
		if err != nil {
			RespondWithError(w, apierrors.ErrInternalServer(err.Error()))
			return
		}
		if filters == nil {
			filters = &types.HardFilters{}
		}
		RespondWithJSON(w, http.StatusOK, filters)
		return
	}

	var filters types.HardFilters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		RespondWithError(w, apierrors.ErrBadRequest("Body must be a JSON hard-filters object"))
		return
	}
	if err := s.profiles.SaveFilters(&filters); err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()))
		return
	}
	RespondWithJSON(w, http.StatusOK, filters)
}

func (s *Server) handleSearches(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		urls, err := s.profiles.LoadSearches()
		if err != nil {
			RespondWithError(w, apierrors.ErrInternalServer(err.Error()))
			return
		}
		RespondWithJSON(w, http.StatusOK, urls)
		return
	}

	var urls []string
	if err := json.NewDecoder(r.Body).Decode(&urls); err != nil {
		RespondWithError(w, apierrors.ErrBadRequest("Body must be a JSON array of search URLs"))
		return
	}
	for _, u := range urls {
		if _, ok := site.LookupURL(u); !ok {
			RespondWithError(w, apierrors.ErrBadRequest("Unconfigured site: "+u))
			return
		}
	}
	if err := s.profiles.SaveSearches(urls); err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()))
		return
	}
	RespondWithJSON(w, http.StatusOK, urls)
}

// =============== skills ===============

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		RespondWithJSON(w, http.StatusOK, s.skills.All())
		return
	}

	var skill types.SkillToLearn
	if err := json.NewDecoder(r.Body).Decode(&skill); err != nil || skill.Skill == "" {
		RespondWithError(w, apierrors.ErrBadRequest("Body must be JSON with a non-empty \"skill\""))
		return
	}
	stored, err := s.skills.Upsert(skill)
	if err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()))
		return
	}
	RespondWithJSON(w, http.StatusOK, stored)
}

type learnedRequest struct {
	Skill   string `json:"skill"`
	Learned bool   `json:"learned"`
}

func (s *Server) handleSkillLearned(w http.ResponseWriter, r *http.Request) {
	var req learnedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Skill == "" {
		RespondWithError(w, apierrors.ErrBadRequest("Body must be JSON with a non-empty \"skill\""))
		return
	}
	stored, found, err := s.skills.MarkLearned(req.Skill, req.Learned)
	if err != nil {
		RespondWithError(w, apierrors.ErrInternalServer(err.Error()))
		return
	}
	if !found {
		RespondWithError(w, apierrors.ErrNotFound("No saved skill "+req.Skill))
		return
	}
	RespondWithJSON(w, http.StatusOK, stored)
}
