package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"botanize/internal/entitlement"
	"botanize/internal/journal"
	"botanize/internal/logging"
	"botanize/internal/quota"
	"botanize/internal/recognition"
	"botanize/internal/session"
	"botanize/internal/traits"
)

const (
	maxImageBytes      = 16 << 20
	defaultSearchLimit = 20
)

func (s *Server) handleOrgans(c *gin.Context) {
	organs := traits.Organs()
	out := make([]OrganSummary, 0, len(organs))
	for _, organ := range organs {
		out = append(out, OrganSummary{Organ: string(organ), Questions: len(traits.QuestionsFor(organ))})
	}
	c.JSON(http.StatusOK, gin.H{"organs": out})
}

func (s *Server) handleQuestions(c *gin.Context) {
	organ, err := traits.ParseOrgan(c.Param("organ"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	cards := traits.Cards(organ, s.deps.Taxonomy.Vocabulary())
	c.JSON(http.StatusOK, QuestionsResponse{Organ: string(organ), Cards: FromCards(cards)})
}

func (s *Server) handleObserve(c *gin.Context) {
	var req ObserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	organ, err := traits.ParseOrgan(req.Organ)
	if err != nil || organ == traits.OrganAuto {
		writeError(c, http.StatusBadRequest, "observe needs one of: leaf, flower, fruit, bark")
		return
	}
	selection, err := ToSelection(req.Answers)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Save && !s.allowJournal(c) {
		return
	}

	results := s.deps.Matcher.Match(selection, traits.QuestionsFor(organ))
	resp := ObserveResponse{}
	if req.Save && len(results) > 0 {
		entry, err := s.deps.Journal.Add(c.Request.Context(), session.ObservationEntry(results[0], selection))
		if err != nil {
			s.internalError(c, "save journal entry", err)
			return
		}
		converted := FromJournalEntry(entry)
		resp.Entry = &converted
	}
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	resp.Results = FromObserveResults(results)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAdjust(c *gin.Context) {
	if !s.deps.Gate.Allows(entitlement.FeatureBothMode) {
		writeError(c, http.StatusForbidden, "both mode requires a paid tier")
		return
	}
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	organ, err := traits.ParseOrgan(req.Organ)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	verified, err := ToSelection(req.Verified)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	ranked := s.deps.Adjuster.Rank(ToCandidates(req.Candidates), verified, traits.QuestionsFor(organ))
	c.JSON(http.StatusOK, AdjustResponse{Results: FromAdjusted(ranked)})
}

func (s *Server) handleIdentify(c *gin.Context) {
	if s.deps.Identifier == nil {
		writeError(c, http.StatusServiceUnavailable, "photo identification is not configured")
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		writeError(c, http.StatusBadRequest, "multipart field \"image\" is required")
		return
	}
	if header.Size > maxImageBytes {
		writeError(c, http.StatusRequestEntityTooLarge, "image is too large")
		return
	}
	file, err := header.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable image")
		return
	}
	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	_ = file.Close()
	if err != nil {
		writeError(c, http.StatusBadRequest, "unreadable image")
		return
	}

	organ := traits.OrganAuto
	if raw := strings.TrimSpace(c.PostForm("organ")); raw != "" {
		if organ, err = traits.ParseOrgan(raw); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	var verified traits.Selection
	if raw := strings.TrimSpace(c.PostForm("verified")); raw != "" {
		var answers map[string]string
		if err := json.Unmarshal([]byte(raw), &answers); err != nil {
			writeError(c, http.StatusBadRequest, "verified must be a JSON object")
			return
		}
		if verified, err = ToSelection(answers); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	save, _ := strconv.ParseBool(c.DefaultPostForm("save", "false"))

	result, err := s.deps.Identifier.Identify(c.Request.Context(), session.IdentifyRequest{
		Request:  recognition.Request{Image: image, Filename: header.Filename, Organ: organ},
		Verified: verified,
		Save:     save,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, FromIdentification(result))
	case errors.Is(err, session.ErrEntitlementRequired):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, recognition.ErrNoImage), errors.Is(err, traits.ErrUnknownOrgan):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		logging.WarnWithContext(s.logger, "identification failed", "identify_failed",
			logging.Error(err),
			logging.String(logging.FieldRequestID, c.GetString(logging.FieldRequestID)),
			logging.String(logging.FieldErrorHint, "check the Pl@ntNet API key and connectivity"),
			logging.String(logging.FieldImpact, "photo not identified"))
		writeError(c, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) handleQuota(c *gin.Context) {
	c.JSON(http.StatusOK, FromQuotaStatus(s.deps.Tracker.Status(c.Request.Context())))
}

func (s *Server) handleQuotaAnswer(c *gin.Context) {
	ctx := c.Request.Context()
	outcome := s.deps.Tracker.RecordAnswer(ctx)
	resp := AnswerResponse{Outcome: outcome.String(), Quota: FromQuotaStatus(s.deps.Tracker.Status(ctx))}
	if outcome == quota.Denied {
		c.JSON(http.StatusPaymentRequired, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSpecies(c *gin.Context) {
	species, ok := s.deps.Taxonomy.Lookup(c.Param("name"))
	if !ok {
		writeError(c, http.StatusNotFound, "species not found")
		return
	}
	if !species.Free && !s.deps.Gate.Allows(entitlement.FeatureAllSpecies) {
		writeError(c, http.StatusForbidden, "full species access requires a paid tier")
		return
	}
	c.JSON(http.StatusOK, FromSpecies(species))
}

func (s *Server) handleSpeciesSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		writeError(c, http.StatusBadRequest, "q is required")
		return
	}
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	hits := s.deps.Taxonomy.Search(query, limit)
	c.JSON(http.StatusOK, SpeciesSearchResponse{
		Query: query,
		Hits:  FromSearchHits(hits, s.deps.Gate.Allows(entitlement.FeatureAllSpecies)),
	})
}

func (s *Server) handleJournalList(c *gin.Context) {
	if !s.allowJournal(c) {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries, err := s.deps.Journal.List(c.Request.Context(), limit)
	if err != nil {
		s.internalError(c, "list journal", err)
		return
	}
	out := make([]JournalEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromJournalEntry(e))
	}
	c.JSON(http.StatusOK, JournalListResponse{Entries: out})
}

func (s *Server) handleJournalDelete(c *gin.Context) {
	if !s.allowJournal(c) {
		return
	}
	err := s.deps.Journal.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, journal.ErrNotFound) {
		writeError(c, http.StatusNotFound, "journal entry not found")
		return
	}
	if err != nil {
		s.internalError(c, "delete journal entry", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) allowJournal(c *gin.Context) bool {
	if !s.deps.Gate.Allows(entitlement.FeatureJournal) {
		writeError(c, http.StatusForbidden, "the journal requires a paid tier")
		return false
	}
	if s.deps.Journal == nil {
		writeError(c, http.StatusServiceUnavailable, "the journal is disabled")
		return false
	}
	return true
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.logger.Error(op+" failed",
		logging.Error(err),
		logging.String(logging.FieldRequestID, c.GetString(logging.FieldRequestID)))
	writeError(c, http.StatusInternalServerError, op+" failed")
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
