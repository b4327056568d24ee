// Package api serves the public read API and the vote and translate actions.
// Routes are mounted under /api/ on the health server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/kenter-news-bot/internal/core/domain"
	coreerrors "github.com/lueurxax/kenter-news-bot/internal/core/errors"
	"github.com/lueurxax/kenter-news-bot/internal/core/llm"
	"github.com/lueurxax/kenter-news-bot/internal/platform/observability"
	db "github.com/lueurxax/kenter-news-bot/internal/storage"
)

const (
	maxBodyBytes        = 64 << 10
	maxTranslateRunes   = 5000
	defaultTargetLang   = "en"
	queryParamCategory  = "category"
	queryParamQuery     = "q"
	queryParamLimit     = "limit"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json; charset=utf-8"
	errMsgInternal      = "internal error"
	errMsgCategoryParam = "category is required"
)

// Repository is the storage surface the API reads and votes through.
type Repository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListLiveItems(ctx context.Context, category string) ([]domain.LiveItem, error)
	ListAllLiveItems(ctx context.Context) ([]domain.LiveItem, error)
	GetRankings(ctx context.Context, category string) ([]domain.Ranking, error)
	ListTrendingKeywords(ctx context.Context) ([]domain.TrendingKeyword, error)
	SearchArchive(ctx context.Context, query string, limit int) ([]domain.ArchiveEntry, error)
	Vote(ctx context.Context, id, voteType string) (likes, dislikes int, err error)
}

// Compile-time assertion that *db.DB implements Repository.
var _ Repository = (*db.DB)(nil)

// Translator translates free text. The LLM client satisfies it.
type Translator interface {
	TranslateText(ctx context.Context, text, targetLanguage, model string) (string, error)
	GetProviderStatuses() []llm.ProviderStatus
}

type Handler struct {
	repo       Repository
	translator Translator
	logger     *zerolog.Logger
	mux        *http.ServeMux
}

// New builds the API. translator may be nil, which disables /api/translate.
func New(repo Repository, translator Translator, logger *zerolog.Logger) *Handler {
	h := &Handler{
		repo:       repo,
		translator: translator,
		logger:     logger,
		mux:        http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /api/categories", h.handleCategories)
	h.mux.HandleFunc("GET /api/news", h.handleNews)
	h.mux.HandleFunc("POST /api/news/{id}/vote", h.handleVote)
	h.mux.HandleFunc("GET /api/rankings", h.handleRankings)
	h.mux.HandleFunc("GET /api/keywords", h.handleKeywords)
	h.mux.HandleFunc("GET /api/archive", h.handleArchive)
	h.mux.HandleFunc("POST /api/translate", h.handleTranslate)
	h.mux.HandleFunc("GET /api/llm/status", h.handleLLMStatus)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		h.internalError(w, err, "list categories")
		return
	}

	out := make([]categoryDTO, len(categories))
	for i, c := range categories {
		out[i] = categoryDTO{Name: c.Name, SortOrder: c.SortOrder, MaxItems: c.MaxItems}
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleNews(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get(queryParamCategory))

	var (
		items []domain.LiveItem
		err   error
	)

	if category == "" {
		items, err = h.repo.ListAllLiveItems(r.Context())
	} else {
		items, err = h.repo.ListLiveItems(r.Context(), category)
	}

	if err != nil {
		h.internalError(w, err, "list live items")
		return
	}

	out := make([]newsDTO, len(items))
	for i, it := range items {
		out[i] = toNewsDTO(it)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	likes, dislikes, err := h.repo.Vote(r.Context(), r.PathValue("id"), req.Type)
	if err != nil {
		switch {
		case errors.Is(err, coreerrors.ErrInvalidID), errors.Is(err, coreerrors.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, coreerrors.ErrNotFound):
			writeError(w, http.StatusNotFound, "news item not found")
		default:
			h.internalError(w, err, "vote")
		}

		return
	}

	observability.VotesTotal.WithLabelValues(req.Type).Inc()

	writeJSON(w, http.StatusOK, voteResponse{Likes: likes, Dislikes: dislikes})
}

func (h *Handler) handleRankings(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get(queryParamCategory))
	if category == "" {
		writeError(w, http.StatusBadRequest, errMsgCategoryParam)
		return
	}

	rankings, err := h.repo.GetRankings(r.Context(), category)
	if err != nil {
		h.internalError(w, err, "get rankings")
		return
	}

	out := make([]rankingDTO, len(rankings))
	for i, rk := range rankings {
		out[i] = toRankingDTO(rk)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.repo.ListTrendingKeywords(r.Context())
	if err != nil {
		h.internalError(w, err, "list trending keywords")
		return
	}

	out := make([]keywordDTO, len(keywords))
	for i, k := range keywords {
		out[i] = keywordDTO{Rank: k.Rank, Keyword: k.Keyword, Count: k.Count, UpdatedAt: k.UpdatedAt}
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0

	if raw := q.Get(queryParamLimit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}

		limit = n
	}

	entries, err := h.repo.SearchArchive(r.Context(), q.Get(queryParamQuery), limit)
	if err != nil {
		h.internalError(w, err, "search archive")
		return
	}

	out := make([]archiveDTO, len(entries))
	for i, e := range entries {
		out[i] = toArchiveDTO(e)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if h.translator == nil {
		writeError(w, http.StatusServiceUnavailable, "translation unavailable")
		return
	}

	var req translateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if len([]rune(text)) > maxTranslateRunes {
		writeError(w, http.StatusRequestEntityTooLarge, "text too long")
		return
	}

	lang := strings.TrimSpace(req.TargetLang)
	if lang == "" {
		lang = defaultTargetLang
	}

	translated, err := h.translator.TranslateText(r.Context(), text, lang, "")
	if err != nil {
		h.logger.Warn().Err(err).Str("target_lang", lang).Msg("translation failed")
		writeError(w, http.StatusBadGateway, "translation failed")

		return
	}

	writeJSON(w, http.StatusOK, translateResponse{Text: translated, TargetLang: lang})
}

func (h *Handler) handleLLMStatus(w http.ResponseWriter, _ *http.Request) {
	if h.translator == nil {
		writeJSON(w, http.StatusOK, []llm.ProviderStatus{})
		return
	}

	writeJSON(w, http.StatusOK, h.translator.GetProviderStatuses())
}

func (h *Handler) internalError(w http.ResponseWriter, err error, op string) {
	h.logger.Error().Err(err).Str("op", op).Msg("API request failed")
	writeError(w, http.StatusInternalServerError, errMsgInternal)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(target); err != nil {
		return errors.New("invalid JSON body")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
