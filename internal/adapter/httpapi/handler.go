package httpapi

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/repository"
	"github.com/eslsoft/shelfd/internal/usecase"
)

// Handler exposes the reconciliation, record and ranking operations over a
// small JSON API.
type Handler struct {
	records  usecase.RecordService
	ranking  usecase.RankingService
	importer usecase.ImportService
	lists    repository.ListRepository
	logger   logrus.FieldLogger
}

// NewHandler wires the usecase services into an HTTP handler.
func NewHandler(
	records usecase.RecordService,
	ranking usecase.RankingService,
	importer usecase.ImportService,
	lists repository.ListRepository,
	logger logrus.FieldLogger,
) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		records:  records,
		ranking:  ranking,
		importer: importer,
		lists:    lists,
		logger:   logger,
	}
}

// Router builds the route table with access logging and panic recovery.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/imports", h.importBatch)
	mux.HandleFunc("GET /api/v1/exports", h.exportAll)

	mux.HandleFunc("PUT /api/v1/users/{userID}/records/{workID}", h.applyRecord)
	mux.HandleFunc("GET /api/v1/users/{userID}/records/{workID}", h.getRecord)

	mux.HandleFunc("POST /api/v1/lists", h.createList)
	mux.HandleFunc("GET /api/v1/lists/{listID}/entries", h.listEntries)
	mux.HandleFunc("POST /api/v1/lists/{listID}/entries", h.addEntry)
	mux.HandleFunc("DELETE /api/v1/lists/{listID}/entries/{workID}", h.removeEntry)
	mux.HandleFunc("PUT /api/v1/lists/{listID}/ranks", h.reorder)
	mux.HandleFunc("PUT /api/v1/lists/{listID}/visibility", h.setVisibility)

	return AccessLog(h.logger, Recovery(h.logger, mux))
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

func queryID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return id, err == nil && id > 0
}

// importBatch ingests a CSV body. The batch is best effort; the response
// reports per-row outcomes.
func (h *Handler) importBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(r, "user_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_argument", "user_id query parameter is required")
		return
	}
	lang := entity.ParseLanguage(r.URL.Query().Get("lang"))

	report, err := h.importer.ImportBatch(r.Context(), r.Body, userID, usecase.DefaultFieldMapping(), lang)
	if err != nil {
		// A header that cannot be parsed is a caller mistake; everything
		// else goes through the domain mapping (infrastructure -> 500).
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) exportAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(r, "user_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_argument", "user_id query parameter is required")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="records.csv"`)
	if err := h.importer.ExportAll(r.Context(), userID, w); err != nil {
		h.logger.WithError(err).Error("export failed")
	}
}

type recordPayload struct {
	ReadDate      *string  `json:"read_date"`
	ClearReadDate bool     `json:"clear_read_date"`
	Rating        *float64 `json:"rating"`
	Review        *string  `json:"review"`
}

type recordResponse struct {
	UserID   int64    `json:"user_id"`
	WorkID   int64    `json:"work_id"`
	Read     bool     `json:"read"`
	ReadDate *string  `json:"read_date,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	Review   string   `json:"review,omitempty"`
}

func toRecordResponse(record *entity.PersonalRecord) recordResponse {
	resp := recordResponse{
		UserID: record.UserID,
		WorkID: record.WorkID,
		Read:   record.IsRead(),
		Rating: record.Rating,
		Review: record.Review,
	}
	if record.ReadDate != nil {
		formatted := record.ReadDate.Format("2006-01-02")
		resp.ReadDate = &formatted
	}
	return resp
}

func (h *Handler) applyRecord(w http.ResponseWriter, r *http.Request) {
	userID, okUser := pathID(r, "userID")
	workID, okWork := pathID(r, "workID")
	if !okUser || !okWork {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid user or work id")
		return
	}

	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}

	patch := entity.RecordPatch{
		ClearReadDate: payload.ClearReadDate,
		Rating:        payload.Rating,
		Review:        payload.Review,
	}
	if payload.ReadDate != nil {
		parsed, err := time.Parse("2006-01-02", *payload.ReadDate)
		if err != nil {
			writeDomainError(w, entity.ErrDateUnparseable)
			return
		}
		patch.ReadDate = &parsed
	}

	record, err := h.records.Apply(r.Context(), userID, workID, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	userID, okUser := pathID(r, "userID")
	workID, okWork := pathID(r, "workID")
	if !okUser || !okWork {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid user or work id")
		return
	}

	record, err := h.records.Get(r.Context(), userID, workID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

type createListPayload struct {
	OwnerID     *int64            `json:"owner_id"`
	Name        map[string]string `json:"name"`
	Description map[string]string `json:"description"`
}

type listResponse struct {
	ID          int64             `json:"id"`
	OwnerID     *int64            `json:"owner_id,omitempty"`
	Public      bool              `json:"public"`
	Name        map[string]string `json:"name"`
	Description map[string]string `json:"description,omitempty"`
}

func toLocalized(m map[string]string) entity.LocalizedString {
	out := make(entity.LocalizedString, len(m))
	for code, v := range m {
		out[entity.Language(code)] = v
	}
	return out
}

func fromLocalized(ls entity.LocalizedString) map[string]string {
	out := make(map[string]string, len(ls))
	for lang, v := range ls {
		out[lang.Code()] = v
	}
	return out
}

func (h *Handler) createList(w http.ResponseWriter, r *http.Request) {
	var payload createListPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}
	list := &entity.RankedList{
		OwnerID:     payload.OwnerID,
		Name:        toLocalized(payload.Name),
		Description: toLocalized(payload.Description),
	}
	if list.Name.IsBlank() {
		writeError(w, http.StatusBadRequest, "invalid_argument", "list name is required")
		return
	}
	list.Normalize(time.Now())

	created, err := h.lists.Create(r.Context(), list)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listResponse{
		ID:          created.ID,
		OwnerID:     created.OwnerID,
		Public:      created.IsPublic(),
		Name:        fromLocalized(created.Name),
		Description: fromLocalized(created.Description),
	})
}

type entryResponse struct {
	WorkID int64 `json:"work_id"`
	Rank   int32 `json:"rank"`
	Ranked bool  `json:"ranked"`
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid list id")
		return
	}
	entries, err := h.ranking.Entries(r.Context(), listID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(entries, func(e entity.ListEntry, _ int) entryResponse {
		return entryResponse{WorkID: e.WorkID, Rank: e.Rank, Ranked: e.IsRanked()}
	}))
}

type addEntryPayload struct {
	WorkID int64 `json:"work_id"`
}

func (h *Handler) addEntry(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid list id")
		return
	}
	var payload addEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.WorkID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "work_id is required")
		return
	}

	entry, err := h.ranking.AddWork(r.Context(), listID, payload.WorkID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entryResponse{WorkID: entry.WorkID, Rank: entry.Rank, Ranked: entry.IsRanked()})
}

func (h *Handler) removeEntry(w http.ResponseWriter, r *http.Request) {
	listID, okList := pathID(r, "listID")
	workID, okWork := pathID(r, "workID")
	if !okList || !okWork {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid list or work id")
		return
	}
	if err := h.ranking.RemoveWork(r.Context(), listID, workID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderPayload struct {
	WorkIDs []int64 `json:"work_ids"`
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid list id")
		return
	}
	var payload reorderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}
	if err := h.ranking.Reorder(r.Context(), listID, payload.WorkIDs); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type visibilityPayload struct {
	OwnerID *int64 `json:"owner_id"`
}

func (h *Handler) setVisibility(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "listID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid list id")
		return
	}
	var payload visibilityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "malformed request body")
		return
	}
	if err := h.ranking.SetVisibility(r.Context(), listID, payload.OwnerID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
