package handlers

import (
	"net/http"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
)

// TaxonomyHandler manages post categories and tags.
type TaxonomyHandler struct {
	Service       *content.Service
	Env           string
	DefaultLocale locale.Locale
}

func NewTaxonomyHandler(service *content.Service, env string, defaultLocale locale.Locale) *TaxonomyHandler {
	return &TaxonomyHandler{Service: service, Env: env, DefaultLocale: defaultLocale}
}

func (h *TaxonomyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var params content.TaxonomyParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	category, err := h.Service.CreateCategory(r.Context(), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, taxonomyPayload{
		ID: category.ULID, Name: category.Name, NameAr: category.NameAr,
		DisplayName: category.DisplayName(h.DefaultLocale), Slug: category.Slug,
	})
}

func (h *TaxonomyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	items, err := h.Service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	payloads := make([]taxonomyPayload, 0, len(items))
	for _, category := range items {
		payloads = append(payloads, taxonomyPayload{
			ID: category.ULID, Name: category.Name, NameAr: category.NameAr,
			DisplayName: category.DisplayName(l), Slug: category.Slug,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads})
}

func (h *TaxonomyHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteCategory(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaxonomyHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var params content.TaxonomyParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	tag, err := h.Service.CreateTag(r.Context(), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, taxonomyPayload{
		ID: tag.ULID, Name: tag.Name, NameAr: tag.NameAr,
		DisplayName: tag.DisplayName(h.DefaultLocale), Slug: tag.Slug,
	})
}

func (h *TaxonomyHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	items, err := h.Service.ListTags(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	payloads := make([]taxonomyPayload, 0, len(items))
	for _, tag := range items {
		payloads = append(payloads, taxonomyPayload{
			ID: tag.ULID, Name: tag.Name, NameAr: tag.NameAr,
			DisplayName: tag.DisplayName(l), Slug: tag.Slug,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads})
}

func (h *TaxonomyHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteTag(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
