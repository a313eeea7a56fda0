package handlers

import (
	"net/http"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
)

type ProjectsHandler struct {
	Service       *content.Service
	Env           string
	DefaultLocale locale.Locale
}

func NewProjectsHandler(service *content.Service, env string, defaultLocale locale.Locale) *ProjectsHandler {
	return &ProjectsHandler{Service: service, Env: env, DefaultLocale: defaultLocale}
}

type projectPayload struct {
	ID                 string                 `json:"id"`
	Title              string                 `json:"title"`
	TitleAr            string                 `json:"titleAr,omitempty"`
	DisplayTitle       string                 `json:"displayTitle"`
	Slug               string                 `json:"slug"`
	Description        string                 `json:"description,omitempty"`
	DisplayDescription string                 `json:"displayDescription,omitempty"`
	Images             []content.ProjectImage `json:"images"`
	StartDate          *time.Time             `json:"startDate,omitempty"`
	EndDate            *time.Time             `json:"endDate,omitempty"`
	Featured           bool                   `json:"featured"`
	Published          bool                   `json:"published"`
	CreatedAt          time.Time              `json:"createdAt"`
}

func toProjectPayload(project *content.Project, l locale.Locale) projectPayload {
	images := project.Images
	if images == nil {
		images = []content.ProjectImage{}
	}
	return projectPayload{
		ID:                 project.ULID,
		Title:              project.Title,
		TitleAr:            project.TitleAr,
		DisplayTitle:       project.DisplayTitle(l),
		Slug:               project.Slug,
		Description:        project.Description,
		DisplayDescription: project.DisplayDescription(l),
		Images:             images,
		StartDate:          project.StartDate,
		EndDate:            project.EndDate,
		Featured:           project.Featured,
		Published:          project.Published,
		CreatedAt:          project.CreatedAt,
	}
}

// ListPublic returns published projects; ?featured=true narrows to the
// homepage subset.
func (h *ProjectsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	published := true
	h.list(w, r, content.ProjectQuery{Published: &published, Featured: queryBool(r, "featured")})
}

func (h *ProjectsHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, content.ProjectQuery{
		Published: queryBool(r, "published"),
		Featured:  queryBool(r, "featured"),
	})
}

func (h *ProjectsHandler) list(w http.ResponseWriter, r *http.Request, query content.ProjectQuery) {
	l := localeFrom(r, h.DefaultLocale)
	items, err := h.Service.ListProjects(r.Context(), query)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	payloads := make([]projectPayload, 0, len(items))
	for i := range items {
		payloads = append(payloads, toProjectPayload(&items[i], l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads})
}

func (h *ProjectsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)
	project, err := h.Service.GetProjectBySlug(r.Context(), pathParam(r, "slug"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toProjectPayload(project, l))
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params content.ProjectParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	project, err := h.Service.CreateProject(r.Context(), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectPayload(project, h.DefaultLocale))
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var params content.ProjectParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	project, err := h.Service.UpdateProject(r.Context(), pathParam(r, "id"), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toProjectPayload(project, h.DefaultLocale))
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteProject(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
