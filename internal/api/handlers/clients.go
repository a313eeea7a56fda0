package handlers

import (
	"net/http"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/content"
)

type ClientsHandler struct {
	Service *content.Service
	Env     string
}

func NewClientsHandler(service *content.Service, env string) *ClientsHandler {
	return &ClientsHandler{Service: service, Env: env}
}

type clientPayload struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LogoURL    string    `json:"logoUrl"`
	WebsiteURL string    `json:"websiteUrl,omitempty"`
	Published  bool      `json:"published"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toClientPayload(client *content.Client) clientPayload {
	return clientPayload{
		ID:         client.ULID,
		Name:       client.Name,
		LogoURL:    client.LogoURL,
		WebsiteURL: client.WebsiteURL,
		Published:  client.Published,
		Order:      client.Order,
		CreatedAt:  client.CreatedAt,
	}
}

// ListPublic returns the published logo wall in display order.
func (h *ClientsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *ClientsHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *ClientsHandler) list(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	items, err := h.Service.ListClients(r.Context(), publishedOnly)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	payloads := make([]clientPayload, 0, len(items))
	for i := range items {
		payloads = append(payloads, toClientPayload(&items[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": payloads})
}

func (h *ClientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params content.ClientParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	client, err := h.Service.CreateClient(r.Context(), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, toClientPayload(client))
}

func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var params content.ClientParams
	if !decodeBody(w, r, h.Env, &params) {
		return
	}
	client, err := h.Service.UpdateClient(r.Context(), pathParam(r, "id"), params)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, toClientPayload(client))
}

func (h *ClientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteClient(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
