package handlers

import (
	"net/http"
	"time"

	"github.com/dreamtoapp/smartcrowds-server/internal/domain/locale"
	"github.com/dreamtoapp/smartcrowds-server/internal/feeds"
	"github.com/dreamtoapp/smartcrowds-server/internal/metrics"
)

type FeedsHandler struct {
	Service       *feeds.Service
	Env           string
	DefaultLocale locale.Locale
}

func NewFeedsHandler(service *feeds.Service, env string, defaultLocale locale.Locale) *FeedsHandler {
	return &FeedsHandler{Service: service, Env: env, DefaultLocale: defaultLocale}
}

// Sitemap serves /sitemap.xml, rebuilt per request.
func (h *FeedsHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	out, err := h.Service.SitemapXML(r.Context())
	metrics.FeedBuildDuration.WithLabelValues("sitemap").Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// RSS serves /rss.xml in the requested locale.
func (h *FeedsHandler) RSS(w http.ResponseWriter, r *http.Request) {
	l := localeFrom(r, h.DefaultLocale)

	start := time.Now()
	out, err := h.Service.RSS(r.Context(), l)
	metrics.FeedBuildDuration.WithLabelValues("rss").Observe(time.Since(start).Seconds())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
