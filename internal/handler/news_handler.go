package handler

import (
	"net/http"

	"github.com/fakhrymubarak/skytrackr/internal/config"
	"github.com/fakhrymubarak/skytrackr/internal/middleware"
	"github.com/fakhrymubarak/skytrackr/internal/service"
	"go.uber.org/zap"
)

type NewsHandler struct {
	NewsService service.NewsServiceInterface
	Logger      *zap.SugaredLogger
}

func NewNewsHandler(svc service.NewsServiceInterface) *NewsHandler {
	if svc == nil {
		svc = service.NewNewsService(nil)
	}
	return &NewsHandler{NewsService: svc, Logger: config.GetLogger()}
}

func (h *NewsHandler) logger() *zap.SugaredLogger {
	if h.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return h.Logger
}

// HandleNews serves GET /news
func (h *NewsHandler) HandleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	articles, err := h.NewsService.Headlines(r.Context())
	if err != nil {
		h.logger().Warnw("News request failed", "request_id", middleware.RequestIDFromContext(r.Context()), "error", err)
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, articles)
}

// HandleHealth serves GET /healthz
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
