package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/summachat/backend/internal/handler/chat"
	"github.com/zhouzirui/summachat/backend/internal/handler/page"
	"github.com/zhouzirui/summachat/backend/internal/handler/stream"
	"github.com/zhouzirui/summachat/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/summachat/backend/internal/middleware"
	chatService "github.com/zhouzirui/summachat/backend/internal/service/chat"
	"github.com/zhouzirui/summachat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services. Access logs go through logger
// when it is non-nil.
func NewRouter(chatSvc *chatService.Service, logger *log.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if logger != nil {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  logger.StandardLog(),
			NoColor: true,
		}))
	} else {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(chatSvc)
	streamHandler := stream.New(chatSvc)
	wsHandler := ws.New(chatSvc)
	pageHandler := page.New(chatSvc)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": chatSvc.Count(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			if !r.URL.Query().Has("message") {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, r.URL.Query().Get("message"))
			switch {
			case err == nil:
			case errors.Is(err, chatService.ErrSessionNotFound):
				utils.RespondError(w, http.StatusNotFound, "session not found")
			default:
				log.Errorf("[stream] error handling request: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
			}
		})

		wsHandler.RegisterRoutes(api)
	})

	pageHandler.RegisterRoutes(r)

	return r
}
