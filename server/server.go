package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/handlers"
	"github.com/ray-remotestate/tableqr/middlewares"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/utils"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
)

func SetupRoutes(h *handlers.Handler, tokens middlewares.TokenParser) *Server {
	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, r, apperr.NotFound("No route for %s", r.URL.Path))
	})

	router.HandleFunc("/health", h.Health).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/login", h.Login).Methods("POST")

	// customers, identified by the table's QR token
	public := api.PathPrefix("/public/tables/{qrToken}").Subrouter()
	public.HandleFunc("/menu", h.GetMenu).Methods("GET")
	public.HandleFunc("/orders", h.SubmitOrder).Methods("POST")
	public.HandleFunc("/service-calls", h.CreateServiceCall).Methods("POST")

	// staff n manager
	staff := api.PathPrefix("/staff").Subrouter()
	staff.Use(middlewares.AuthMiddleware(tokens))
	staff.Use(middlewares.RoleBasedMiddleware(models.RoleStaff, models.RoleManager))

	staff.HandleFunc("/orders", h.ListOrders).Methods("GET")
	staff.HandleFunc("/orders/{orderId}", h.GetOrder).Methods("GET")
	staff.HandleFunc("/orders/{orderId}/sent-to-kitchen", h.MarkSentToKitchen).Methods("PATCH")
	staff.HandleFunc("/service-calls", h.ListServiceCalls).Methods("GET")

	return &Server{
		Router: router,
		server: &http.Server{
			Handler:           router,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
		},
	}
}

// Run blocks until the server stops. A clean Shutdown is not an error.
func (svr *Server) Run(addr string) error {
	svr.server.Addr = addr
	if err := svr.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
