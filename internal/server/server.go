package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"storefront-backend/internal/handler"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
)

type Server struct {
	echo         *echo.Echo
	orderHandler *handler.OrderHandler
	jwtSecret    string
}

func NewServer(orderService service.OrderService, jwtSecret string) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:         e,
		orderHandler: handler.NewOrderHandler(orderService),
		jwtSecret:    jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	admin := middleware.AdminAuth(s.jwtSecret)

	orders := api.Group("/orders")
	orders.POST("/finalize", s.orderHandler.FinalizeOrder)
	orders.GET("", s.orderHandler.ListOrders, admin)
	orders.GET("/:id", s.orderHandler.GetOrder, admin)
	orders.POST("/:id/status", s.orderHandler.ChangeStatus, admin)
	orders.PUT("/:id/dispatch", s.orderHandler.Dispatch, admin)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
