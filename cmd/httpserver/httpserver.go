// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/adnanbp/bankoffice/internal/accountdelivery"
	"github.com/adnanbp/bankoffice/internal/accountrepo"
	"github.com/adnanbp/bankoffice/internal/accountservice"
	"github.com/adnanbp/bankoffice/internal/auditrepo"
	"github.com/adnanbp/bankoffice/internal/auditservice"
	"github.com/adnanbp/bankoffice/internal/customerrepo"
	"github.com/adnanbp/bankoffice/internal/middleware"
	"github.com/adnanbp/bankoffice/internal/transactiondelivery"
	"github.com/adnanbp/bankoffice/internal/transactionrepo"
	"github.com/adnanbp/bankoffice/internal/transactionservice"
	"github.com/adnanbp/bankoffice/pkg/configpkg"
	"github.com/adnanbp/bankoffice/pkg/refpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	auditRepo := auditrepo.NewRepoPGS(conn)
	customerRepo := customerrepo.NewRepoPGS(conn)

	accountService := accountservice.New(accountRepo)
	auditService := auditservice.New(auditRepo, customerRepo)
	transactionService := transactionservice.New(
		transactionRepo,
		auditService,
		refpkg.NewGenerator(),
		config.StoreTimeout,
	)

	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/transactions", transactionHandler.Create)
	engine.GET("/transactions/account/:account_no", transactionHandler.ListByAccount)

	engine.GET("/accounts/:account_no", accountHandler.Get)
	engine.GET("/accounts", accountHandler.List)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("txtype", transactiondelivery.ValidType)
		if err != nil {
			return nil, errors.New("cannot register transaction type validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
