package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kestrelsec/passvault/pkg/audit"
	"github.com/kestrelsec/passvault/pkg/config"
	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/server/middleware"
	"github.com/kestrelsec/passvault/pkg/vault/access"
	"github.com/kestrelsec/passvault/pkg/vault/approval"
	"github.com/kestrelsec/passvault/pkg/vault/store"
	gormstore "github.com/kestrelsec/passvault/pkg/vault/store/gorm"
)

// Server wires the stores, engines and HTTP surface together.
type Server struct {
	Router *mux.Router
	DB     *gorm.DB

	Passwords   store.PasswordsStore
	Groups      store.GroupsStore
	Memberships store.MembershipsStore
	Access      store.AccessStore
	Approvals   store.ApprovalsStore

	Resolver *access.Resolver
	Workflow *approval.Workflow
	Audit    *audit.Sink
	Config   *config.VaultConfig
	Log      *zap.SugaredLogger

	Identify *middleware.Identifier

	// AdminKey is the administrative group's private key, held by the server
	// to open items on redeemed access windows. Optional; without it redeem
	// verifies and consumes but cannot decrypt.
	AdminKey *keycrypt.Key

	srv *http.Server
}

// NewServer builds a Server over a database connection. signingKey signs
// restricted-access grant tokens; adminKey may be nil.
func NewServer(
	db *gorm.DB,
	signingKey *keycrypt.Key,
	adminKey *keycrypt.Key,
	sink *audit.Sink,
	cfg *config.VaultConfig,
	log *zap.SugaredLogger,
	host string,
	port string,
) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg == nil {
		cfg = config.Get()
	}

	passwords := gormstore.NewPasswordsStore(db)
	groups := gormstore.NewGroupsStore(db)
	memberships := gormstore.NewMembershipsStore(db)
	accessStore := gormstore.NewAccessStore(db)
	approvals := gormstore.NewApprovalsStore(db)

	resolver := access.NewResolver(accessStore, groups, memberships, log)
	workflow := approval.NewWorkflow(approvals, passwords, signingKey, cfg.AccessWindow(), log)

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:      router,
		DB:          db,
		Passwords:   passwords,
		Groups:      groups,
		Memberships: memberships,
		Access:      accessStore,
		Approvals:   approvals,
		Resolver:    resolver,
		Workflow:    workflow,
		Audit:       sink,
		Config:      cfg,
		Log:         log,
		Identify:    middleware.NewIdentifier(passwords, log),
		AdminKey:    adminKey,
		srv:         srv,
	}
}

// Start serves until the listener fails or the server is shut down.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
