// File: cmd/scholarhub/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"log"

	"scholarhub_client/internal/app"
	"scholarhub_client/internal/callback"
	"scholarhub_client/internal/config"
	"scholarhub_client/internal/identity"
	"scholarhub_client/internal/platform/localstore"
	"scholarhub_client/internal/platform/logger"
	"scholarhub_client/internal/prefs"
	"scholarhub_client/internal/session"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// initializeApp is the main Wire injector.
func initializeApp(cfg *config.Config) (*app.App, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		localstore.NewGORM,
		provideCleanup,

		// Loopback server doubles as the awaiter for browser round-trips.
		callback.NewServer,
		wire.Bind(new(identity.CallbackAwaiter), new(*callback.Server)),

		// Identity provider
		identity.NewGoogleFlow,
		identity.NewService,
		wire.Bind(new(identity.Provider), new(*identity.Service)),

		// Session and local preferences
		session.NewStore,
		prefs.NewStore,

		// Application Layer
		app.New,
	)
	return nil, nil, nil
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		localstore.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
