package store

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"

	"congregationAPI/internal/config"
	"congregationAPI/internal/store/firestoredb"
	"congregationAPI/internal/store/postgres"
	"congregationAPI/internal/store/sqlite"
	"congregationAPI/services"
)

var (
	_ services.Store = (*firestoredb.Store)(nil)
	_ services.Store = (*postgres.Store)(nil)
	_ services.Store = (*sqlite.Store)(nil)
)

// Open connects the backend named by cfg.StoreBackend. app is required for
// the firestore backend only.
func Open(ctx context.Context, cfg config.Config, app *firebase.App) (services.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		if app == nil {
			return nil, fmt.Errorf("firestore backend needs a firebase app")
		}
		s, err := firestoredb.NewFromApp(ctx, app)
		if err != nil {
			return nil, err
		}
		log.Println("Store: connected to Firestore")
		return s, nil

	case config.BackendPostgres:
		s, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		log.Println("Store: connected to PostgreSQL")
		return s, nil

	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Printf("Store: using SQLite database at %s", cfg.SQLitePath)
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
