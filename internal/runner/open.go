package runner

import (
	"fmt"

	"github.com/dbsmedya/goapriori/internal/config"
	"github.com/dbsmedya/goapriori/internal/database"
	"github.com/dbsmedya/goapriori/internal/logger"
	"github.com/dbsmedya/goapriori/internal/store"
)

// OpenStore selects the count engine for a connected manager.
func OpenStore(mgr *database.Manager, engine, table string, log *logger.Logger) (Store, error) {
	if mgr == nil || mgr.DB == nil {
		return nil, fmt.Errorf("database is not connected")
	}

	switch engine {
	case config.EngineGorm:
		if mgr.Gorm == nil {
			return nil, fmt.Errorf("engine %q is not available for the %s driver", engine, mgr.Dialect)
		}
		return store.NewGormStore(mgr.Gorm, table)
	case config.EngineSQL, "":
		return store.NewSQLStore(mgr.DB, mgr.Dialect, table, log)
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}
