package internal

import (
	"videoshare/video-api/db"
	"videoshare/video-api/internal/auth"
	"videoshare/video-api/internal/service"
	"videoshare/video-api/internal/storage"
)

type Deps struct {
	DB       db.Store
	Storage  storage.Store
	Identity auth.Provider
	Pipeline *service.Pipeline
}

// Close releases the metadata store connection
func (d *Deps) Close() error {
	if d.DB == nil {
		return nil
	}

	return d.DB.Close()
}
