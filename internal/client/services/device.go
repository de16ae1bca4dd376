package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tubeboost/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tubeboost/internal/dbx"
	"github.com/google/uuid"
)

// RegistrationCookie returns the device identifier sent with registrations.
// It is generated once and persisted; later calls return the stored value.
// Logging out does not reset it.
func RegistrationCookie(ctx context.Context, db *sql.DB) (string, error) {
	var cookie string
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		v, err := repo.Get(ctx, metadata.KeyRegistrationCookie)
		if err != nil {
			return fmt.Errorf("load registration cookie: %w", err)
		}
		if len(v) > 0 {
			cookie = string(v)
			return nil
		}

		cookie = uuid.NewString()
		if err := repo.Set(ctx, metadata.KeyRegistrationCookie, []byte(cookie)); err != nil {
			return fmt.Errorf("save registration cookie: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return cookie, nil
}
