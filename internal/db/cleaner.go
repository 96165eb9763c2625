package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartChallengeCleaner periodically deletes OTP challenges that have
// outlived their TTL. Expiry is also detected lazily on verification;
// the sweep only bounds table growth from abandoned challenges.
func StartChallengeCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	ttl time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-ttl)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM otp_storage
                     WHERE created_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean expired challenges", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired challenges", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
