package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// migrations are applied in order.  Every statement is idempotent so the
// list can run on each start when DB_MIGRATE is set.
var migrations = []string{
	createUsersTable,
	createRefreshTokensTable,
	createGenresTable,
	createActorsTable,
	createPlaysTable,
	createPlayGenresTable,
	createPlayActorsTable,
	createTheatreHallsTable,
	createPerformancesTable,
	createReservationsTable,
	createTicketsTable,
}

// Migrate creates the schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	slog.Info("Running database migrations...")
	for i, m := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	slog.Info("All migrations completed successfully", "count", len(migrations))
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    email VARCHAR(255) NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    role ENUM('USER','ADMIN') NOT NULL DEFAULT 'USER',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createRefreshTokensTable = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NOT NULL,
    token_hash CHAR(64) NOT NULL,
    expires_at DATETIME NOT NULL,
    revoked_at DATETIME NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE KEY uq_refresh_token_hash (token_hash),
    CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createGenresTable = `
CREATE TABLE IF NOT EXISTS genres (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    KEY idx_genres_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createActorsTable = `
CREATE TABLE IF NOT EXISTS actors (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255) NOT NULL,
    KEY idx_actors_first_name (first_name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createPlaysTable = `
CREATE TABLE IF NOT EXISTS plays (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    KEY idx_plays_title (title)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createPlayGenresTable = `
CREATE TABLE IF NOT EXISTS play_genres (
    play_id BIGINT UNSIGNED NOT NULL,
    genre_id BIGINT UNSIGNED NOT NULL,
    PRIMARY KEY (play_id, genre_id),
    CONSTRAINT fk_pg_play FOREIGN KEY (play_id) REFERENCES plays(id) ON DELETE CASCADE,
    CONSTRAINT fk_pg_genre FOREIGN KEY (genre_id) REFERENCES genres(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createPlayActorsTable = `
CREATE TABLE IF NOT EXISTS play_actors (
    play_id BIGINT UNSIGNED NOT NULL,
    actor_id BIGINT UNSIGNED NOT NULL,
    PRIMARY KEY (play_id, actor_id),
    CONSTRAINT fk_pa_play FOREIGN KEY (play_id) REFERENCES plays(id) ON DELETE CASCADE,
    CONSTRAINT fk_pa_actor FOREIGN KEY (actor_id) REFERENCES actors(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createTheatreHallsTable = `
CREATE TABLE IF NOT EXISTS theatre_halls (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    num_rows INT NOT NULL,
    seats_in_row INT NOT NULL,
    CONSTRAINT chk_hall_rows CHECK (num_rows > 0),
    CONSTRAINT chk_hall_seats CHECK (seats_in_row > 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createPerformancesTable = `
CREATE TABLE IF NOT EXISTS performances (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    show_time DATETIME NOT NULL,
    play_id BIGINT UNSIGNED NOT NULL,
    theatre_hall_id BIGINT UNSIGNED NOT NULL,
    KEY idx_performances_show_time (show_time),
    CONSTRAINT fk_perf_play FOREIGN KEY (play_id) REFERENCES plays(id) ON DELETE CASCADE,
    CONSTRAINT fk_perf_hall FOREIGN KEY (theatre_hall_id) REFERENCES theatre_halls(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    user_id BIGINT UNSIGNED NOT NULL,
    created_at DATETIME(6) NOT NULL,
    KEY idx_reservations_user_created (user_id, created_at),
    CONSTRAINT fk_res_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
    performance_id BIGINT UNSIGNED NOT NULL,
    reservation_id BIGINT UNSIGNED NOT NULL,
    seat_row INT NOT NULL,
    seat_number INT NOT NULL,
    UNIQUE KEY uq_ticket_seat (performance_id, seat_row, seat_number),
    CONSTRAINT fk_ticket_perf FOREIGN KEY (performance_id) REFERENCES performances(id) ON DELETE CASCADE,
    CONSTRAINT fk_ticket_res FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`
