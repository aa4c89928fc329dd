// Command createadmin creates an ADMIN account, the only way to obtain
// one since registration always creates USER accounts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/database"
	"github.com/iliyamo/theatre-reservation/internal/logger"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	flag.Parse()
	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if cfg.Storage != config.StorageMySQL {
		logger.Fatal("createadmin needs STORAGE=mysql", "storage", cfg.Storage)
	}

	db, err := database.Open(cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	id, err := repository.NewUserRepo(db).Create(ctx, *email, *password, model.RoleAdmin, cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		logger.Fatal("an account with this email already exists", "email", *email)
	}
	if err != nil {
		logger.Fatal("failed to create admin", "error", err)
	}
	fmt.Printf("created admin %s (id %d)\n", repository.NormalizeEmail(*email), id)
}
