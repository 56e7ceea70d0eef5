package app

import (
	"context"
	"log"

	"github.com/Gautamrajanand/crm-supabase-sub000/db"

	"github.com/google/uuid"
)

// BootstrapFirstUser seeds the first account and its stream on an empty
// database so a fresh deployment is immediately usable.
func BootstrapFirstUser(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" {
		return
	}
	n, err := repo.CountUsers(ctx)
	if err != nil {
		log.Printf("bootstrap: count users: %v", err)
		return
	}
	if n > 0 {
		return
	}

	u, err := repo.FindOrCreateUser(ctx, cfg.BootstrapEmail, "", uuid.NewString())
	if err != nil {
		log.Printf("bootstrap: create user: %v", err)
		return
	}
	st, err := repo.CreateStream(ctx, "My first stream", "", u.ID)
	if err != nil {
		log.Printf("bootstrap: create stream: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] Created %s and stream %q (%s); sign in to get started", u.Email, st.Name, st.ID)
}
