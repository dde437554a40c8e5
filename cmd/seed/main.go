package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/database"
	"github.com/johnquangdev/advisor-calendar-sync/pkg/config"
	pkgjwt "github.com/johnquangdev/advisor-calendar-sync/pkg/jwt"
)

// seed creates demo clients and threads for an advisor and prints a bearer
// token for calling the API locally.
func main() {
	advisor := flag.String("advisor", "", "advisor user ID (random when empty)")
	email := flag.String("email", "advisor@test.local", "advisor email embedded in the token")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	advisorID := uuid.New()
	if *advisor != "" {
		if advisorID, err = uuid.Parse(*advisor); err != nil {
			log.Fatalf("Invalid advisor ID: %v", err)
		}
	}

	db, err := database.NewPostgresDB(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	demo := []struct {
		Name    string
		Email   string
		Threads []string
	}{
		{Name: "Alice Nguyen", Email: "alice@client.local", Threads: []string{"Retirement plan", "Tax questions"}},
		{Name: "Bob Tran", Email: "bob@client.local", Threads: []string{"College savings"}},
		{Name: "Charlie Pham", Email: "charlie@client.local"},
	}

	for _, d := range demo {
		clientEmail := d.Email
		client := &entities.Client{
			ID:        uuid.New(),
			AdvisorID: advisorID,
			Name:      d.Name,
			Email:     &clientEmail,
			IsActive:  true,
		}
		if err := db.Create(client).Error; err != nil {
			log.Printf("Failed to create client %s: %v", d.Name, err)
			continue
		}
		for _, title := range d.Threads {
			thread := &entities.AskThread{
				ID:        uuid.New(),
				ClientID:  client.ID,
				AdvisorID: advisorID,
				Title:     title,
			}
			if err := db.Create(thread).Error; err != nil {
				log.Printf("Failed to create thread %q: %v", title, err)
			}
		}
		fmt.Printf("Client %-14s %s (%d threads)\n", d.Name, client.ID, len(d.Threads))
	}

	token, err := pkgjwt.NewManager(cfg.JWT.AccessSecret, *expiry, cfg.JWT.Issuer).GenerateAccessToken(advisorID, *email)
	if err != nil {
		log.Fatalf("Failed to generate access token: %v", err)
	}

	fmt.Printf("\nAdvisor ID: %s\n", advisorID)
	fmt.Printf("Access token (expires in %v):\n%s\n", *expiry, token)
	fmt.Println("\nSet header: Authorization: Bearer <access_token>")
}
