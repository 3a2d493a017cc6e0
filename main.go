package main

import (
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"brawlpit/arena"
	"brawlpit/database"
	"brawlpit/discord"
	"brawlpit/web"
)

const minimumGold = 1000

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	log.Printf("🕳️  Starting Brawlpit at: %s", time.Now().Format("Monday, January 2, 2006 at 3:04:05 PM MST"))

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "./brawlpit.db"
	}

	db, err := sqlx.Connect("sqlite3", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable is required")
	}

	// The one process-wide arena. The repository doubles as its account
	// directory and bank.
	pit := arena.New(repo, repo, arena.Config{
		MinRank:              os.Getenv("ARENA_MIN_RANK"),
		AttackerWinsFinalTie: true,
	})
	pit.SetRecorder(repo)

	server := web.NewServer(repo, pit, sessionSecret)

	// Fan events out to the websocket gateway and, best-effort, to
	// Discord. Both sit outside the arena's critical section.
	pit.SetNotifier(arena.MultiNotifier{server.Gateway(), discord.NewNotifier()})

	// Background housekeeping: session cleanup and the daily gold
	// top-up to the configured minimum.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := repo.CleanExpiredSessions(); err != nil {
				log.Printf("Session cleanup: %v", err)
			}
			if time.Now().Hour() == 4 {
				if err := repo.TopUpAccountsToMinimum(minimumGold); err != nil {
					log.Printf("Daily top-up: %v", err)
				}
			}
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🥊 The Pit awaits!")

	if err := server.Start(port); err != nil {
		log.Fatal("Failed to start web server:", err)
	}
}
