package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"placements/internal/config"
	"placements/internal/drives"
	"placements/internal/identity"
	"placements/internal/store"
)

// Seeds the bootstrap admin account and, when the tables are empty, a sample
// drive in each state. Safe to run repeatedly.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, relying on environment")
	}
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	idRepo := identity.NewRepository(db.Client)
	driveRepo := drives.NewRepository(db.Client)

	admin, err := idRepo.AdminByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		log.Fatalf("admin lookup failed: %v", err)
	}
	if admin == nil {
		password := cfg.AdminPassword
		if password == "" {
			password = "admin123"
			log.Println("ADMIN_PASSWORD not set, seeding with the default dev password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
		if err != nil {
			log.Fatalf("password hash failed: %v", err)
		}
		admin = &identity.Admin{
			ID:           uuid.NewString(),
			Name:         cfg.AdminName,
			Email:        cfg.AdminEmail,
			PasswordHash: string(hash),
			Phone:        optional(cfg.AdminPhone),
			IsActive:     true,
			CreatedAt:    time.Now().UTC(),
		}
		if err := idRepo.InsertAdmin(ctx, admin); err != nil {
			log.Fatalf("admin insert failed: %v", err)
		}
		log.Printf("seeded admin %s", admin.Email)
	} else {
		log.Printf("admin %s already present", admin.Email)
	}

	seedSamples(ctx, driveRepo, admin.ID)
	log.Println("seed complete")
}

func seedSamples(ctx context.Context, repo *drives.Repository, adminID string) {
	now := time.Now().UTC()

	if existing, err := repo.ListUpcoming(ctx); err != nil {
		log.Fatalf("upcoming list failed: %v", err)
	} else if len(existing) == 0 {
		date, _ := drives.ParseDate("2026-03-15")
		rec := &drives.UpcomingCompany{
			ID:            uuid.NewString(),
			Name:          "Google India",
			TentativeDate: date,
			Info:          optional("Eligibility: CS/IT branches, CGPA >= 7.5. Roles: SDE Intern, SDE-1. Batch: 2026."),
			CreatedBy:     adminID,
			CreatedAt:     now,
		}
		if err := repo.InsertUpcoming(ctx, rec); err != nil {
			log.Fatalf("upcoming seed failed: %v", err)
		}
		log.Printf("seeded upcoming company %s", rec.Name)
	}

	if existing, err := repo.ListOngoing(ctx); err != nil {
		log.Fatalf("ongoing list failed: %v", err)
	} else if len(existing) == 0 {
		deadline := now.Add(3 * 24 * time.Hour)
		records := []*drives.OngoingDrive{
			{
				ID:           uuid.NewString(),
				Name:         "Microsoft",
				JD:           "Role: SDE-1 | Location: Hyderabad | CTC: 18 LPA | Skills: DSA, System Design, C++/Java",
				Status:       drives.StatusRound,
				CurrentRound: optional("Technical Interview Round 2"),
				RoundNumber:  2,
				TotalRounds:  4,
				CreatedBy:    adminID,
				CreatedAt:    now,
			},
			{
				ID:            uuid.NewString(),
				Name:          "TCS Digital",
				JD:            "Role: Digital Engineer | Location: PAN India | CTC: 7 LPA | Skills: Full Stack, Cloud",
				Status:        drives.StatusGform,
				GformLink:     optional("https://forms.google.com/example-tcs"),
				GformDeadline: &deadline,
				CreatedBy:     adminID,
				CreatedAt:     now,
			},
		}
		for _, rec := range records {
			if err := repo.InsertOngoing(ctx, rec); err != nil {
				log.Fatalf("ongoing seed failed: %v", err)
			}
			log.Printf("seeded ongoing drive %s", rec.Name)
		}
	}

	if existing, err := repo.ListCompleted(ctx); err != nil {
		log.Fatalf("completed list failed: %v", err)
	} else if len(existing) == 0 {
		rec := &drives.CompletedDrive{
			ID:               uuid.NewString(),
			Name:             "Wipro",
			JD:               "Role: Project Engineer | Location: Bangalore | CTC: 3.5 LPA",
			SelectedCount:    12,
			SpcMemberName:    "Ahmed Khan",
			SpcMemberPhone:   optional("+91-9988776655"),
			SpcMemberEmail:   optional("ahmed.khan@jmi.ac.in"),
			FinalListName:    optional("Wipro_Shortlisted_2026.pdf"),
			FinalListURL:     optional("https://drive.google.com/example-final-list"),
			SelectedListName: optional("Wipro_Selected_2026.pdf"),
			SelectedListURL:  optional("https://drive.google.com/example-selected"),
			CreatedBy:        adminID,
			CreatedAt:        now,
		}
		if err := repo.InsertCompleted(ctx, rec); err != nil {
			log.Fatalf("completed seed failed: %v", err)
		}
		log.Printf("seeded completed drive %s", rec.Name)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
