package main

import (
	"fmt"
	"log"
	"time"

	"eventixs/internal/events"
	"eventixs/internal/shared/config"
	"eventixs/internal/shared/database"
	"eventixs/internal/users"
	"eventixs/internal/venues"

	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Eventixs Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"support_tickets",
		"payment_attempts",
		"payments",
		"bookings",
		"reservations",
		"events",
		"venues",
		"users",
	}

	pg := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := pg.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			// Table may not exist yet on a fresh database.
			fmt.Printf("  ⚠️  Could not truncate %s: %v\n", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	seededUsers, err := s.seedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	fmt.Printf("  👤 Seeded %d users\n", len(seededUsers))

	seededVenues, err := s.seedVenues()
	if err != nil {
		return fmt.Errorf("failed to seed venues: %w", err)
	}
	fmt.Printf("  🏟️  Seeded %d venues\n", len(seededVenues))

	admin := seededUsers[0]
	seededEvents, err := s.seedEvents(admin, seededVenues)
	if err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}
	fmt.Printf("  🎫 Seeded %d events\n", len(seededEvents))

	return nil
}

func (s *Seeder) seedUsers() ([]users.User, error) {
	hash := func(password string) string {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		return string(hashed)
	}

	seedUsers := []users.User{
		{FirstName: "Ada", LastName: "Admin", Email: "admin@eventixs.dev", Password: hash("admin123"), Role: users.RoleAdmin},
		{FirstName: "Carol", LastName: "Customer", Email: "carol@example.com", Password: hash("password123"), Role: users.RoleUser},
		{FirstName: "Bob", LastName: "Buyer", Email: "bob@example.com", Password: hash("password123"), Role: users.RoleUser},
	}

	for i := range seedUsers {
		if err := s.db.GetPostgreSQL().Create(&seedUsers[i]).Error; err != nil {
			return nil, err
		}
	}
	return seedUsers, nil
}

func (s *Seeder) seedVenues() ([]venues.Venue, error) {
	seedVenues := []venues.Venue{
		{Name: "Grand Arena", Address: "1 Stadium Way", City: "Mumbai", Capacity: 20000},
		{Name: "Riverside Theatre", Address: "42 Waterfront Road", City: "Pune", Capacity: 1200},
		{Name: "Skyline Convention Center", Address: "88 Skyline Avenue", City: "Bengaluru", Capacity: 5000},
	}

	for i := range seedVenues {
		if err := s.db.GetPostgreSQL().Create(&seedVenues[i]).Error; err != nil {
			return nil, err
		}
	}
	return seedVenues, nil
}

func (s *Seeder) seedEvents(admin users.User, seedVenues []venues.Venue) ([]events.Event, error) {
	now := time.Now()

	seedEvents := []events.Event{
		{
			Name:             "Summer Beats Festival",
			Description:      "Open-air music festival headlined by three touring acts.",
			VenueID:          seedVenues[0].ID,
			DateTime:         now.AddDate(0, 1, 0),
			TotalTickets:     5000,
			AvailableTickets: 5000,
			TicketPrice:      75.00,
			Status:           events.StatusPublished,
			CreatedBy:        admin.ID,
		},
		{
			Name:             "Hamlet: Reimagined",
			Description:      "A modern staging of the classic, limited three-night run.",
			VenueID:          seedVenues[1].ID,
			DateTime:         now.AddDate(0, 0, 14),
			TotalTickets:     800,
			AvailableTickets: 800,
			TicketPrice:      40.00,
			Status:           events.StatusPublished,
			CreatedBy:        admin.ID,
		},
		{
			Name:             "DevConf India",
			Description:      "Two-day developer conference with workshops and keynotes.",
			VenueID:          seedVenues[2].ID,
			DateTime:         now.AddDate(0, 2, 0),
			TotalTickets:     3000,
			AvailableTickets: 3000,
			TicketPrice:      120.00,
			Status:           events.StatusDraft,
			CreatedBy:        admin.ID,
		},
	}

	for i := range seedEvents {
		if err := s.db.GetPostgreSQL().Create(&seedEvents[i]).Error; err != nil {
			return nil, err
		}
	}
	return seedEvents, nil
}
