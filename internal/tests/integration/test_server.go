package integration

import (
	"fmt"
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"log/slog"
	"net/http/httptest"
	"os"
	"team-manager/internal/http/v1/router"
	"team-manager/internal/repo"
	"team-manager/internal/service"
)

const testMaxMembers = 6

type TestServer struct {
	DB     *sqlx.DB
	Server *httptest.Server
}

func NewTestServer() (*TestServer, error) {
	dbURL := "host=localhost port=5432 user=postgres password=postgres dbname=team_manager_db sslmode=disable"

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	teamRepo := repo.NewTeamRepo(db)
	profileRepo := repo.NewProfileRepo(db)
	notifRepo := repo.NewNotificationRepo(db)

	teamService := service.NewTeamService(log, teamRepo, profileRepo, notifRepo, testMaxMembers)
	profileService := service.NewProfileService(log, profileRepo)
	notifService := service.NewNotificationService(log, notifRepo)

	r := chi.NewRouter()
	router.NewTeamRouter(teamService, log).SetupRoutes(r)
	router.NewProfileRouter(profileService, log).SetupRoutes(r)
	router.NewNotificationRouter(notifService, teamService, log).SetupRoutes(r)

	ts := httptest.NewServer(r)

	return &TestServer{
		DB:     db,
		Server: ts,
	}, nil
}

// Fixture IDs referenced throughout the integration tests. Alice runs the
// Alpha Squad team; Bob and Carol are unaffiliated.
const (
	aliceID = "00000000-0000-0000-0000-000000000001"
	bobID   = "00000000-0000-0000-0000-000000000002"
	carolID = "00000000-0000-0000-0000-000000000003"

	alphaTeamID   = "10000000-0000-0000-0000-000000000001"
	alphaTeamCode = "ALPHA1"
)

func (s *TestServer) LoadFixtures() error {
	tables := []string{"notifications", "profiles", "teams"}
	for _, table := range tables {
		_, err := s.DB.Exec(fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}

	fixtures := fmt.Sprintf(`
		INSERT INTO teams(id, name, team_code, admin_id, max_members) VALUES
			('%s', 'Alpha Squad', '%s', '%s', %d);

		INSERT INTO profiles(id, uid, ign, team_id, is_team_admin) VALUES
			('%s', '111111111', 'Alice', '%s', true),
			('%s', '222222222', 'Bob', NULL, false),
			('%s', '333333333', 'Carol', NULL, false);
	`,
		alphaTeamID, alphaTeamCode, aliceID, testMaxMembers,
		aliceID, alphaTeamID,
		bobID,
		carolID,
	)

	_, err := s.DB.Exec(fixtures)
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}

	log.Println("Fixtures loaded successfully")
	return nil
}

func (s *TestServer) Close() {
	s.Server.Close()
	s.DB.Close()
}
