package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	subjects "sakhi-cloud/internal/subjects/domain"
	subjectrepo "sakhi-cloud/internal/subjects/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestSubjectRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if !tableExists(db, "subjects") {
		t.Skip("missing subjects table; run migrations")
	}

	ctx := context.Background()
	id := "subject-it-1"
	_, _ = db.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1", id)

	repo := subjectrepo.NewSubjectRepository(db)
	subject := &subjects.Subject{
		ID:              id,
		Email:           "it@example.com",
		DisplayName:     "Integration Subject",
		IntervalSeconds: 300,
		Guardians: []subjects.Guardian{
			{Name: "Mira", Email: "mira@example.com"},
			{Name: "Ravi", Phone: "9876543210", PushKey: "key-2"},
		},
	}
	if err := repo.Create(ctx, subject); err != nil {
		t.Fatalf("create: %v", err)
	}

	lat, lon := 12.9716, 77.5946
	armedAt := time.Now().UTC().Add(-10 * time.Minute).Truncate(time.Millisecond)
	if err := repo.Arm(ctx, id, armedAt, &lat, &lon); err != nil {
		t.Fatalf("arm: %v", err)
	}

	armed, err := repo.ListArmed(ctx)
	if err != nil {
		t.Fatalf("list armed: %v", err)
	}
	var found *subjects.Subject
	for i := range armed {
		if armed[i].ID == id {
			found = &armed[i]
		}
	}
	if found == nil {
		t.Fatalf("armed subject not listed")
	}
	if !found.LastConfirmationAt.Equal(armedAt) {
		t.Fatalf("confirmation = %v, want %v", found.LastConfirmationAt, armedAt)
	}
	if len(found.Guardians) != 2 {
		t.Fatalf("guardians round-trip failed: %+v", found.Guardians)
	}
	if !found.HasLocation() {
		t.Fatalf("location not persisted")
	}

	flipped, err := repo.Disarm(ctx, id)
	if err != nil {
		t.Fatalf("disarm: %v", err)
	}
	if !flipped {
		t.Fatalf("expected conditional disarm to flip the armed row")
	}
	flipped, err = repo.Disarm(ctx, id)
	if err != nil {
		t.Fatalf("second disarm: %v", err)
	}
	if flipped {
		t.Fatalf("second disarm must be a no-op")
	}
}

func tableExists(db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow(`SELECT EXISTS (
		SELECT 1 FROM information_schema.tables WHERE table_name = $1
	)`, name).Scan(&exists)
	return err == nil && exists
}
