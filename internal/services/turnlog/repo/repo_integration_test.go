//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"vassist/internal/platform/store"
	"vassist/internal/services/turnlog/domain"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

const schema = `
	CREATE TABLE IF NOT EXISTS turn_log (
		turn_id     UUID PRIMARY KEY,
		session_id  TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		raw_text    TEXT NOT NULL,
		lang        TEXT NOT NULL DEFAULT '',
		intent      TEXT NOT NULL,
		confidence  DOUBLE PRECISION NOT NULL,
		entities    JSONB,
		polarity    DOUBLE PRECISION NOT NULL DEFAULT 0,
		magnitude   DOUBLE PRECISION NOT NULL DEFAULT 0,
		action_kind TEXT NOT NULL,
		action      JSONB,
		outcome     TEXT NOT NULL DEFAULT ''
	)`

func TestTurnLog_Integration_WriteAndCount(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, schema); err != nil {
		t.Fatalf("create table: %v", err)
	}

	stg := NewPG().Bind(st.PG)

	ents, _ := json.Marshal([]map[string]any{{"type": "datetime", "value": "2026-03-05T17:00:00Z"}})
	act, _ := json.Marshal(map[string]any{"kind": "dispatch", "skill": "reminder_manager"})
	rec := domain.Record{
		TurnID:     uuid.New(),
		SessionID:  "s1",
		CreatedAt:  time.Now().UTC(),
		RawText:    "remind me to call mom tomorrow at 5pm",
		Lang:       "en",
		Intent:     "set_reminder",
		Confidence: 0.95,
		Entities:   ents,
		Polarity:   0,
		Magnitude:  0,
		ActionKind: "dispatch",
		Action:     act,
		Outcome:    "ok",
	}

	if err := stg.Write(ctx, rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	// idempotent on turn id
	if err := stg.Write(ctx, rec); err != nil {
		t.Fatalf("second write: %v", err)
	}

	n, err := stg.CountBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}
