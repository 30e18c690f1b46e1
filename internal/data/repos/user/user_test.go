package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/attunelabs/attune-backend/internal/data/repos/testutil"
	types "github.com/attunelabs/attune-backend/internal/domain"
	"github.com/attunelabs/attune-backend/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.User{
		{
			ID:          uuid.New(),
			AnonymousID: "anon-userrepo-1",
			Email:       "userrepo@example.com",
			Password:    "pw",
			Timezone:    "UTC",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	byAnon, err := repo.GetByAnonymousID(dbc, "anon-userrepo-1")
	if err != nil {
		t.Fatalf("GetByAnonymousID: %v", err)
	}
	if byAnon == nil || byAnon.ID != created[0].ID {
		t.Fatalf("GetByAnonymousID: unexpected result: %+v", byAnon)
	}

	missing, err := repo.GetByAnonymousID(dbc, "anon-nobody")
	if err != nil {
		t.Fatalf("GetByAnonymousID (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByAnonymousID (missing): expected nil, got %+v", missing)
	}

	exists, err := repo.EmailExists(dbc, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists (missing): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists (missing): expected false")
	}

	activeAt := time.Now().UTC().Truncate(time.Second)
	if err := repo.UpdateLastActive(dbc, created[0].ID, activeAt); err != nil {
		t.Fatalf("UpdateLastActive: %v", err)
	}

	if err := repo.UpdateConfigKey(dbc, created[0].ID, []byte("0123456789abcdef0123456789abcdef"), []byte("salt"), true); err != nil {
		t.Fatalf("UpdateConfigKey: %v", err)
	}

	reloaded, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil || len(reloaded) != 1 {
		t.Fatalf("reload: err=%v len=%d", err, len(reloaded))
	}
	if reloaded[0].LastActiveAt == nil || !reloaded[0].LastActiveAt.Equal(activeAt) {
		t.Fatalf("reload: last_active_at = %v, want %v", reloaded[0].LastActiveAt, activeAt)
	}
	if !reloaded[0].PassphraseSet || len(reloaded[0].ConfigKey) != 32 || string(reloaded[0].KeySalt) != "salt" {
		t.Fatalf("reload: key fields not updated: %+v", reloaded[0])
	}
}

func TestUserRepo_ListActiveForOvernight(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	cutoff := now.Add(-24 * time.Hour)

	active := testutil.SeedUser(t, ctx, tx, "overnight-active@example.com")
	if err := repo.UpdateLastActive(dbc, active.ID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("mark active: %v", err)
	}
	testutil.SeedSession(t, ctx, tx, active.ID, now.Add(-2*time.Hour), true)

	// Active recently but every session still unprocessed.
	unprocessed := testutil.SeedUser(t, ctx, tx, "overnight-unprocessed@example.com")
	if err := repo.UpdateLastActive(dbc, unprocessed.ID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("mark active: %v", err)
	}
	testutil.SeedSession(t, ctx, tx, unprocessed.ID, now.Add(-2*time.Hour), false)

	// Has processed sessions but went quiet before the cutoff.
	stale := testutil.SeedUser(t, ctx, tx, "overnight-stale@example.com")
	if err := repo.UpdateLastActive(dbc, stale.ID, now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("mark active: %v", err)
	}
	testutil.SeedSession(t, ctx, tx, stale.ID, now.Add(-49*time.Hour), true)

	manila := &types.User{
		ID:          uuid.New(),
		AnonymousID: "anon-overnight-manila",
		Email:       "overnight-manila@example.com",
		Password:    "pw",
		Timezone:    "Asia/Manila",
	}
	if err := tx.WithContext(ctx).Create(manila).Error; err != nil {
		t.Fatalf("seed manila user: %v", err)
	}
	if err := repo.UpdateLastActive(dbc, manila.ID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("mark active: %v", err)
	}
	testutil.SeedSession(t, ctx, tx, manila.ID, now.Add(-90*time.Minute), true)
	// A second processed session must not duplicate the user in the result.
	testutil.SeedSession(t, ctx, tx, manila.ID, now.Add(-3*time.Hour), true)

	all, err := repo.ListActiveForOvernight(dbc, cutoff, "")
	if err != nil {
		t.Fatalf("ListActiveForOvernight: %v", err)
	}
	ids := map[uuid.UUID]int{}
	for _, u := range all {
		ids[u.ID]++
	}
	if ids[active.ID] != 1 || ids[manila.ID] != 1 {
		t.Fatalf("ListActiveForOvernight: expected active and manila once each, got %v", ids)
	}
	if ids[unprocessed.ID] != 0 {
		t.Fatalf("ListActiveForOvernight: user without processed sessions included")
	}
	if ids[stale.ID] != 0 {
		t.Fatalf("ListActiveForOvernight: stale user included")
	}

	scoped, err := repo.ListActiveForOvernight(dbc, cutoff, "Asia/Manila")
	if err != nil {
		t.Fatalf("ListActiveForOvernight (timezone): %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != manila.ID {
		t.Fatalf("ListActiveForOvernight (timezone): expected only manila, got %+v", scoped)
	}
}
