package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"gorm.io/gorm"
)

func setMembershipJoined(t *testing.T, r *Repo, streamID, userID string, at time.Time) {
	t.Helper()
	if err := r.DB.Model(&models.StreamMembership{}).
		Where("stream_id = ? AND user_id = ?", streamID, userID).
		Update("created_at", at).Error; err != nil {
		t.Fatalf("set joined time: %v", err)
	}
}

func TestCreateStreamMakesOwner(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := mustCreateUser(t, r, "owner@example.com")

	st := mustCreateStream(t, r, "Acme", u.ID)

	m, err := r.GetMembership(ctx, u.ID, st.ID)
	if err != nil {
		t.Fatalf("creator membership missing: %v", err)
	}
	if m.Role != models.RoleOwner {
		t.Errorf("creator role = %s, want owner", m.Role)
	}
}

func TestListStreamsForUserOrdering(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := mustCreateUser(t, r, "u@example.com")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stB := mustCreateStream(t, r, "Second", u.ID)
	stA := mustCreateStream(t, r, "First", u.ID)
	setMembershipJoined(t, r, stA.ID, u.ID, base)
	setMembershipJoined(t, r, stB.ID, u.ID, base.Add(time.Hour))

	// Repeated calls return the same order with the earliest joined first.
	for i := 0; i < 3; i++ {
		entries, err := r.ListStreamsForUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("got %d streams, want 2", len(entries))
		}
		if entries[0].ID != stA.ID || entries[1].ID != stB.ID {
			t.Fatalf("order = [%s %s], want [%s %s]",
				entries[0].ID, entries[1].ID, stA.ID, stB.ID)
		}
		if entries[0].Role != models.RoleOwner {
			t.Errorf("entry role = %s, want owner", entries[0].Role)
		}
	}
}

func TestListStreamsForUserEmpty(t *testing.T) {
	r := newTestRepo(t)
	u := mustCreateUser(t, r, "new@example.com")

	entries, err := r.ListStreamsForUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("list for user with no memberships: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d streams, want 0", len(entries))
	}
}

func TestDeleteStreamCascades(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := mustCreateUser(t, r, "owner@example.com")
	st := mustCreateStream(t, r, "Doomed", u.ID)

	if err := r.CreateCustomer(ctx, &models.Customer{StreamID: st.ID, Name: "c"}); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := r.CreateTask(ctx, &models.Task{StreamID: st.ID, Title: "t", Status: models.TaskOpen}); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	if _, err := r.CreateInvitation(ctx, st.ID, "x@example.com", models.RoleMember, nil, u.ID, 0); err != nil {
		t.Fatalf("seed invite: %v", err)
	}

	if err := r.DeleteStream(ctx, st.ID); err != nil {
		t.Fatalf("delete stream: %v", err)
	}

	if _, err := r.FindStreamByID(ctx, st.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("stream still present after delete: %v", err)
	}
	if _, err := r.GetMembership(ctx, u.ID, st.ID); !errors.Is(err, ErrNotAMember) {
		t.Errorf("membership survived delete: %v", err)
	}
	customers, err := r.ListCustomers(ctx, st.ID, "")
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(customers) != 0 {
		t.Errorf("customers survived delete: %d", len(customers))
	}
	invs, err := r.ListInvitations(ctx, st.ID)
	if err != nil {
		t.Fatalf("list invites: %v", err)
	}
	if len(invs) != 0 {
		t.Errorf("invitations survived delete: %d", len(invs))
	}
}

func TestScopedQueriesDoNotLeakAcrossStreams(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := mustCreateUser(t, r, "u@example.com")
	stA := mustCreateStream(t, r, "A", u.ID)
	stB := mustCreateStream(t, r, "B", u.ID)

	cu := &models.Customer{StreamID: stA.ID, Name: "only in A"}
	if err := r.CreateCustomer(ctx, cu); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	// Correct stream id, guessed row id from another stream: no row.
	if _, err := r.FindCustomer(ctx, stB.ID, cu.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("customer leaked across streams: %v", err)
	}
	inB, err := r.ListCustomers(ctx, stB.ID, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inB) != 0 {
		t.Errorf("stream B sees %d customers, want 0", len(inB))
	}
}
