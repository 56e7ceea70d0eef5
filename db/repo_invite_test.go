package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"
)

func TestCreateInvitationIdempotentWhilePending(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)

	first, err := r.CreateInvitation(ctx, st.ID, "Invitee@Example.com", models.RoleMember, nil, owner.ID, 0)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.Email != "invitee@example.com" {
		t.Errorf("email not normalized: %s", first.Email)
	}
	if first.Status != models.InvitePending {
		t.Errorf("status = %s, want pending", first.Status)
	}

	second, err := r.CreateInvitation(ctx, st.ID, "invitee@example.com", models.RoleViewer, nil, owner.ID, 0)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != first.ID || second.Token != first.Token {
		t.Errorf("issuance not idempotent: %s vs %s", second.ID, first.ID)
	}

	invs, err := r.ListInvitations(ctx, st.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(invs) != 1 {
		t.Errorf("invitation rows = %d, want 1", len(invs))
	}
}

func TestAcceptInvitationCreatesMembership(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)
	invitee := mustCreateUser(t, r, "e@x.com")

	perms := models.BoardPerms{models.BoardDeals: "view"}
	inv, err := r.CreateInvitation(ctx, st.ID, "e@x.com", models.RoleMember, perms, owner.ID, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	m, accepted, err := r.AcceptInvitation(ctx, inv.Token, invitee.ID, "e@x.com")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if m.StreamID != st.ID || m.UserID != invitee.ID || m.Role != models.RoleMember {
		t.Errorf("membership = %+v", m)
	}
	if m.EffectiveLevel(models.BoardDeals) != models.PermView {
		t.Errorf("perms snapshot not applied")
	}
	if accepted.Status != models.InviteAccepted || accepted.AcceptedAt == nil {
		t.Errorf("invitation not marked accepted: %+v", accepted)
	}

	// A fresh invite for the same address now creates a new row, since the
	// old one is no longer pending.
	again, err := r.CreateInvitation(ctx, st.ID, "e@x.com", models.RoleMember, nil, owner.ID, 0)
	if err != nil {
		t.Fatalf("re-invite: %v", err)
	}
	if again.ID == inv.ID {
		t.Error("accepted invitation reused for new issuance")
	}
	if again.Status != models.InvitePending {
		t.Errorf("new invitation status = %s", again.Status)
	}
}

func TestAcceptInvitationAtMostOnce(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)
	invitee := mustCreateUser(t, r, "e@x.com")

	inv, err := r.CreateInvitation(ctx, st.ID, "e@x.com", models.RoleMember, nil, owner.ID, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := r.AcceptInvitation(ctx, inv.Token, invitee.ID, "e@x.com"); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, _, err := r.AcceptInvitation(ctx, inv.Token, invitee.ID, "e@x.com"); !errors.Is(err, ErrInviteResolved) {
		t.Fatalf("second accept: got %v, want ErrInviteResolved", err)
	}

	var n int64
	if err := r.DB.Model(&models.StreamMembership{}).
		Where("stream_id = ? AND user_id = ?", st.ID, invitee.ID).
		Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("memberships = %d, want exactly 1", n)
	}
}

func TestAcceptInvitationWrongIdentity(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)
	impostor := mustCreateUser(t, r, "other@x.com")

	inv, err := r.CreateInvitation(ctx, st.ID, "e@x.com", models.RoleMember, nil, owner.ID, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := r.AcceptInvitation(ctx, inv.Token, impostor.ID, "other@x.com"); !errors.Is(err, ErrWrongIdentity) {
		t.Fatalf("got %v, want ErrWrongIdentity", err)
	}

	// Nothing was mutated: still pending, still no membership.
	after, err := r.GetInvitationByToken(ctx, inv.Token)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Status != models.InvitePending {
		t.Errorf("status = %s, want pending", after.Status)
	}
	if _, err := r.GetMembership(ctx, impostor.ID, st.ID); !errors.Is(err, ErrNotAMember) {
		t.Errorf("impostor gained membership: %v", err)
	}
}

func TestAcceptExpiredInvitation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)
	invitee := mustCreateUser(t, r, "e@x.com")

	inv, err := r.CreateInvitation(ctx, st.ID, "e@x.com", models.RoleMember, nil, owner.ID, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.DB.Model(&models.StreamInvitation{}).
		Where("id = ?", inv.ID).
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate expiry: %v", err)
	}

	if _, _, err := r.AcceptInvitation(ctx, inv.Token, invitee.ID, "e@x.com"); !errors.Is(err, ErrInviteResolved) {
		t.Fatalf("got %v, want ErrInviteResolved", err)
	}

	// Reads flip the stale pending row to expired.
	after, err := r.GetInvitationByToken(ctx, inv.Token)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Status != models.InviteExpired {
		t.Errorf("status = %s, want expired", after.Status)
	}
}

func TestCancelInvitation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)
	invitee := mustCreateUser(t, r, "e@x.com")

	inv, err := r.CreateInvitation(ctx, st.ID, "e@x.com", models.RoleMember, nil, owner.ID, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := r.CancelInvitation(ctx, inv.ID, st.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	// Cancelling twice, or accepting after cancel, reports resolved.
	if err := r.CancelInvitation(ctx, inv.ID, st.ID); !errors.Is(err, ErrInviteResolved) {
		t.Errorf("second cancel: got %v, want ErrInviteResolved", err)
	}
	if _, _, err := r.AcceptInvitation(ctx, inv.Token, invitee.ID, "e@x.com"); !errors.Is(err, ErrInviteResolved) {
		t.Errorf("accept after cancel: got %v, want ErrInviteResolved", err)
	}
}

func TestAcceptKeepsExistingMembership(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)
	member := mustCreateUser(t, r, "e@x.com")

	existing, err := r.AddMembership(ctx, st.ID, member.ID, models.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	inv, err := r.CreateInvitation(ctx, st.ID, "e@x.com", models.RoleViewer, nil, owner.ID, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	m, _, err := r.AcceptInvitation(ctx, inv.Token, member.ID, "e@x.com")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if m.ID != existing.ID || m.Role != models.RoleAdmin {
		t.Errorf("existing membership clobbered: %+v", m)
	}
}
