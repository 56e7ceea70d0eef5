package db

import (
	"context"
	"errors"
	"testing"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"
)

func TestGetMembershipNotAMember(t *testing.T) {
	r := newTestRepo(t)
	u := mustCreateUser(t, r, "a@example.com")
	outsider := mustCreateUser(t, r, "b@example.com")
	st := mustCreateStream(t, r, "S", u.ID)

	if _, err := r.GetMembership(context.Background(), outsider.ID, st.ID); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("got %v, want ErrNotAMember", err)
	}
}

func TestAddMembershipDeduplicates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	member := mustCreateUser(t, r, "m@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)

	first, err := r.AddMembership(ctx, st.ID, member.ID, models.RoleMember, nil)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	// A second add for the same pair must hand back the original row, not
	// create a sibling or upgrade the role.
	second, err := r.AddMembership(ctx, st.ID, member.ID, models.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("duplicate membership created: %s vs %s", second.ID, first.ID)
	}
	if second.Role != models.RoleMember {
		t.Errorf("role changed on duplicate add: %s", second.Role)
	}

	var n int64
	if err := r.DB.Model(&models.StreamMembership{}).
		Where("stream_id = ? AND user_id = ?", st.ID, member.ID).
		Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("membership rows = %d, want 1", n)
	}
}

func TestLastOwnerCannotBeDemotedOrRemoved(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)

	if _, err := r.UpdateMembership(ctx, st.ID, owner.ID, models.RoleAdmin, nil); !errors.Is(err, ErrLastOwner) {
		t.Errorf("demote sole owner: got %v, want ErrLastOwner", err)
	}
	if err := r.RemoveMembership(ctx, st.ID, owner.ID); !errors.Is(err, ErrLastOwner) {
		t.Errorf("remove sole owner: got %v, want ErrLastOwner", err)
	}

	// With a second owner in place both operations go through.
	co := mustCreateUser(t, r, "co@example.com")
	if _, err := r.AddMembership(ctx, st.ID, co.ID, models.RoleOwner, nil); err != nil {
		t.Fatalf("add co-owner: %v", err)
	}
	if _, err := r.UpdateMembership(ctx, st.ID, owner.ID, models.RoleAdmin, nil); err != nil {
		t.Fatalf("demote with co-owner present: %v", err)
	}
	if err := r.RemoveMembership(ctx, st.ID, owner.ID); err != nil {
		t.Fatalf("remove demoted former owner: %v", err)
	}
}

func TestUpdateMembershipSetsOverrides(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	owner := mustCreateUser(t, r, "o@example.com")
	member := mustCreateUser(t, r, "m@example.com")
	st := mustCreateStream(t, r, "S", owner.ID)
	if _, err := r.AddMembership(ctx, st.ID, member.ID, models.RoleMember, nil); err != nil {
		t.Fatalf("add: %v", err)
	}

	perms := models.BoardPerms{models.BoardDeals: "view"}
	if _, err := r.UpdateMembership(ctx, st.ID, member.ID, models.RoleMember, perms); err != nil {
		t.Fatalf("update: %v", err)
	}

	m, err := r.GetMembership(ctx, member.ID, st.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.EffectiveLevel(models.BoardDeals) != models.PermView {
		t.Errorf("deals level = %s, want view", m.EffectiveLevel(models.BoardDeals))
	}
	if m.EffectiveLevel(models.BoardTasks) != models.PermEdit {
		t.Errorf("tasks level = %s, want role default edit", m.EffectiveLevel(models.BoardTasks))
	}
}
