package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gautamrajanand/crm-supabase-sub000/db"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"
	"github.com/Gautamrajanand/crm-supabase-sub000/session"

	"github.com/gin-gonic/gin"
)

// ErrNoActiveStream means the caller has no memberships at all, so no
// stream could be resolved.
var ErrNoActiveStream = errors.New("no active stream")

// StreamDirectory is the membership lookup surface the resolver needs;
// *db.Repo satisfies it.
type StreamDirectory interface {
	ListStreamsForUser(ctx context.Context, userID string) ([]db.StreamEntry, error)
	GetMembership(ctx context.Context, userID, streamID string) (*models.StreamMembership, error)
}

// ActiveRefStore is the persisted-reference surface the resolver needs;
// *session.ActiveStreamStore satisfies it.
type ActiveRefStore interface {
	Get(ctx context.Context, sessionID string) (*session.StreamRef, error)
}

// ActiveStreamState adds the epoch counter; the middleware needs both.
type ActiveStreamState interface {
	ActiveRefStore
	Epoch(ctx context.Context, sessionID string) (int64, error)
}

// ResolveActiveStream picks the stream a request operates on:
//
//  1. explicit ?stream= id, if it maps to a membership of the caller;
//  2. the persisted reference (Redis, then the mirrored cookie), same check;
//  3. the caller's earliest membership;
//  4. ErrNoActiveStream when the directory is empty.
//
// Ids from the URL or cookie are client-supplied and may be stale or
// forged; failing the membership check silently falls through, it is never
// an error by itself.
func ResolveActiveStream(ctx context.Context, dir StreamDirectory, store ActiveRefStore, sessionID, userID, requested, cookieVal string) (*models.StreamMembership, error) {
	if requested != "" {
		m, err := dir.GetMembership(ctx, userID, requested)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, db.ErrNotAMember) {
			return nil, err
		}
	}

	if store != nil && sessionID != "" {
		ref, err := store.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if ref != nil && ref.StreamID != "" && ref.StreamID != requested {
			m, err := dir.GetMembership(ctx, userID, ref.StreamID)
			if err == nil {
				return m, nil
			}
			if !errors.Is(err, db.ErrNotAMember) {
				return nil, err
			}
		}
	}

	if cookieVal != "" && cookieVal != requested {
		m, err := dir.GetMembership(ctx, userID, cookieVal)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, db.ErrNotAMember) {
			return nil, err
		}
	}

	entries, err := dir.ListStreamsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoActiveStream
	}
	return dir.GetMembership(ctx, userID, entries[0].ID)
}

// StreamRequired resolves the active stream for the request and stashes
// the membership plus the epoch observed at entry. Scoped handlers compare
// that epoch against the store after their DB reads; a mismatch means the
// session switched streams mid-flight and the response must be discarded.
func StreamRequired(repo *db.Repo, streams ActiveStreamState) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := SessionID(c)
		userID := UserID(c)

		cookieVal := ""
		if ck, err := c.Request.Cookie(StreamCookie); err == nil {
			cookieVal = ck.Value
		}

		// The epoch is captured before the reference is read. A switch
		// landing between the two reads leaves the captured epoch behind
		// the store's, so the staleness check fails closed instead of
		// tagging an old-stream membership with a post-switch epoch.
		epoch, err := streams.Epoch(c.Request.Context(), sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": err.Error()})
			return
		}

		m, err := ResolveActiveStream(c.Request.Context(), repo, streams,
			sessionID, userID, c.Query("stream"), cookieVal)
		if errors.Is(err, ErrNoActiveStream) {
			c.AbortWithStatusJSON(http.StatusConflict, H{"error": "no active stream"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": err.Error()})
			return
		}

		c.Set("membership", m)
		c.Set("streamID", m.StreamID)
		c.Set("streamEpoch", epoch)
		c.Next()
	}
}

func Membership(c *gin.Context) *models.StreamMembership {
	v, _ := c.Get("membership")
	m, _ := v.(*models.StreamMembership)
	return m
}

func StreamID(c *gin.Context) string {
	v, _ := c.Get("streamID")
	s, _ := v.(string)
	return s
}

func StreamEpoch(c *gin.Context) int64 {
	v, _ := c.Get("streamEpoch")
	n, _ := v.(int64)
	return n
}

// BoardAccess gates a route on the caller's effective level for a board.
func BoardAccess(board models.Board, required models.PermLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := Membership(c)
		if m == nil || !m.HasPermission(board, required) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// ManagerOnly allows owners and admins; they hold invite and membership
// management rights.
func ManagerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := Membership(c)
		if m == nil || !m.Role.CanInvite() {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// OwnerOnly gates destructive stream operations.
func OwnerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		m := Membership(c)
		if m == nil || m.Role != models.RoleOwner {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
