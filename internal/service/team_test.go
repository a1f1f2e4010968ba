package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"team-manager/internal/apperrors"
	"team-manager/internal/domain/models"
	"team-manager/internal/repo/memory"
)

const testMaxMembers = 6

func newTestService() (*TeamService, *memory.Store) {
	store := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTeamService(log, store, store, store, testMaxMembers), store
}

func addProfile(t *testing.T, store *memory.Store, ign, uid string) *models.Profile {
	t.Helper()

	profile := models.Profile{
		ID:        uuid.NewString(),
		UID:       uid,
		IGN:       ign,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateProfile(context.Background(), profile); err != nil {
		t.Fatalf("failed to add profile %s: %v", ign, err)
	}
	return &profile
}

func mustCreateTeam(t *testing.T, svc *TeamService, adminID, name string) *models.Team {
	t.Helper()

	team, err := svc.CreateTeam(context.Background(), adminID, name)
	if err != nil {
		t.Fatalf("failed to create team %q: %v", name, err)
	}
	return team
}

func onlyNotification(t *testing.T, store *memory.Store, userID string) models.Notification {
	t.Helper()

	notifications, err := store.ListByRecipient(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected exactly 1 notification for %s, got %d", userID, len(notifications))
	}
	return notifications[0]
}

func TestCreateTeam(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	admin := addProfile(t, store, "Alpha", "100000001")

	team := mustCreateTeam(t, svc, admin.ID, "Shadow")

	if team.AdminID != admin.ID {
		t.Fatalf("expected admin %s, got %s", admin.ID, team.AdminID)
	}
	if len(team.TeamCode) != 6 {
		t.Fatalf("expected 6-char team code, got %q", team.TeamCode)
	}
	if team.MaxMembers != testMaxMembers {
		t.Fatalf("expected max members %d, got %d", testMaxMembers, team.MaxMembers)
	}

	got, err := store.GetProfile(ctx, admin.ID)
	if err != nil {
		t.Fatalf("failed to reload admin: %v", err)
	}
	if got.TeamID == nil || *got.TeamID != team.ID {
		t.Fatalf("admin profile not linked to team: %+v", got)
	}
	if !got.IsTeamAdmin {
		t.Fatalf("admin profile should have is_team_admin set")
	}
}

func TestCreateTeamAlreadyInTeam(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	admin := addProfile(t, store, "Alpha", "100000001")
	mustCreateTeam(t, svc, admin.ID, "Shadow")

	_, err := svc.CreateTeam(ctx, admin.ID, "Second")
	if !errors.Is(err, apperrors.ErrAlreadyInTeam) {
		t.Fatalf("expected ErrAlreadyInTeam, got %v", err)
	}
}

func TestCreateTeamNameRequired(t *testing.T) {
	svc, store := newTestService()

	admin := addProfile(t, store, "Alpha", "100000001")

	_, err := svc.CreateTeam(context.Background(), admin.ID, "   ")
	if !errors.Is(err, apperrors.ErrTeamNameRequired) {
		t.Fatalf("expected ErrTeamNameRequired, got %v", err)
	}
}

func TestJoinByCodeRoundTrip(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	team := mustCreateTeam(t, svc, u1.ID, "Alpha Squad")

	if _, err := svc.RequestJoinByCode(ctx, u2.ID, team.TeamCode); err != nil {
		t.Fatalf("failed to request join: %v", err)
	}

	// The admin should hold an actionable join request carrying U2.
	request := onlyNotification(t, store, u1.ID)
	if request.Kind != models.NotificationKindTeamRequest {
		t.Fatalf("expected team_request, got %q", request.Kind)
	}
	if !request.ActionRequired {
		t.Fatalf("join request should require an action")
	}
	if request.ActorID == nil || *request.ActorID != u2.ID {
		t.Fatalf("join request should reference the requester")
	}

	// Membership is two-phase: nothing has changed yet.
	mid, err := store.GetProfile(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to reload requester: %v", err)
	}
	if mid.TeamID != nil {
		t.Fatalf("requester should not be in a team before accept")
	}

	if _, err := svc.AcceptRequest(ctx, u1.ID, request.ID); err != nil {
		t.Fatalf("failed to accept request: %v", err)
	}

	joined, err := store.GetProfile(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to reload requester: %v", err)
	}
	if joined.TeamID == nil || *joined.TeamID != team.ID {
		t.Fatalf("requester not joined to team: %+v", joined)
	}
	if joined.IsTeamAdmin {
		t.Fatalf("joined member must not be admin")
	}

	roster, err := store.GetTeamWithMembers(ctx, team.ID)
	if err != nil {
		t.Fatalf("failed to load roster: %v", err)
	}
	if len(roster.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(roster.Members))
	}

	// The requester gets told the request went through.
	accepted := onlyNotification(t, store, u2.ID)
	if accepted.Kind != models.NotificationKindTeamInfo || accepted.ActionRequired {
		t.Fatalf("acceptance note should be informational, got %+v", accepted)
	}
}

func TestJoinByCodeLowercaseNormalized(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")

	if _, err := svc.RequestJoinByCode(ctx, u2.ID, "  "+strings.ToLower(team.TeamCode)+"  "); err != nil {
		t.Fatalf("lowercase padded code should still resolve: %v", err)
	}
}

func TestJoinByCodeTeamNotFound(t *testing.T) {
	svc, store := newTestService()

	u2 := addProfile(t, store, "Bravo", "100000002")

	_, err := svc.RequestJoinByCode(context.Background(), u2.ID, "ZZZZZZ")
	if !errors.Is(err, apperrors.ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
}

func TestInviteScenario(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")

	candidate, err := svc.SearchCandidate(ctx, u1.ID, u2.UID)
	if err != nil {
		t.Fatalf("failed to search candidate: %v", err)
	}
	if candidate.ID != u2.ID {
		t.Fatalf("search returned wrong player: %+v", candidate)
	}

	if err := svc.Invite(ctx, u1.ID, u2.ID); err != nil {
		t.Fatalf("failed to invite: %v", err)
	}

	invite := onlyNotification(t, store, u2.ID)
	if invite.Kind != models.NotificationKindTeamInvite || !invite.ActionRequired {
		t.Fatalf("expected actionable team_invite, got %+v", invite)
	}

	joinedTeam, err := svc.AcceptInvite(ctx, u2.ID, invite.ID)
	if err != nil {
		t.Fatalf("failed to accept invite: %v", err)
	}
	if joinedTeam.ID != team.ID {
		t.Fatalf("joined wrong team: %s", joinedTeam.ID)
	}

	member, err := store.GetProfile(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to reload member: %v", err)
	}
	if member.TeamID == nil || *member.TeamID != team.ID || member.IsTeamAdmin {
		t.Fatalf("member state wrong after accept: %+v", member)
	}

	// Admin receives the informational "member joined" note.
	joined := onlyNotification(t, store, u1.ID)
	if joined.Kind != models.NotificationKindTeamInfo || joined.ActionRequired {
		t.Fatalf("expected informational note for admin, got %+v", joined)
	}
}

func TestSearchCandidateErrors(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")
	u3 := addProfile(t, store, "Charlie", "100000003")

	mustCreateTeam(t, svc, u1.ID, "Shadow")
	mustCreateTeam(t, svc, u3.ID, "Rivals")

	tests := []struct {
		name      string
		requester string
		uid       string
		wantErr   error
	}{
		{"non-admin cannot search", u2.ID, u1.UID, apperrors.ErrNotAuthorized},
		{"unknown uid", u1.ID, "999999999", apperrors.ErrPlayerNotFound},
		{"self search", u1.ID, u1.UID, apperrors.ErrSelfInvite},
		{"candidate already in team", u1.ID, u3.UID, apperrors.ErrAlreadyInTeam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SearchCandidate(ctx, tt.requester, tt.uid)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInviteDuplicate(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	mustCreateTeam(t, svc, u1.ID, "Shadow")

	if err := svc.Invite(ctx, u1.ID, u2.ID); err != nil {
		t.Fatalf("first invite failed: %v", err)
	}

	err := svc.Invite(ctx, u1.ID, u2.ID)
	if !errors.Is(err, apperrors.ErrDuplicateInvite) {
		t.Fatalf("expected ErrDuplicateInvite, got %v", err)
	}
}

func TestInviteSelf(t *testing.T) {
	svc, store := newTestService()

	u1 := addProfile(t, store, "Alpha", "100000001")
	mustCreateTeam(t, svc, u1.ID, "Shadow")

	err := svc.Invite(context.Background(), u1.ID, u1.ID)
	if !errors.Is(err, apperrors.ErrSelfInvite) {
		t.Fatalf("expected ErrSelfInvite, got %v", err)
	}
}

func fillTeam(t *testing.T, svc *TeamService, store *memory.Store, adminID, teamID string, upTo int) {
	t.Helper()
	ctx := context.Background()

	count, err := store.MemberCount(ctx, teamID)
	if err != nil {
		t.Fatalf("failed to count members: %v", err)
	}

	for i := 0; count+i < upTo; i++ {
		filler := addProfile(t, store, fmt.Sprintf("Filler%d", i), fmt.Sprintf("20000000%d", i))
		if err := store.JoinTeam(ctx, filler.ID, teamID); err != nil {
			t.Fatalf("failed to fill team: %v", err)
		}
	}
}

func TestTeamFullBoundary(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	outsider := addProfile(t, store, "Omega", "100000009")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")
	fillTeam(t, svc, store, u1.ID, team.ID, testMaxMembers)

	if _, err := svc.RequestJoinByCode(ctx, outsider.ID, team.TeamCode); !errors.Is(err, apperrors.ErrTeamFull) {
		t.Fatalf("expected ErrTeamFull on join request, got %v", err)
	}

	if err := svc.Invite(ctx, u1.ID, outsider.ID); !errors.Is(err, apperrors.ErrTeamFull) {
		t.Fatalf("expected ErrTeamFull on invite, got %v", err)
	}
}

func TestAcceptInviteTeamFilledMeanwhile(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")

	if err := svc.Invite(ctx, u1.ID, u2.ID); err != nil {
		t.Fatalf("failed to invite: %v", err)
	}
	invite := onlyNotification(t, store, u2.ID)

	// Roster fills up between invite and accept.
	fillTeam(t, svc, store, u1.ID, team.ID, testMaxMembers)

	_, err := svc.AcceptInvite(ctx, u2.ID, invite.ID)
	if !errors.Is(err, apperrors.ErrTeamFull) {
		t.Fatalf("expected ErrTeamFull at accept time, got %v", err)
	}

	// The raced accept must still consume the notification.
	remaining, err := store.ListByRecipient(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("stale invite should be gone, got %d notifications", len(remaining))
	}

	// And the responder stays unaffiliated.
	p, err := store.GetProfile(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to reload responder: %v", err)
	}
	if p.TeamID != nil {
		t.Fatalf("responder must not join a full team")
	}
}

func TestAcceptRequestRequesterJoinedElsewhere(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")
	u3 := addProfile(t, store, "Charlie", "100000003")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")

	if _, err := svc.RequestJoinByCode(ctx, u2.ID, team.TeamCode); err != nil {
		t.Fatalf("failed to request join: %v", err)
	}
	request := onlyNotification(t, store, u1.ID)

	// U2 joins U3's team before the admin reacts.
	rival := mustCreateTeam(t, svc, u3.ID, "Rivals")
	if err := store.JoinTeam(ctx, u2.ID, rival.ID); err != nil {
		t.Fatalf("failed to join rival team: %v", err)
	}

	_, err := svc.AcceptRequest(ctx, u1.ID, request.ID)
	if !errors.Is(err, apperrors.ErrAlreadyInTeam) {
		t.Fatalf("expected ErrAlreadyInTeam at accept time, got %v", err)
	}

	// Stale request consumed regardless.
	remaining, err := store.ListByRecipient(ctx, u1.ID)
	if err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("stale request should be gone, got %d notifications", len(remaining))
	}
}

func TestConsumeIdempotence(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	mustCreateTeam(t, svc, u1.ID, "Shadow")

	if err := svc.Invite(ctx, u1.ID, u2.ID); err != nil {
		t.Fatalf("failed to invite: %v", err)
	}
	invite := onlyNotification(t, store, u2.ID)

	if _, err := svc.AcceptInvite(ctx, u2.ID, invite.ID); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	memberBefore, err := store.GetProfile(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to reload member: %v", err)
	}

	_, err = svc.AcceptInvite(ctx, u2.ID, invite.ID)
	if !errors.Is(err, apperrors.ErrNotificationNotFound) {
		t.Fatalf("second accept should fail with ErrNotificationNotFound, got %v", err)
	}

	memberAfter, err := store.GetProfile(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to reload member: %v", err)
	}
	if *memberBefore.TeamID != *memberAfter.TeamID || memberBefore.IsTeamAdmin != memberAfter.IsTeamAdmin {
		t.Fatalf("second accept must not change state")
	}
}

func TestDeclineInvite(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	mustCreateTeam(t, svc, u1.ID, "Shadow")

	if err := svc.Invite(ctx, u1.ID, u2.ID); err != nil {
		t.Fatalf("failed to invite: %v", err)
	}
	invite := onlyNotification(t, store, u2.ID)

	if err := svc.DeclineInvite(ctx, u2.ID, invite.ID); err != nil {
		t.Fatalf("failed to decline: %v", err)
	}

	// No membership change, notification gone.
	p, err := store.GetProfile(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to reload profile: %v", err)
	}
	if p.TeamID != nil {
		t.Fatalf("decline must not mutate membership")
	}

	if err := svc.DeclineInvite(ctx, u2.ID, invite.ID); !errors.Is(err, apperrors.ErrNotificationNotFound) {
		t.Fatalf("second decline should fail with ErrNotificationNotFound, got %v", err)
	}
}

func TestAcceptWrongRecipient(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")
	u3 := addProfile(t, store, "Charlie", "100000003")

	mustCreateTeam(t, svc, u1.ID, "Shadow")

	if err := svc.Invite(ctx, u1.ID, u2.ID); err != nil {
		t.Fatalf("failed to invite: %v", err)
	}
	invite := onlyNotification(t, store, u2.ID)

	// A notification is recipient-owned; others cannot consume it.
	_, err := svc.AcceptInvite(ctx, u3.ID, invite.ID)
	if !errors.Is(err, apperrors.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for wrong recipient, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")
	if err := store.JoinTeam(ctx, u2.ID, team.ID); err != nil {
		t.Fatalf("failed to join: %v", err)
	}

	if err := svc.RemoveMember(ctx, u1.ID, u2.ID); err != nil {
		t.Fatalf("failed to remove member: %v", err)
	}

	p, err := store.GetProfile(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to reload member: %v", err)
	}
	if p.TeamID != nil || p.IsTeamAdmin {
		t.Fatalf("removed member should be unaffiliated: %+v", p)
	}

	removed := onlyNotification(t, store, u2.ID)
	if removed.Kind != models.NotificationKindTeamInfo || removed.ActionRequired {
		t.Fatalf("expected informational removal note, got %+v", removed)
	}
}

func TestRemoveMemberNotAdmin(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")
	if err := store.JoinTeam(ctx, u2.ID, team.ID); err != nil {
		t.Fatalf("failed to join: %v", err)
	}

	if err := svc.RemoveMember(ctx, u2.ID, u1.ID); !errors.Is(err, apperrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestRemoveMemberSelf(t *testing.T) {
	svc, store := newTestService()

	u1 := addProfile(t, store, "Alpha", "100000001")
	mustCreateTeam(t, svc, u1.ID, "Shadow")

	// Removing yourself as admin is dissolution, not removal.
	if err := svc.RemoveMember(context.Background(), u1.ID, u1.ID); !errors.Is(err, apperrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestLeaveTeam(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")
	if err := store.JoinTeam(ctx, u2.ID, team.ID); err != nil {
		t.Fatalf("failed to join: %v", err)
	}

	if err := svc.LeaveTeam(ctx, u2.ID); err != nil {
		t.Fatalf("failed to leave: %v", err)
	}

	p, err := store.GetProfile(ctx, u2.ID)
	if err != nil {
		t.Fatalf("failed to reload member: %v", err)
	}
	if p.TeamID != nil {
		t.Fatalf("leaver should be unaffiliated")
	}
}

func TestLeaveTeamAdminMustDissolve(t *testing.T) {
	svc, store := newTestService()

	u1 := addProfile(t, store, "Alpha", "100000001")
	mustCreateTeam(t, svc, u1.ID, "Shadow")

	if err := svc.LeaveTeam(context.Background(), u1.ID); !errors.Is(err, apperrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for admin leave, got %v", err)
	}
}

func TestLeaveTeamNotInTeam(t *testing.T) {
	svc, store := newTestService()

	u1 := addProfile(t, store, "Alpha", "100000001")

	if err := svc.LeaveTeam(context.Background(), u1.ID); !errors.Is(err, apperrors.ErrNotInTeam) {
		t.Fatalf("expected ErrNotInTeam, got %v", err)
	}
}

func TestDissolveTeam(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")
	u3 := addProfile(t, store, "Charlie", "100000003")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")
	for _, id := range []string{u2.ID, u3.ID} {
		if err := store.JoinTeam(ctx, id, team.ID); err != nil {
			t.Fatalf("failed to join: %v", err)
		}
	}

	if err := svc.DissolveTeam(ctx, u1.ID); err != nil {
		t.Fatalf("failed to dissolve: %v", err)
	}

	if _, err := store.GetTeamByID(ctx, team.ID); !errors.Is(err, apperrors.ErrTeamNotFound) {
		t.Fatalf("team should be deleted, got %v", err)
	}

	for _, id := range []string{u1.ID, u2.ID, u3.ID} {
		p, err := store.GetProfile(ctx, id)
		if err != nil {
			t.Fatalf("failed to reload profile: %v", err)
		}
		if p.TeamID != nil || p.IsTeamAdmin {
			t.Fatalf("profile %s still references dissolved team", id)
		}
	}

	// Members, not the admin, get the dissolution note.
	for _, id := range []string{u2.ID, u3.ID} {
		n := onlyNotification(t, store, id)
		if n.Title != "Team Dissolved" {
			t.Fatalf("expected dissolution note, got %+v", n)
		}
	}
	adminNotes, err := store.ListByRecipient(ctx, u1.ID)
	if err != nil {
		t.Fatalf("failed to list admin notifications: %v", err)
	}
	if len(adminNotes) != 0 {
		t.Fatalf("admin should not be notified of own dissolution")
	}
}

func TestDissolveTeamNotAdmin(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")

	team := mustCreateTeam(t, svc, u1.ID, "Shadow")
	if err := store.JoinTeam(ctx, u2.ID, team.ID); err != nil {
		t.Fatalf("failed to join: %v", err)
	}

	if err := svc.DissolveTeam(ctx, u2.ID); !errors.Is(err, apperrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestReconcileOrphan(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	// Team was deleted out of band while the profile still references it.
	ghostTeam := uuid.NewString()
	orphan := models.Profile{
		ID:          uuid.NewString(),
		UID:         "100000007",
		IGN:         "Ghost",
		TeamID:      &ghostTeam,
		IsTeamAdmin: true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.CreateProfile(ctx, orphan); err != nil {
		t.Fatalf("failed to seed orphan: %v", err)
	}

	_, err := svc.GetMyTeam(ctx, orphan.ID)
	if !errors.Is(err, apperrors.ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}

	healed, err := store.GetProfile(ctx, orphan.ID)
	if err != nil {
		t.Fatalf("failed to reload orphan: %v", err)
	}
	if healed.TeamID != nil || healed.IsTeamAdmin {
		t.Fatalf("dangling membership should be cleared: %+v", healed)
	}
}

func TestGetMyTeamRoundTrip(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	team := mustCreateTeam(t, svc, u1.ID, "Shadow")

	got, err := svc.GetMyTeam(ctx, u1.ID)
	if err != nil {
		t.Fatalf("failed to get team: %v", err)
	}
	if got.ID != team.ID {
		t.Fatalf("got wrong team: %s", got.ID)
	}
	if len(got.Members) != 1 || got.Members[0].ID != u1.ID {
		t.Fatalf("expected roster with only admin, got %+v", got.Members)
	}
}

func TestTeamInvariantsAtRest(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u1 := addProfile(t, store, "Alpha", "100000001")
	u2 := addProfile(t, store, "Bravo", "100000002")
	u3 := addProfile(t, store, "Charlie", "100000003")

	t1 := mustCreateTeam(t, svc, u1.ID, "Shadow")
	t2 := mustCreateTeam(t, svc, u3.ID, "Rivals")

	if t1.TeamCode == t2.TeamCode {
		t.Fatalf("active team codes must be unique")
	}

	if err := store.JoinTeam(ctx, u2.ID, t1.ID); err != nil {
		t.Fatalf("failed to join: %v", err)
	}

	for _, teamID := range []string{t1.ID, t2.ID} {
		team, err := store.GetTeamWithMembers(ctx, teamID)
		if err != nil {
			t.Fatalf("failed to load team: %v", err)
		}
		if len(team.Members) > team.MaxMembers {
			t.Fatalf("team %s over capacity", teamID)
		}

		admins := 0
		for _, m := range team.Members {
			if m.IsTeamAdmin {
				admins++
				if m.ID != team.AdminID {
					t.Fatalf("admin flag on non-admin member %s", m.ID)
				}
			}
		}
		if admins != 1 {
			t.Fatalf("expected exactly one admin in team %s, got %d", teamID, admins)
		}
	}
}
