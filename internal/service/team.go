package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"team-manager/internal/apperrors"
	"team-manager/internal/domain/models"
	"team-manager/internal/lib/logger/sl"
	"team-manager/internal/lib/teamcode"
)

// TeamService owns team lifecycle and the membership invariant on profiles.
// Membership changes go through a two-phase handshake: a join request or an
// invite enqueues an actionable notification, and the recipient's accept or
// decline consumes it. Every mutation re-validates its preconditions against
// the store at write time, so stale notifications fail cleanly instead of
// breaking the roster.
type TeamService struct {
	log        *slog.Logger
	teamRepo   TeamProvider
	profiles   ProfileProvider
	notifier   NotificationProvider
	maxMembers int
}

type TeamProvider interface {
	CreateTeamWithAdmin(ctx context.Context, team models.Team) error
	GetTeamByID(ctx context.Context, teamID string) (*models.Team, error)
	GetTeamByCode(ctx context.Context, code string) (*models.Team, error)
	GetTeamWithMembers(ctx context.Context, teamID string) (*models.Team, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	MemberCount(ctx context.Context, teamID string) (int, error)
	JoinTeam(ctx context.Context, profileID, teamID string) error
	RemoveMember(ctx context.Context, teamID, profileID string) error
	DissolveTeam(ctx context.Context, teamID string) ([]models.Profile, error)
}

type ProfileProvider interface {
	GetProfile(ctx context.Context, profileID string) (*models.Profile, error)
	FindProfileByUID(ctx context.Context, uid string) (*models.Profile, error)
	ClearTeam(ctx context.Context, profileID string) error
}

type NotificationProvider interface {
	Enqueue(ctx context.Context, n models.Notification) error
	Consume(ctx context.Context, notificationID, recipientID string) (*models.Notification, error)
	HasPendingInvite(ctx context.Context, teamID, candidateID string) (bool, error)
}

func NewTeamService(
	log *slog.Logger,
	teamRepo TeamProvider,
	profiles ProfileProvider,
	notifier NotificationProvider,
	maxMembers int) *TeamService {
	return &TeamService{
		log:        log,
		teamRepo:   teamRepo,
		profiles:   profiles,
		notifier:   notifier,
		maxMembers: maxMembers,
	}
}

// codeAttempts bounds retries when a freshly drawn join code collides with
// an active team.
const codeAttempts = 5

func (s *TeamService) CreateTeam(ctx context.Context, requesterID, teamName string) (*models.Team, error) {
	const op = "service.team.CreateTeam"

	log := s.log.With(
		slog.String("op", op),
		slog.String("requester_id", requesterID),
		slog.String("team_name", teamName),
	)

	log.Info("attempting to create team")

	if strings.TrimSpace(teamName) == "" {
		log.Error("team name is required")
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamNameRequired)
	}

	requester, err := s.profiles.GetProfile(ctx, requesterID)
	if err != nil {
		log.Error("failed to get requester profile", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if requester.TeamID != nil {
		log.Warn("requester already in a team")
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyInTeam)
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := teamcode.Generate()

		inUse, err := s.teamRepo.CodeInUse(ctx, code)
		if err != nil {
			log.Error("failed to check code uniqueness", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if inUse {
			continue
		}

		team := models.Team{
			ID:         uuid.NewString(),
			Name:       strings.TrimSpace(teamName),
			TeamCode:   code,
			AdminID:    requester.ID,
			MaxMembers: s.maxMembers,
			CreatedAt:  time.Now().UTC(),
		}

		err = s.teamRepo.CreateTeamWithAdmin(ctx, team)
		if errors.Is(err, apperrors.ErrCodeCollision) {
			// Another creation grabbed the same code between our check
			// and the insert. Draw again.
			continue
		}
		if err != nil {
			log.Error("failed to create team", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("team created successfully",
			slog.String("team_id", team.ID),
			slog.String("team_code", team.TeamCode))

		return &team, nil
	}

	log.Error("exhausted join code attempts")
	return nil, fmt.Errorf("%s: %w", op, apperrors.ErrCodeCollision)
}

// RequestJoinByCode enqueues a join request to the team admin. Membership is
// not mutated here; the admin's accept completes the handshake.
func (s *TeamService) RequestJoinByCode(ctx context.Context, requesterID, code string) (*models.Team, error) {
	const op = "service.team.RequestJoinByCode"

	log := s.log.With(
		slog.String("op", op),
		slog.String("requester_id", requesterID),
	)

	log.Info("attempting to request join by code")

	requester, err := s.profiles.GetProfile(ctx, requesterID)
	if err != nil {
		log.Error("failed to get requester profile", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if requester.TeamID != nil {
		log.Warn("requester already in a team")
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyInTeam)
	}

	team, err := s.teamRepo.GetTeamByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		log.Error("failed to find team by code", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.teamRepo.MemberCount(ctx, team.ID)
	if err != nil {
		log.Error("failed to count team members", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count >= team.MaxMembers {
		log.Warn("team is full", slog.String("team_id", team.ID))
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamFull)
	}

	notification := models.Notification{
		ID:             uuid.NewString(),
		UserID:         team.AdminID,
		Kind:           models.NotificationKindTeamRequest,
		Title:          "Team Join Request",
		Message:        fmt.Sprintf("%s wants to join your team %q", requester.IGN, team.Name),
		ActionRequired: true,
		TeamID:         &team.ID,
		ActorID:        &requester.ID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.notifier.Enqueue(ctx, notification); err != nil {
		log.Error("failed to enqueue join request", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("join request sent to team admin", slog.String("team_id", team.ID))

	return team, nil
}

// SearchCandidate looks up a player by public UID on behalf of a team admin
// and validates that an invite would currently succeed. Read-only.
func (s *TeamService) SearchCandidate(ctx context.Context, requesterID, uid string) (*models.Profile, error) {
	const op = "service.team.SearchCandidate"

	log := s.log.With(
		slog.String("op", op),
		slog.String("requester_id", requesterID),
		slog.String("uid", uid),
	)

	log.Info("searching invite candidate")

	requester, team, err := s.requireAdmin(ctx, requesterID)
	if err != nil {
		log.Error("admin check failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	candidate, err := s.profiles.FindProfileByUID(ctx, strings.TrimSpace(uid))
	if err != nil {
		log.Error("failed to find candidate", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if candidate.ID == requester.ID {
		log.Warn("requester searched for themselves")
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrSelfInvite)
	}

	if candidate.TeamID != nil {
		log.Warn("candidate already in a team")
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyInTeam)
	}

	count, err := s.teamRepo.MemberCount(ctx, team.ID)
	if err != nil {
		log.Error("failed to count team members", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count >= team.MaxMembers {
		log.Warn("team is full")
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamFull)
	}

	log.Info("candidate found", slog.String("candidate_id", candidate.ID))

	return candidate, nil
}

func (s *TeamService) Invite(ctx context.Context, requesterID, candidateID string) error {
	const op = "service.team.Invite"

	log := s.log.With(
		slog.String("op", op),
		slog.String("requester_id", requesterID),
		slog.String("candidate_id", candidateID),
	)

	log.Info("attempting to invite player")

	requester, team, err := s.requireAdmin(ctx, requesterID)
	if err != nil {
		log.Error("admin check failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if candidateID == requester.ID {
		log.Warn("requester invited themselves")
		return fmt.Errorf("%s: %w", op, apperrors.ErrSelfInvite)
	}

	candidate, err := s.profiles.GetProfile(ctx, candidateID)
	if err != nil {
		log.Error("failed to get candidate profile", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if candidate.TeamID != nil {
		log.Warn("candidate already in a team")
		return fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyInTeam)
	}

	count, err := s.teamRepo.MemberCount(ctx, team.ID)
	if err != nil {
		log.Error("failed to count team members", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if count >= team.MaxMembers {
		log.Warn("team is full")
		return fmt.Errorf("%s: %w", op, apperrors.ErrTeamFull)
	}

	pending, err := s.notifier.HasPendingInvite(ctx, team.ID, candidate.ID)
	if err != nil {
		log.Error("failed to check pending invites", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if pending {
		log.Warn("invitation already pending")
		return fmt.Errorf("%s: %w", op, apperrors.ErrDuplicateInvite)
	}

	notification := models.Notification{
		ID:             uuid.NewString(),
		UserID:         candidate.ID,
		Kind:           models.NotificationKindTeamInvite,
		Title:          "Team Invitation",
		Message:        fmt.Sprintf("%s invited you to join team %q", requester.IGN, team.Name),
		ActionRequired: true,
		TeamID:         &team.ID,
		ActorID:        &requester.ID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.notifier.Enqueue(ctx, notification); err != nil {
		log.Error("failed to enqueue invitation", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("invitation sent", slog.String("candidate_ign", candidate.IGN))

	return nil
}

// AcceptInvite consumes the invitation and joins the responder to the team.
// The notification is deleted first: a raced accept (team filled up, player
// joined elsewhere) still clears the actionable item and surfaces the reason.
func (s *TeamService) AcceptInvite(ctx context.Context, responderID, notificationID string) (*models.Team, error) {
	const op = "service.team.AcceptInvite"

	log := s.log.With(
		slog.String("op", op),
		slog.String("responder_id", responderID),
		slog.String("notification_id", notificationID),
	)

	log.Info("attempting to accept team invitation")

	responder, err := s.profiles.GetProfile(ctx, responderID)
	if err != nil {
		log.Error("failed to get responder profile", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.notifier.Consume(ctx, notificationID, responderID)
	if err != nil {
		log.Error("failed to consume notification", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if n.Kind != models.NotificationKindTeamInvite || n.TeamID == nil {
		log.Error("notification is not a team invitation", slog.String("kind", n.Kind))
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotActionable)
	}

	if responder.TeamID != nil {
		log.Warn("responder already in a team")
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyInTeam)
	}

	team, err := s.teamRepo.GetTeamByID(ctx, *n.TeamID)
	if err != nil {
		log.Error("invited team no longer exists", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.teamRepo.JoinTeam(ctx, responder.ID, team.ID); err != nil {
		log.Error("failed to join team", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	joined := models.Notification{
		ID:        uuid.NewString(),
		UserID:    team.AdminID,
		Kind:      models.NotificationKindTeamInfo,
		Title:     "Member Joined",
		Message:   fmt.Sprintf("%s has joined your team %q", responder.IGN, team.Name),
		TeamID:    &team.ID,
		ActorID:   &responder.ID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notifier.Enqueue(ctx, joined); err != nil {
		// Membership is already committed; the admin just misses the note.
		log.Error("failed to notify team admin", sl.Err(err))
	}

	log.Info("invitation accepted", slog.String("team_id", team.ID))

	return team, nil
}

func (s *TeamService) DeclineInvite(ctx context.Context, responderID, notificationID string) error {
	const op = "service.team.DeclineInvite"

	log := s.log.With(
		slog.String("op", op),
		slog.String("responder_id", responderID),
		slog.String("notification_id", notificationID),
	)

	log.Info("declining team invitation")

	if _, err := s.notifier.Consume(ctx, notificationID, responderID); err != nil {
		log.Error("failed to consume notification", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("invitation declined")

	return nil
}

// AcceptRequest lets a team admin approve a pending join request. The
// requester may have joined another team or the roster may have filled since
// the request was sent; either way the notification is consumed and the
// admin gets the precise reason.
func (s *TeamService) AcceptRequest(ctx context.Context, adminID, notificationID string) (*models.Profile, error) {
	const op = "service.team.AcceptRequest"

	log := s.log.With(
		slog.String("op", op),
		slog.String("admin_id", adminID),
		slog.String("notification_id", notificationID),
	)

	log.Info("attempting to accept join request")

	admin, team, err := s.requireAdmin(ctx, adminID)
	if err != nil {
		log.Error("admin check failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.notifier.Consume(ctx, notificationID, adminID)
	if err != nil {
		log.Error("failed to consume notification", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if n.Kind != models.NotificationKindTeamRequest || n.TeamID == nil || n.ActorID == nil {
		log.Error("notification is not a join request", slog.String("kind", n.Kind))
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotActionable)
	}

	if *n.TeamID != team.ID {
		log.Error("request targets a different team", slog.String("team_id", *n.TeamID))
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotAuthorized)
	}

	requester, err := s.profiles.GetProfile(ctx, *n.ActorID)
	if err != nil {
		log.Error("failed to get requester profile", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.teamRepo.JoinTeam(ctx, requester.ID, team.ID); err != nil {
		log.Error("failed to join requester to team", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accepted := models.Notification{
		ID:        uuid.NewString(),
		UserID:    requester.ID,
		Kind:      models.NotificationKindTeamInfo,
		Title:     "Join Request Accepted",
		Message:   fmt.Sprintf("Your request to join team %q has been accepted", team.Name),
		TeamID:    &team.ID,
		ActorID:   &admin.ID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notifier.Enqueue(ctx, accepted); err != nil {
		log.Error("failed to notify requester", sl.Err(err))
	}

	log.Info("join request accepted", slog.String("requester_ign", requester.IGN))

	return requester, nil
}

func (s *TeamService) DeclineRequest(ctx context.Context, adminID, notificationID string) error {
	const op = "service.team.DeclineRequest"

	log := s.log.With(
		slog.String("op", op),
		slog.String("admin_id", adminID),
		slog.String("notification_id", notificationID),
	)

	log.Info("declining join request")

	if _, err := s.notifier.Consume(ctx, notificationID, adminID); err != nil {
		log.Error("failed to consume notification", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("join request declined")

	return nil
}

func (s *TeamService) RemoveMember(ctx context.Context, adminID, targetID string) error {
	const op = "service.team.RemoveMember"

	log := s.log.With(
		slog.String("op", op),
		slog.String("admin_id", adminID),
		slog.String("target_id", targetID),
	)

	log.Info("attempting to remove team member")

	admin, team, err := s.requireAdmin(ctx, adminID)
	if err != nil {
		log.Error("admin check failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	// Removing the admin is dissolution, not removal.
	if targetID == admin.ID {
		log.Warn("admin attempted self-removal")
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotAuthorized)
	}

	target, err := s.profiles.GetProfile(ctx, targetID)
	if err != nil {
		log.Error("failed to get target profile", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.teamRepo.RemoveMember(ctx, team.ID, target.ID); err != nil {
		log.Error("failed to remove member", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	removed := models.Notification{
		ID:        uuid.NewString(),
		UserID:    target.ID,
		Kind:      models.NotificationKindTeamInfo,
		Title:     "Removed from Team",
		Message:   fmt.Sprintf("You have been removed from the team by %s", admin.IGN),
		TeamID:    &team.ID,
		ActorID:   &admin.ID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notifier.Enqueue(ctx, removed); err != nil {
		log.Error("failed to notify removed member", sl.Err(err))
	}

	log.Info("member removed", slog.String("target_ign", target.IGN))

	return nil
}

func (s *TeamService) LeaveTeam(ctx context.Context, memberID string) error {
	const op = "service.team.LeaveTeam"

	log := s.log.With(
		slog.String("op", op),
		slog.String("member_id", memberID),
	)

	log.Info("attempting to leave team")

	member, err := s.profiles.GetProfile(ctx, memberID)
	if err != nil {
		log.Error("failed to get member profile", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if member.TeamID == nil {
		log.Warn("member is not in a team")
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotInTeam)
	}

	// Admins dissolve; they do not leave.
	if member.IsTeamAdmin {
		log.Warn("admin attempted to leave team")
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotAuthorized)
	}

	if err := s.profiles.ClearTeam(ctx, member.ID); err != nil {
		log.Error("failed to clear membership", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("member left team", slog.String("team_id", *member.TeamID))

	return nil
}

// DissolveTeam removes every member, deletes the team and notifies the
// former members. Notification failures do not undo the dissolution; they
// are collected and reported together.
func (s *TeamService) DissolveTeam(ctx context.Context, adminID string) error {
	const op = "service.team.DissolveTeam"

	log := s.log.With(
		slog.String("op", op),
		slog.String("admin_id", adminID),
	)

	log.Info("attempting to dissolve team")

	admin, team, err := s.requireAdmin(ctx, adminID)
	if err != nil {
		log.Error("admin check failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	members, err := s.teamRepo.DissolveTeam(ctx, team.ID)
	if err != nil {
		log.Error("failed to dissolve team", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	var notifyErrs *multierror.Error
	for _, member := range members {
		if member.ID == admin.ID {
			continue
		}

		dissolved := models.Notification{
			ID:        uuid.NewString(),
			UserID:    member.ID,
			Kind:      models.NotificationKindTeamInfo,
			Title:     "Team Dissolved",
			Message:   fmt.Sprintf("Your team %q has been dissolved by %s", team.Name, admin.IGN),
			ActorID:   &admin.ID,
			CreatedAt: time.Now().UTC(),
		}

		if err := s.notifier.Enqueue(ctx, dissolved); err != nil {
			log.Error("failed to notify former member",
				slog.String("member_id", member.ID), sl.Err(err))
			notifyErrs = multierror.Append(notifyErrs, err)
		}
	}

	if err := notifyErrs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: team dissolved, some members not notified: %w", op, err)
	}

	log.Info("team dissolved",
		slog.String("team_id", team.ID),
		slog.Int("former_members", len(members)))

	return nil
}

// GetMyTeam returns the caller's team with its roster. When the referenced
// team no longer exists the dangling membership is healed before reporting
// not-found.
func (s *TeamService) GetMyTeam(ctx context.Context, profileID string) (*models.Team, error) {
	const op = "service.team.GetMyTeam"

	log := s.log.With(
		slog.String("op", op),
		slog.String("profile_id", profileID),
	)

	log.Info("loading team for profile")

	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		log.Error("failed to get profile", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if profile.TeamID == nil {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotInTeam)
	}

	team, err := s.teamRepo.GetTeamWithMembers(ctx, *profile.TeamID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTeamNotFound) {
			s.reconcileOrphan(ctx, profile)
		}
		log.Error("failed to get team", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("team loaded", slog.Int("member_count", len(team.Members)))

	return team, nil
}

// requireAdmin resolves the caller's profile and the team they administer.
// A dangling team reference is healed on the spot.
func (s *TeamService) requireAdmin(ctx context.Context, profileID string) (*models.Profile, *models.Team, error) {
	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}

	if profile.TeamID == nil || !profile.IsTeamAdmin {
		return nil, nil, apperrors.ErrNotAuthorized
	}

	team, err := s.teamRepo.GetTeamByID(ctx, *profile.TeamID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTeamNotFound) {
			s.reconcileOrphan(ctx, profile)
		}
		return nil, nil, err
	}

	return profile, team, nil
}

// reconcileOrphan clears a membership reference to a team that no longer
// exists, e.g. after an out-of-band deletion.
func (s *TeamService) reconcileOrphan(ctx context.Context, profile *models.Profile) {
	const op = "service.team.reconcileOrphan"

	log := s.log.With(
		slog.String("op", op),
		slog.String("profile_id", profile.ID),
	)

	log.Warn("clearing dangling team reference")

	if err := s.profiles.ClearTeam(ctx, profile.ID); err != nil {
		log.Error("failed to clear dangling membership", sl.Err(err))
		return
	}

	profile.TeamID = nil
	profile.IsTeamAdmin = false
}
