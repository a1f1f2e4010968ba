// Package memory holds an in-memory store implementing the same provider
// contracts as the postgres repos. It backs unit tests and offline demos;
// the services never know which implementation they talk to.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"team-manager/internal/apperrors"
	"team-manager/internal/domain/models"
)

type Store struct {
	mu            sync.Mutex
	teams         map[string]models.Team
	profiles      map[string]models.Profile
	notifications map[string]models.Notification
}

func NewStore() *Store {
	return &Store{
		teams:         make(map[string]models.Team),
		profiles:      make(map[string]models.Profile),
		notifications: make(map[string]models.Notification),
	}
}

func (s *Store) CreateTeamWithAdmin(_ context.Context, team models.Team) error {
	const op = "repo.memory.CreateTeamWithAdmin"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.teams {
		if t.TeamCode == team.TeamCode {
			return fmt.Errorf("%s: %w", op, apperrors.ErrCodeCollision)
		}
	}

	admin, ok := s.profiles[team.AdminID]
	if !ok {
		return fmt.Errorf("%s: %w", op, apperrors.ErrPlayerNotFound)
	}
	if admin.TeamID != nil {
		return fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyInTeam)
	}

	team.Members = nil
	s.teams[team.ID] = team

	admin.TeamID = &team.ID
	admin.IsTeamAdmin = true
	s.profiles[admin.ID] = admin

	return nil
}

func (s *Store) GetTeamByID(_ context.Context, teamID string) (*models.Team, error) {
	const op = "repo.memory.GetTeamByID"

	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
	}

	return &team, nil
}

func (s *Store) GetTeamByCode(_ context.Context, code string) (*models.Team, error) {
	const op = "repo.memory.GetTeamByCode"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, team := range s.teams {
		if team.TeamCode == code {
			t := team
			return &t, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
}

func (s *Store) GetTeamWithMembers(_ context.Context, teamID string) (*models.Team, error) {
	const op = "repo.memory.GetTeamWithMembers"

	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
	}

	team.Members = s.membersLocked(teamID)
	return &team, nil
}

func (s *Store) CodeInUse(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, team := range s.teams {
		if team.TeamCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) MemberCount(_ context.Context, teamID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.membersLocked(teamID)), nil
}

func (s *Store) JoinTeam(_ context.Context, profileID, teamID string) error {
	const op = "repo.memory.JoinTeam"

	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
	}

	if len(s.membersLocked(teamID)) >= team.MaxMembers {
		return fmt.Errorf("%s: %w", op, apperrors.ErrTeamFull)
	}

	profile, ok := s.profiles[profileID]
	if !ok || profile.TeamID != nil {
		return fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyInTeam)
	}

	profile.TeamID = &teamID
	profile.IsTeamAdmin = false
	s.profiles[profileID] = profile

	return nil
}

func (s *Store) RemoveMember(_ context.Context, teamID, profileID string) error {
	const op = "repo.memory.RemoveMember"

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[profileID]
	if !ok || profile.TeamID == nil || *profile.TeamID != teamID || profile.IsTeamAdmin {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotInTeam)
	}

	profile.TeamID = nil
	profile.IsTeamAdmin = false
	s.profiles[profileID] = profile

	return nil
}

func (s *Store) DissolveTeam(_ context.Context, teamID string) ([]models.Profile, error) {
	const op = "repo.memory.DissolveTeam"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[teamID]; !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
	}

	members := s.membersLocked(teamID)
	for _, member := range members {
		member.TeamID = nil
		member.IsTeamAdmin = false
		s.profiles[member.ID] = member
	}

	delete(s.teams, teamID)

	return members, nil
}

func (s *Store) CreateProfile(_ context.Context, profile models.Profile) error {
	const op = "repo.memory.CreateProfile"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		if p.UID == profile.UID {
			return fmt.Errorf("%s: %w", op, apperrors.ErrUIDTaken)
		}
	}

	s.profiles[profile.ID] = profile
	return nil
}

func (s *Store) GetProfile(_ context.Context, profileID string) (*models.Profile, error) {
	const op = "repo.memory.GetProfile"

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPlayerNotFound)
	}

	return &profile, nil
}

func (s *Store) FindProfileByUID(_ context.Context, uid string) (*models.Profile, error) {
	const op = "repo.memory.FindProfileByUID"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, profile := range s.profiles {
		if profile.UID == uid {
			p := profile
			return &p, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, apperrors.ErrPlayerNotFound)
}

func (s *Store) ClearTeam(_ context.Context, profileID string) error {
	const op = "repo.memory.ClearTeam"

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[profileID]
	if !ok {
		return fmt.Errorf("%s: %w", op, apperrors.ErrPlayerNotFound)
	}

	profile.TeamID = nil
	profile.IsTeamAdmin = false
	s.profiles[profileID] = profile

	return nil
}

func (s *Store) Enqueue(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[n.ID] = n
	return nil
}

func (s *Store) Consume(_ context.Context, notificationID, recipientID string) (*models.Notification, error) {
	const op = "repo.memory.Consume"

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != recipientID {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotificationNotFound)
	}

	delete(s.notifications, notificationID)

	return &n, nil
}

func (s *Store) ListByRecipient(_ context.Context, userID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (s *Store) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}

	return count, nil
}

func (s *Store) MarkRead(_ context.Context, notificationID, userID string) error {
	const op = "repo.memory.MarkRead"

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotificationNotFound)
	}

	n.Read = true
	s.notifications[notificationID] = n

	return nil
}

func (s *Store) HasPendingInvite(_ context.Context, teamID, candidateID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.UserID == candidateID && n.Kind == models.NotificationKindTeamInvite &&
			n.ActionRequired && n.TeamID != nil && *n.TeamID == teamID {
			return true, nil
		}
	}

	return false, nil
}

// membersLocked returns the profiles currently referencing teamID.
// Caller holds s.mu.
func (s *Store) membersLocked(teamID string) []models.Profile {
	var members []models.Profile
	for _, profile := range s.profiles {
		if profile.TeamID != nil && *profile.TeamID == teamID {
			members = append(members, profile)
		}
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].ID < members[j].ID
	})

	return members
}
