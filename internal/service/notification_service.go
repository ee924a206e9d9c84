package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/models"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type directorLister interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// NotificationService records proposal lifecycle notifications. Failures are
// logged and swallowed: a missed notification must never fail the transition
// that triggered it.
type NotificationService struct {
	repo    notificationStore
	users   directorLister
	logger  *zap.Logger
	enabled bool
}

// NewNotificationService wires the notifier dependencies.
func NewNotificationService(repo notificationStore, users directorLister, logger *zap.Logger, enabled bool) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, users: users, logger: logger, enabled: enabled}
}

// ProposalSubmitted notifies every active director that a proposal awaits
// their decision.
func (s *NotificationService) ProposalSubmitted(ctx context.Context, proposal *models.Proposal) {
	if s == nil || !s.enabled {
		return
	}
	directors, err := s.users.ListByRole(ctx, models.RoleDirector)
	if err != nil {
		s.logger.Warn("failed to list directors for notification", zap.Error(err))
		return
	}
	message := fmt.Sprintf("Timetable proposal for %s (%s) was submitted for approval", proposal.CourseName, proposal.PeriodID)
	for _, director := range directors {
		s.record(ctx, director.ID, proposal.ID, models.NotificationProposalSubmitted, message)
	}
}

// ProposalDecided notifies the owning coordinator about a lifecycle decision.
func (s *NotificationService) ProposalDecided(ctx context.Context, proposal *models.Proposal, kind models.NotificationKind, detail string) {
	if s == nil || !s.enabled {
		return
	}
	message := fmt.Sprintf("Timetable proposal for %s is now %s", proposal.CourseName, proposal.Status)
	if detail != "" {
		message = fmt.Sprintf("%s: %s", message, detail)
	}
	s.record(ctx, proposal.CoordinatorID, proposal.ID, kind, message)
}

func (s *NotificationService) record(ctx context.Context, userID, proposalID string, kind models.NotificationKind, message string) {
	notification := &models.Notification{
		UserID:     userID,
		ProposalID: proposalID,
		Kind:       kind,
		Message:    message,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to record notification",
			zap.String("user_id", userID),
			zap.String("proposal_id", proposalID),
			zap.Error(err))
	}
}
