package services

import (
	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
)

// RegisterHandlers wires the post-commit reactions to domain events. Order within one
// event is the order handlers run in.
func RegisterHandlers(relay *events.Relay, escalation *EscalationService, reputation *ReputationService, notifications *NotificationService) {
	relay.Subscribe(models.EventReportApproved, "escalation", escalation.HandleReportApproved)
	relay.Subscribe(models.EventReportApproved, "reputation.reward_reporter", reputation.RewardReporter)
	relay.Subscribe(models.EventReportApproved, "reputation.penalize_offender", reputation.PenalizeOffender)

	for _, name := range []string{
		models.EventReportApproved,
		models.EventReportRejected,
		models.EventPenaltyCreated,
		models.EventPenaltyExpired,
		models.EventLevelUp,
	} {
		relay.Subscribe(name, "notification", notifications.Notify)
	}
}
