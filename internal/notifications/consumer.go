package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"campuspaws/internal/database"
	"campuspaws/internal/events"
	"campuspaws/internal/util"

	"github.com/google/uuid"
)

// Mailer delivers a rendered email. Delivery failures are logged at the
// call site and never propagated.
type Mailer interface {
	Send(ctx context.Context, to string, email Email) error
}

// LogMailer is the development delivery path: it logs instead of
// sending.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to string, email Email) error {
	m.logger.Info("email (not sent, log delivery)", "to", to, "subject", email.Subject)
	return nil
}

// Directory resolves recipient and animal details for rendering.
type Directory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetAnimalByID(ctx context.Context, id uuid.UUID) (database.Animal, error)
}

// Consumer turns record events into notifications and emails. It runs on
// the event bus, after the triggering record is already persisted, so
// nothing here can fail a record creation.
type Consumer struct {
	logger    *slog.Logger
	manager   *Manager
	directory Directory
	mailer    Mailer
}

func NewConsumer(logger *slog.Logger, manager *Manager, directory Directory, mailer Mailer) *Consumer {
	return &Consumer{logger: logger, manager: manager, directory: directory, mailer: mailer}
}

func (c *Consumer) HandleEvent(ctx context.Context, event events.Event) {
	switch event.Kind {
	case events.KindMedicalRecordCreated:
		c.handleMedicalRecordCreated(ctx, event)
	case events.KindTaskCreated:
		c.handleTaskCreated(ctx, event)
	case events.KindTaskCompleted:
		c.handleTaskCompleted(ctx, event)
	default:
		c.logger.Debug("ignoring event", "kind", event.Kind)
	}
}

func (c *Consumer) handleMedicalRecordCreated(ctx context.Context, event events.Event) {
	record := event.MedicalRecord
	if record == nil {
		return
	}

	animalName := "an animal"
	if animal, err := c.directory.GetAnimalByID(ctx, record.AnimalID); err == nil {
		animalName = animal.Name
	}

	// Alerts go out only for the acute record types; checkups and
	// vaccinations are routine.
	if record.Type == database.MedicalRecordTypeEmergency || record.Type == database.MedicalRecordTypeTreatment {
		priority := database.PriorityHigh
		if record.Type == database.MedicalRecordTypeEmergency {
			priority = database.PriorityUrgent
		}

		for _, recipientID := range event.CandidateRecipients {
			c.notify(ctx, recipientID, CreateInput{
				RecipientID:       recipientID,
				Type:              database.NotificationTypeMedicalAlert,
				Title:             fmt.Sprintf("Medical alert: %s", animalName),
				Message:           record.Description,
				Priority:          priority,
				RelatedEntityID:   util.Some(record.AnimalID),
				RelatedEntityType: util.Some(database.RelatedEntityAnimal),
				ActionURL:         fmt.Sprintf("/animals/%s", record.AnimalID),
			}, EmailParams{
				AnimalName:  animalName,
				RecordType:  record.Type,
				Description: record.Description,
				ActionURL:   fmt.Sprintf("/animals/%s", record.AnimalID),
			})
		}
	}

	// Follow-ups go to the first candidate only. One caretaker owns the
	// visit; fanning it out produced duplicate bookings.
	if record.FollowUpRequired && len(event.CandidateRecipients) > 0 {
		recipientID := event.CandidateRecipients[0]
		message := fmt.Sprintf("%s needs a follow-up visit", animalName)
		params := EmailParams{AnimalName: animalName, ActionURL: fmt.Sprintf("/animals/%s", record.AnimalID)}
		if record.FollowUpDate.IsSet {
			message = fmt.Sprintf("%s needs a follow-up visit by %s", animalName, record.FollowUpDate.Val.Format("Mon, 02 Jan 2006"))
			params.FollowUpDate = record.FollowUpDate.Val
		}

		c.notify(ctx, recipientID, CreateInput{
			RecipientID:       recipientID,
			Type:              database.NotificationTypeMedicalFollowup,
			Title:             fmt.Sprintf("Follow-up due: %s", animalName),
			Message:           message,
			Priority:          database.PriorityMedium,
			RelatedEntityID:   util.Some(record.AnimalID),
			RelatedEntityType: util.Some(database.RelatedEntityAnimal),
			ActionURL:         fmt.Sprintf("/animals/%s", record.AnimalID),
		}, params)
	}
}

func (c *Consumer) handleTaskCreated(ctx context.Context, event events.Event) {
	task := event.Task
	if task == nil || task.AssignedTo == uuid.Nil {
		return
	}

	c.notify(ctx, task.AssignedTo, CreateInput{
		RecipientID:       task.AssignedTo,
		Type:              database.NotificationTypeTaskAssigned,
		Title:             fmt.Sprintf("New task: %s", task.Title),
		Message:           task.Description,
		Priority:          task.Priority,
		RelatedEntityID:   util.Some(task.ID),
		RelatedEntityType: util.Some(database.RelatedEntityTask),
		ActionURL:         fmt.Sprintf("/tasks/%s", task.ID),
	}, EmailParams{
		TaskTitle:     task.Title,
		TaskPriority:  task.Priority,
		ScheduledDate: task.ScheduledDate,
		ActionURL:     fmt.Sprintf("/tasks/%s", task.ID),
	})
}

func (c *Consumer) handleTaskCompleted(ctx context.Context, event events.Event) {
	task := event.Task
	if task == nil || event.NotifyUserID == uuid.Nil {
		return
	}

	c.notify(ctx, event.NotifyUserID, CreateInput{
		RecipientID:       event.NotifyUserID,
		Type:              database.NotificationTypeTaskCompleted,
		Title:             fmt.Sprintf("Task completed: %s", task.Title),
		Message:           fmt.Sprintf("The task %q has been marked complete.", task.Title),
		Priority:          database.PriorityLow,
		RelatedEntityID:   util.Some(task.ID),
		RelatedEntityType: util.Some(database.RelatedEntityTask),
		ActionURL:         fmt.Sprintf("/tasks/%s", task.ID),
	}, EmailParams{})
}

// notify creates the in-app notification and, preferences permitting,
// sends the email. Failures are logged per recipient so one bad address
// cannot block the rest of a fan-out.
func (c *Consumer) notify(ctx context.Context, recipientID uuid.UUID, input CreateInput, emailParams EmailParams) {
	prefs, err := c.manager.Preferences(ctx, recipientID)
	if err != nil {
		c.logger.Error("failed to load notification preferences", "recipient_id", recipientID, "error", err)
		return
	}
	if !categoryEnabled(prefs, input.Type) {
		return
	}

	if _, err := c.manager.Create(ctx, input); err != nil {
		c.logger.Error("failed to create notification", "recipient_id", recipientID, "type", input.Type, "error", err)
		return
	}

	if !prefs.EmailEnabled {
		return
	}
	c.sendEmail(ctx, recipientID, input.Type, emailParams)
}

func (c *Consumer) sendEmail(ctx context.Context, recipientID uuid.UUID, kind database.NotificationType, params EmailParams) {
	user, err := c.directory.GetUserByID(ctx, recipientID)
	if err != nil {
		c.logger.Error("failed to resolve email recipient", "recipient_id", recipientID, "error", err)
		return
	}
	params.RecipientName = user.Name

	email, err := RenderEmail(kind, params)
	if err != nil {
		// task_completed has no email template on purpose; in-app only.
		c.logger.Debug("skipping email", "kind", kind, "error", err)
		return
	}

	if err := c.mailer.Send(ctx, user.Email, email); err != nil {
		c.logger.Error("failed to send email", "to", user.Email, "kind", kind, "error", err)
	}
}

func categoryEnabled(prefs database.NotificationPreferences, kind database.NotificationType) bool {
	switch kind {
	case database.NotificationTypeTaskAssigned, database.NotificationTypeTaskCompleted, database.NotificationTypeTaskReminder:
		return prefs.TaskAlerts
	case database.NotificationTypeMedicalAlert, database.NotificationTypeMedicalFollowup:
		return prefs.MedicalAlerts
	case database.NotificationTypeVolunteerUpdate:
		return prefs.VolunteerUpdates
	case database.NotificationTypeSystem:
		return prefs.SystemUpdates
	default:
		return true
	}
}
