package notifications

import (
	"testing"
	"time"

	"campuspaws/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmailTaskAssigned(t *testing.T) {
	email, err := RenderEmail(database.NotificationTypeTaskAssigned, EmailParams{
		RecipientName: "Priya",
		TaskTitle:     "Evening feeding round",
		TaskPriority:  database.PriorityHigh,
		ScheduledDate: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
		ActionURL:     "/tasks/abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "New task: Evening feeding round", email.Subject)

	// Both bodies carry the same facts.
	for _, body := range []string{email.HTML, email.Text} {
		assert.Contains(t, body, "Priya")
		assert.Contains(t, body, "Evening feeding round")
		assert.Contains(t, body, "high")
		assert.Contains(t, body, "Sat, 14 Mar 2026")
		assert.Contains(t, body, "/tasks/abc")
	}
	assert.Contains(t, email.HTML, "<html>")
	assert.NotContains(t, email.Text, "<")
}

func TestRenderEmailMedicalFollowup(t *testing.T) {
	email, err := RenderEmail(database.NotificationTypeMedicalFollowup, EmailParams{
		RecipientName: "Ravi",
		AnimalName:    "Biscuit",
		FollowUpDate:  time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		ActionURL:     "/animals/xyz",
	})
	require.NoError(t, err)

	assert.Equal(t, "Follow-up due for Biscuit", email.Subject)
	assert.Contains(t, email.HTML, "Biscuit")
	assert.Contains(t, email.Text, "Sat, 02 May 2026")
}

func TestRenderEmailDigest(t *testing.T) {
	email, err := RenderEmail(database.NotificationTypeSystem, EmailParams{
		RecipientName: "Asha",
		DigestItems: []DigestItem{
			{Title: "Task completed", Summary: "Morning feeding at the library lawn"},
			{Title: "New animal", Summary: "Biscuit registered near hostel B"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Your Campus Paws daily digest", email.Subject)
	assert.Contains(t, email.HTML, "Morning feeding at the library lawn")
	assert.Contains(t, email.Text, "Biscuit registered near hostel B")
}

func TestRenderEmailEscapesHTML(t *testing.T) {
	email, err := RenderEmail(database.NotificationTypeMedicalAlert, EmailParams{
		RecipientName: "Asha",
		AnimalName:    "Biscuit",
		RecordType:    database.MedicalRecordTypeEmergency,
		Description:   `<script>alert("x")</script>`,
	})
	require.NoError(t, err)

	assert.NotContains(t, email.HTML, "<script>")
	assert.Contains(t, email.Text, "<script>")
}

func TestRenderEmailUnknownKind(t *testing.T) {
	// task_completed stays in-app only.
	_, err := RenderEmail(database.NotificationTypeTaskCompleted, EmailParams{})
	assert.Error(t, err)
}
