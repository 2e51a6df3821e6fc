package notify

import (
	"fmt"
	"time"

	"docportal/internal/domain/models"
)

// Message builders for every notification this core emits. The router's rule
// table keys on substrings of these messages ("approved", "rejected", ...),
// so the builders and config/routing.yaml move together; router tests pin the
// pairing.

// ApprovedMessage is the submitter-facing text for an approval.
func ApprovedMessage(title string) string {
	return fmt.Sprintf("Your document %q has been approved.", title)
}

// RejectedMessage is the submitter-facing text for a rejection, carrying the
// reviewer's feedback.
func RejectedMessage(title, feedback string) string {
	return fmt.Sprintf("Your document %q has been rejected. Reviewer feedback: %s", title, feedback)
}

// DeadlineReminderMessage is the reminder text for an upcoming category
// deadline. It deliberately avoids every classifier keyword so it routes as a
// general notification.
func DeadlineReminderMessage(category *models.Category, deadline time.Time) string {
	return fmt.Sprintf("Submission deadline for %q is %s.", category.Name, deadline.Format("Jan 2, 2006 15:04"))
}
