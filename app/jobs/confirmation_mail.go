// Package jobs defines the queued background jobs and their registrations.
package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/app/services"
	"github.com/shashiranjanraj/tomato/pkg/event"
	"github.com/shashiranjanraj/tomato/pkg/logger"
	"github.com/shashiranjanraj/tomato/pkg/notification"
	"github.com/shashiranjanraj/tomato/pkg/queue"
)

// ConfirmationMailJob emails the customer after a successful payment.
type ConfirmationMailJob struct {
	OrderID string  `json:"order_id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
}

func (j *ConfirmationMailJob) Handle() error {
	if j.Email == "" {
		logger.Warn("jobs: confirmation mail skipped, no address", "order_id", j.OrderID)
		return nil
	}

	n := &orderPaidNotification{job: j}
	if errs := notification.Send(j.Email, n); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

type orderPaidNotification struct {
	job *ConfirmationMailJob
}

func (n *orderPaidNotification) Via() []string { return []string{"mail"} }

func (n *orderPaidNotification) ToMail() notification.MailData {
	return notification.MailData{
		Subject: "Your order is confirmed",
		Body: fmt.Sprintf(
			"<h1>Thanks, %s!</h1><p>Order <b>%s</b> for $%.2f is being prepared.</p>",
			n.job.Name, n.job.OrderID, n.job.Amount),
	}
}

// Register wires job types into the queue registry and hooks the dispatching
// event listeners. Call once at boot.
func Register() {
	queue.Register("*jobs.ConfirmationMailJob", func() queue.Job { return &ConfirmationMailJob{} })

	event.Listen(services.EventOrderPaid, func(payload interface{}) {
		order, ok := payload.(*models.Order)
		if !ok {
			return
		}
		job := &ConfirmationMailJob{
			OrderID: order.ID.Hex(),
			Email:   order.Address.Email,
			Name:    order.Address.FirstName,
			Amount:  order.Amount,
		}
		if err := queue.Dispatch(job); err != nil {
			logger.Error("jobs: dispatch confirmation mail", "order_id", job.OrderID, "error", err)
		}
	})
}
