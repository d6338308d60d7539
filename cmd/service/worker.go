package main

import (
	"context"
	"time"

	"classroom_service/internal/service"
	"classroom_service/pkg/logger"
	"classroom_service/pkg/utils"
)

const remindersTopic = "assignment-reminders"

// ReminderWorker periodically looks for assignments whose due date is
// approaching while their submission is still ungraded, and publishes
// reminder events. It never touches submission status; late is decided at
// grading time only.
type ReminderWorker struct {
	assignmentRepo service.AssignmentRepository
	notifier       service.Notifier
	logger         *logger.Logger
	breaker        *utils.CircuitBreaker
	interval       time.Duration
	window         time.Duration
}

func NewReminderWorker(
	assignmentRepo service.AssignmentRepository,
	notifier service.Notifier,
	logger *logger.Logger,
	interval time.Duration,
	window time.Duration,
) *ReminderWorker {
	return &ReminderWorker{
		assignmentRepo: assignmentRepo,
		notifier:       notifier,
		logger:         logger,
		breaker:        utils.NewCircuitBreaker(5, 30*time.Second),
		interval:       interval,
		window:         window,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.processReminders(ctx)
		}
	}
}

func (w *ReminderWorker) processReminders(ctx context.Context) {
	assignments, err := w.assignmentRepo.FindDueSoon(ctx, w.window)
	if err != nil {
		w.logger.Errorf("Failed to get assignments due soon: %v", err)
		return
	}

	for _, assignment := range assignments {
		message := map[string]interface{}{
			"assignment_id": assignment.ID,
			"teacher_id":    assignment.TeacherID,
			"student_id":    assignment.StudentID,
			"due_date":      assignment.DueDate,
			"title":         assignment.Title,
		}

		_, err := utils.RetryWithCircuitBreaker(ctx, w.breaker, 3, time.Second, func() (struct{}, error) {
			return struct{}{}, w.notifier.Send(ctx, remindersTopic, message)
		})
		if err != nil {
			w.logger.Errorf("Failed to send reminder for assignment %s: %v", assignment.ID, err)
			continue
		}

		w.logger.Infof("Sent reminder for assignment %s", assignment.ID)
	}
}
