package reports

import (
	"context"

	"go.uber.org/zap"

	"github.com/mission-budget/spender/internal/logger"
)

type messageSender interface {
	SendMessage(text string, userID int64) error
}

type reportCache interface {
	CacheReport(userID int64, report string) error
}

// Worker serves queued report requests on the reporter side: generate,
// cache, push back to the user.
type Worker struct {
	generator *Generator
	cache     reportCache
	sender    messageSender
}

func NewWorker(generator *Generator, cache reportCache, sender messageSender) *Worker {
	return &Worker{
		generator: generator,
		cache:     cache,
		sender:    sender,
	}
}

func (w *Worker) HandleReportRequest(ctx context.Context, req Request) {
	report, err := w.generator.GenerateReport(ctx, req.UserID)
	if err != nil {
		logger.Error("failed to generate report", zap.Error(err))
		_ = w.sender.SendMessage("Can't build your report atm. Try later", req.UserID)
		return
	}

	if err = w.cache.CacheReport(req.UserID, report); err != nil {
		logger.Error("failed to cache report", zap.Error(err))
	}
	if err = w.sender.SendMessage(report, req.UserID); err != nil {
		logger.Error("failed to send report", zap.Error(err))
	}
}
