package jobs

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"go-payments.backend/internal/domain/entities"
	"go-payments.backend/internal/domain/repositories"
	"go-payments.backend/internal/infrastructure/blockchain"
	"go-payments.backend/internal/metrics"
	"go-payments.backend/internal/usecases"
)

const dueBatchLimit = 50

// ChainExecutor submits a call bundle on a chain from the operator account.
type ChainExecutor interface {
	Execute(ctx context.Context, chainID uint64, calls []entities.LowLevelCall) (string, error)
}

// TemplateExecutor polls for due payment templates and pulls the approved
// funds on-chain. Polling the database rather than holding in-memory timers
// means pending schedules survive a process restart.
type TemplateExecutor struct {
	templates repositories.TemplateRepository
	exec      ChainExecutor
	interval  time.Duration
	log       *zap.Logger
	now       func() time.Time
	scheduler gocron.Scheduler
}

// NewTemplateExecutor creates the executor job.
func NewTemplateExecutor(templates repositories.TemplateRepository, exec ChainExecutor, interval time.Duration, log *zap.Logger) *TemplateExecutor {
	if log == nil {
		log = zap.NewNop()
	}
	return &TemplateExecutor{
		templates: templates,
		exec:      exec,
		interval:  interval,
		log:       log,
		now:       time.Now,
	}
}

// Start schedules the polling job and begins running it.
func (j *TemplateExecutor) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func() { j.Run(ctx) }),
	)
	if err != nil {
		return err
	}
	scheduler.Start()
	j.scheduler = scheduler
	j.log.Info("template executor started", zap.Duration("interval", j.interval))
	return nil
}

// Stop shuts the polling job down.
func (j *TemplateExecutor) Stop() {
	if j.scheduler != nil {
		_ = j.scheduler.Shutdown()
	}
}

// Run executes one polling pass. Exposed for tests and for one-off manual
// runs from the CLI.
func (j *TemplateExecutor) Run(ctx context.Context) {
	metrics.ExecutorRuns.Inc()

	due, err := j.templates.ListDue(ctx, j.now(), dueBatchLimit)
	if err != nil {
		metrics.ExecutorErrors.Inc()
		j.log.Error("listing due templates failed", zap.Error(err))
		return
	}

	for _, template := range due {
		j.execute(ctx, template)
	}
}

func (j *TemplateExecutor) execute(ctx context.Context, template *entities.PaymentTemplate) {
	log := j.log.With(zap.Uint("template_id", template.ID))

	if template.IsCancelled {
		return
	}

	calls, chainID, err := PullCalls(template)
	if err != nil {
		metrics.ExecutorErrors.Inc()
		log.Error("building pull calls failed", zap.Error(err))
		j.markFailed(ctx, template)
		return
	}
	if len(calls) == 0 {
		log.Warn("template has no executable transfers")
		j.finish(ctx, template)
		return
	}

	txHash, err := j.exec.Execute(ctx, chainID, calls)
	if err != nil {
		metrics.ExecutorErrors.Inc()
		log.Error("on-chain execution failed", zap.Error(err))
		j.markFailed(ctx, template)
		return
	}
	log.Info("template executed", zap.String("tx_hash", txHash), zap.Uint64("chain_id", chainID))

	if err := j.templates.MarkTransfersStatus(ctx, template.ID, entities.TransferStatusCompleted); err != nil {
		log.Error("marking transfers completed failed", zap.Error(err))
	}
	j.finish(ctx, template)
}

// finish advances a completed template's schedule and counts the execution.
func (j *TemplateExecutor) finish(ctx context.Context, template *entities.PaymentTemplate) {
	if !j.advance(ctx, template) {
		return
	}
	label := "scheduled"
	if template.IsRecurring() {
		label = "recurring"
	}
	metrics.TemplatesExecuted.WithLabelValues(label).Inc()
}

// advance reschedules a recurring template to its next occurrence or
// retires a one-shot one. Either way the template's current due time is
// consumed, so ListDue never re-selects the same run.
func (j *TemplateExecutor) advance(ctx context.Context, template *entities.PaymentTemplate) bool {
	if template.IsRecurring() {
		next := template.ScheduledAt.Time.Add(time.Duration(template.RecurringInterval.Int64) * time.Millisecond)
		if err := j.templates.Reschedule(ctx, template.ID, next); err != nil {
			j.log.Error("rescheduling failed", zap.Uint("template_id", template.ID), zap.Error(err))
			return false
		}
		return true
	}
	if err := j.templates.ClearSchedule(ctx, template.ID); err != nil {
		j.log.Error("clearing schedule failed", zap.Uint("template_id", template.ID), zap.Error(err))
		return false
	}
	return true
}

// markFailed marks a template's transfers failed and consumes its due time
// so a broken template cannot be retried on every poll without bound.
func (j *TemplateExecutor) markFailed(ctx context.Context, template *entities.PaymentTemplate) {
	if err := j.templates.MarkTransfersStatus(ctx, template.ID, entities.TransferStatusFailed); err != nil {
		j.log.Error("marking transfers failed errored", zap.Uint("template_id", template.ID), zap.Error(err))
	}
	j.advance(ctx, template)
}

// PullCalls builds the erc20 transferFrom calls that move a template's
// approved funds from the owner to each destination. Native movements have
// no allowance to pull and are skipped. Returns the calls and the chain id
// they all execute on.
func PullCalls(template *entities.PaymentTemplate) ([]entities.LowLevelCall, uint64, error) {
	owner := common.HexToAddress(template.User.EthereumAddress)

	var calls []entities.LowLevelCall
	var chainID uint64
	for _, transfer := range template.Transfers {
		if transfer.Asset.IsNative() {
			continue
		}
		chainID = transfer.Asset.ChainID

		value, err := usecases.ParseUnits(transfer.Amount, transfer.Asset.Decimals)
		if err != nil {
			return nil, 0, err
		}
		data, err := blockchain.EncodeTransferFrom(owner, common.HexToAddress(transfer.DestinationUserAddress), value)
		if err != nil {
			return nil, 0, err
		}
		calls = append(calls, entities.LowLevelCall{
			To:    common.HexToAddress(transfer.Asset.ContractAddress),
			Value: big.NewInt(0),
			Data:  data,
		})
	}
	return calls, chainID, nil
}
