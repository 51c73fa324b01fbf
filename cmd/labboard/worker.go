package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"labboard/internal/mqhandler"
	"labboard/internal/repository"
	"labboard/internal/service"
	"labboard/pkg/mq"
	"labboard/pkg/outbox"
	"labboard/pkg/util"
)

const (
	queueSeedMilestones = "project.created.seed.q"
	queueRecalculate    = "checklist.toggled.recalc.q"
)

func workerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume domain events: seed milestones and recalculate progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx, opts)
		},
	}
}

func runWorker(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts, "worker")
	if err != nil {
		return err
	}
	defer a.close()
	log := a.logger

	rdb, err := a.redis(ctx)
	if err != nil {
		return err
	}
	deduper := util.NewDeduper(rdb, a.cfg.Worker.DedupTTL, log)
	retries := util.NewRetryCounter(rdb, a.cfg.Worker.RetryTTL)

	publisher, err := mq.NewPublisher(a.cfg.MQ.URL)
	if err != nil {
		return err
	}
	defer publisher.Close()

	projectRepo := repository.NewProjectRepository(a.db, log)
	milestoneRepo := repository.NewMilestoneRepository(a.db, log)
	projectSvc := service.NewProjectService(a.db, projectRepo, milestoneRepo, outbox.NewRepository(a.db), log)
	progressSvc := service.NewProgressService(projectRepo, milestoneRepo, log)

	seedHandler := mqhandler.NewProjectCreatedHandler(projectSvc, deduper, retries, publisher, log)
	recalcHandler := mqhandler.NewChecklistToggledHandler(progressSvc, deduper, retries, publisher, log)

	bindings := []struct {
		queue      string
		routingKey string
		handle     mq.MessageHandler
	}{
		{queueSeedMilestones, mq.RoutingProjectCreated, seedHandler.Handle},
		{queueRecalculate, mq.RoutingChecklistToggled, recalcHandler.Handle},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range bindings {
		consumer, err := mq.NewConsumer(a.cfg.MQ.URL, b.queue, b.routingKey, log)
		if err != nil {
			return err
		}
		defer consumer.Close()
		consumer.SetHandler(b.handle)

		g.Go(func() error {
			log.Info("Starting consumer", zap.String("queue", b.queue))
			return consumer.StartConsuming(gctx)
		})
	}

	log.Info("All consumers started, worker is ready to process messages")
	return g.Wait()
}
