package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"labboard/internal/handler"
	"labboard/internal/httpserver"
	"labboard/internal/repository"
	"labboard/internal/service"
	"labboard/pkg/mq"
	"labboard/pkg/outbox"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the outbox dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts, "api")
	if err != nil {
		return err
	}
	defer a.close()
	log := a.logger

	publisher, err := mq.NewPublisher(a.cfg.MQ.URL)
	if err != nil {
		return err
	}
	defer publisher.Close()

	projectRepo := repository.NewProjectRepository(a.db, log)
	milestoneRepo := repository.NewMilestoneRepository(a.db, log)
	checklistRepo := repository.NewChecklistRepository(a.db, log)
	memberRepo := repository.NewMemberRepository(a.db, log)
	mentoringRepo := repository.NewMentoringRepository(a.db, log)
	reviewRepo := repository.NewPeerReviewRepository(a.db, log)
	outboxRepo := outbox.NewRepository(a.db)

	projectSvc := service.NewProjectService(a.db, projectRepo, milestoneRepo, outboxRepo, log)
	checklistSvc := service.NewChecklistService(a.db, checklistRepo, milestoneRepo, outboxRepo, log)
	performanceSvc := service.NewPerformanceService(memberRepo, projectRepo, milestoneRepo, mentoringRepo, log)
	mentoringSvc := service.NewMentoringService(mentoringRepo, log)
	memberSvc := service.NewMemberService(memberRepo, service.RosterOrder{
		Positions: a.cfg.Roster.PositionOrder,
		Names:     a.cfg.Roster.NameOrder,
		Language:  a.cfg.Roster.Language,
	}, log)
	agent := service.NewAgentClient(a.cfg.Agent.URL, a.cfg.Agent.Timeout, log)
	reviewSvc := service.NewPeerReviewService(reviewRepo, agent, log)

	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log).
		WithInterval(a.cfg.Outbox.Interval).
		WithBatchSize(a.cfg.Outbox.BatchSize).
		WithMaxRetries(a.cfg.Outbox.MaxRetries)
	replay := outbox.NewReplayService(outboxRepo, publisher, log)

	router := httpserver.NewRouter(httpserver.Handlers{
		Projects:    handler.NewProjectHandler(projectSvc, log),
		Checklists:  handler.NewChecklistHandler(checklistSvc, log),
		Performance: handler.NewPerformanceHandler(performanceSvc, log),
		PeerReviews: handler.NewPeerReviewHandler(reviewSvc, log),
		Outbox:      handler.NewOutboxHandler(replay, log),
		Members:     handler.NewMemberHandler(memberSvc, log),
		Mentoring:   handler.NewMentoringHandler(mentoringSvc, log),
	}, a.cfg.JWT.Secret, a.db, log)

	srv := &http.Server{
		Addr:              a.cfg.Server.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go dispatcher.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
