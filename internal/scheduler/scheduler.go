// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the timed publishing job: pages and blog posts
// carrying a publish time are made visible once it passes.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/versocms/verso/internal/service"
)

// Scheduler handles scheduled publishing of pages and blog posts.
type Scheduler struct {
	pages  *service.PageService
	posts  *service.PostService
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance. posts may be nil when the blog
// feature is disabled.
func New(pages *service.PageService, posts *service.PostService, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pages:  pages,
		posts:  posts,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start begins the scheduler with a publish check every minute.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.publishDue(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// publishDue runs one publish pass over both content kinds.
func (s *Scheduler) publishDue(ctx context.Context) {
	if n, err := s.pages.PublishDue(ctx); err != nil {
		s.logger.Error("failed to publish scheduled pages", "error", err)
	} else if n > 0 {
		s.logger.Info("published scheduled pages", "count", n)
	}

	if s.posts == nil {
		return
	}
	if n, err := s.posts.PublishDue(ctx); err != nil {
		s.logger.Error("failed to publish scheduled blog posts", "error", err)
	} else if n > 0 {
		s.logger.Info("published scheduled blog posts", "count", n)
	}
}
