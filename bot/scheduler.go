package bot

import (
	"log"
	"sync"
	"time"

	"moderation-bot/scanner"
	"moderation-bot/tasks"
)

// Scheduler manages the bot's background loops: the expiry scanner that
// reverses due actions, and the daily moderation report.
type Scheduler struct {
	bot    *Bot
	expiry *scanner.ExpiryScanner
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot *Bot, expiry *scanner.ExpiryScanner) *Scheduler {
	return &Scheduler{
		bot:    bot,
		expiry: expiry,
		done:   make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(2)

	go s.runExpiryScanner()
	go s.runDailyReport()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) runExpiryScanner() {
	defer s.wg.Done()
	s.expiry.Start(s.done)
}

func (s *Scheduler) runDailyReport() {
	defer s.wg.Done()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.postDailyReport()
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) postDailyReport() {
	cfg := s.bot.GetConfig()
	if cfg.LogChannelID == "" {
		return
	}
	for _, serverCfg := range cfg.ServerConfigs {
		if !serverCfg.Enable {
			continue
		}
		go tasks.UpdateActionStats(s.bot.GetSession(), s.bot.GetDB(), cfg.LogChannelID, serverCfg.GuildID, 24*time.Hour)
	}
}
