package task

import (
	"github.com/robfig/cron/v3"
)

const journalReplayBatch = 500

// RunJournalReplay replays journaled unmatched chain events nightly. An
// event initiated on another device becomes correlatable here once the
// local transaction row exists.
func (t *SyncTask) RunJournalReplay() error {
	secondParser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
	c := cron.New(cron.WithParser(secondParser), cron.WithChain())
	if _, err := c.AddFunc("0 10 4 * * ?", func() {
		if err := t.Reconciler.ReplayJournal(journalReplayBatch); err != nil {
			log.Error("ReplayJournal err:", err.Error())
		}
	}); err != nil {
		log.Error("RunJournalReplay err:", err.Error())
		return err
	}
	c.Start()
	return nil
}
