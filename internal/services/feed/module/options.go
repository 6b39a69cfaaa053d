package module

import (
	"time"

	"herald/internal/platform/config"
)

// Options holds the feed module configuration
type Options struct {
	Direction   string
	StoryLimit  int
	Interval    time.Duration
	EpochAfter  int64
	EpochBefore int64
	AllowActors []string
	DenyActors  []string

	NotifyCommit  bool
	NotifyRetitle bool
	ObscureNames  bool
	Bolding       bool
	HTMLLinks     bool

	NewsPrefix string
	PrintDate  bool
	CursorPath string

	// Notifier selects the delivery surface: webhook or console
	Notifier   string
	WebhookURL string
}

// FromConfig reads the feed options with the FEED_ prefix
func FromConfig(cfg config.Conf) Options {
	ff := cfg.Prefix("FEED_")
	return Options{
		Direction:     ff.MayEnum("DIRECTION", "forward", "forward", "backward"),
		StoryLimit:    ff.MayInt("STORY_LIMIT", 15),
		Interval:      ff.MayDuration("INTERVAL", 60*time.Second),
		EpochAfter:    ff.MayInt64("EPOCH_AFTER", 0),
		EpochBefore:   ff.MayInt64("EPOCH_BEFORE", 0),
		AllowActors:   ff.MayCSV("ALLOW_ACTORS", nil),
		DenyActors:    ff.MayCSV("DENY_ACTORS", nil),
		NotifyCommit:  ff.MayBool("NOTIFY_COMMIT", false),
		NotifyRetitle: ff.MayBool("NOTIFY_RETITLE", false),
		ObscureNames:  ff.MayBool("OBSCURE_NAMES", true),
		Bolding:       ff.MayBool("BOLDING", true),
		HTMLLinks:     ff.MayBool("HTML_LINKS", false),
		NewsPrefix:    ff.MayString("NEWS_PREFIX", ""),
		PrintDate:     ff.MayBool("PRINT_DATE", false),
		CursorPath:    ff.MayString("CURSOR_PATH", "chronokey"),
		Notifier:      ff.MayEnum("NOTIFIER", "console", "console", "webhook"),
		WebhookURL:    ff.MayString("WEBHOOK_URL", ""),
	}
}
