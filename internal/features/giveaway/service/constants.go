package service

import "time"

const (
	// TickInterval is how often open giveaways are checked for expiry and
	// their countdown embeds refreshed.
	TickInterval = 5 * time.Second
)
