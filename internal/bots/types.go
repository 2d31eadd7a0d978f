package bots

// Event is an inbound chat message, already reduced to what the pipeline
// needs. FromBot marks messages authored by this bot or any other bot; the
// router drops them before parsing so the bot can never answer itself.
type Event struct {
	ChannelID string
	UserID    string
	Text      string
	FromBot   bool
}
