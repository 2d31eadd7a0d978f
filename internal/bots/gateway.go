package bots

import "context"

// Gateway is the outbound boundary to the chat platform. The pipeline only
// ever sends text or a file attachment back to the originating channel.
type Gateway interface {
	SendText(ctx context.Context, channelID, text string) error
	SendFile(ctx context.Context, channelID string, data []byte, filename, caption string) error
}
