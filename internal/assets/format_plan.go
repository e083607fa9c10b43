// Package assets implements the Asset Coordinator: it expands a set of
// selected channels into a concrete format plan, persists it, and drives
// generation of every planned asset plus the job's hero image and video
// concurrently.
package assets

import "jobcore/internal/jobstore"

// formatPlan is the static, closed channel -> format-row table. It is never
// mutated at runtime; new channels or formats require a code change.
var formatPlan = map[string][]jobstore.AssetPlanRow{
	"LINKEDIN": {
		{ChannelID: "LINKEDIN", FormatID: "LINKEDIN_JOB_POSTING"},
		{ChannelID: "LINKEDIN", FormatID: "LINKEDIN_FEED_POST"},
	},
	"X": {
		{ChannelID: "X", FormatID: "X_POST"},
		{ChannelID: "X", FormatID: "X_THREAD"},
	},
	"TIKTOK": {
		{ChannelID: "TIKTOK", FormatID: "SHORT_VIDEO_TIKTOK"},
		{ChannelID: "TIKTOK", FormatID: "SOCIAL_IMAGE_CAPTION"},
	},
	"INSTAGRAM": {
		{ChannelID: "INSTAGRAM", FormatID: "SOCIAL_IMAGE_CAPTION"},
		{ChannelID: "INSTAGRAM", FormatID: "SHORT_VIDEO_REEL"},
	},
	"FACEBOOK": {
		{ChannelID: "FACEBOOK", FormatID: "FACEBOOK_JOB_POSTING"},
	},
	"INDEED": {
		{ChannelID: "INDEED", FormatID: "INDEED_JOB_POSTING"},
	},
}

// SupportedChannels returns the closed set of channel ids the format-plan
// table knows about, in a stable order. The HTTP surface uses this as the
// allow-list passed to the channels/channel_picker tasks.
func SupportedChannels() []string {
	return []string{"LINKEDIN", "X", "TIKTOK", "INSTAGRAM", "FACEBOOK", "INDEED"}
}

// resolveFormatPlan expands selectedChannels into the flat list of
// (formatId, channelId) asset rows the coordinator will plan and generate.
// Unknown channels are dropped silently; the channel picker/recommendation
// tasks only ever emit channels from this same closed set.
func resolveFormatPlan(selectedChannels []string) []jobstore.AssetPlanRow {
	var rows []jobstore.AssetPlanRow
	for _, channel := range selectedChannels {
		rows = append(rows, formatPlan[channel]...)
	}
	return rows
}
