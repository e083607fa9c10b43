package task

// Registry is the static task catalog, assembled once at package init,
// mirroring the teacher's own static tool-registry pattern.
var Registry = map[string]Descriptor{
	"suggest": {
		Name:          "suggest",
		SystemPrompt:  "You are a job-posting autofill assistant. Suggest values only for empty or explicitly visible fields.",
		Builder:       BuildSuggest,
		Parser:        ParseSuggest,
		Mode:          "json",
		Temperature:   0.4,
		MaxTokens:     2048,
		Retries:       3,
		StrictOnRetry: false,
	},
	"refine": {
		Name:          "refine",
		SystemPrompt:  "You are a job-posting editor. Improve clarity, inclusivity, and completeness while preserving factual content.",
		Builder:       BuildRefine,
		Parser:        ParseRefine,
		Mode:          "json",
		Temperature:   0.3,
		MaxTokens:     4096,
		Retries:       3,
		StrictOnRetry: true,
	},
	"channels": {
		Name:          "channels",
		SystemPrompt:  "You are a recruitment-marketing channel strategist.",
		Builder:       BuildChannels,
		Parser:        ParseChannels,
		Mode:          "json",
		Temperature:   0.3,
		MaxTokens:     1024,
		Retries:       3,
		StrictOnRetry: true,
	},
	"channel_picker": {
		Name:          "channel_picker",
		SystemPrompt:  "You are a recruitment-marketing channel strategist choosing a single best-fit channel.",
		Builder:       BuildChannelPicker,
		Parser:        ParseChannelPicker,
		Mode:          "json",
		Temperature:   0.2,
		MaxTokens:     1024,
		Retries:       3,
		StrictOnRetry: true,
	},
	"asset_master": {
		Name:          "asset_master",
		SystemPrompt:  "You are a recruitment-ad copywriter producing the baseline creative for a channel+format.",
		Builder:       BuildAssetMaster,
		Parser:        ParseAssetMaster,
		Mode:          "json",
		Temperature:   0.6,
		MaxTokens:     1024,
		Retries:       3,
		StrictOnRetry: true,
	},
	"asset_adapt": {
		Name:          "asset_adapt",
		SystemPrompt:  "You are a recruitment-ad copywriter adapting existing creative to a new channel+format.",
		Builder:       BuildAssetAdapt,
		Parser:        ParseAssetAdapt,
		Mode:          "json",
		Temperature:   0.5,
		MaxTokens:     1024,
		Retries:       3,
		StrictOnRetry: true,
	},
	"asset_channel_batch": {
		Name:          "asset_channel_batch",
		SystemPrompt:  "You are a recruitment-ad copywriter producing every format for one channel in a single pass.",
		Builder:       BuildAssetChannelBatch,
		Parser:        ParseAssetChannelBatch,
		Mode:          "json",
		Temperature:   0.6,
		MaxTokens:     2048,
		Retries:       3,
		StrictOnRetry: true,
	},
	"video_config": {
		Name:          "video_config",
		SystemPrompt:  "You are a short-form video producer planning pacing and structure for a recruitment ad.",
		Builder:       BuildVideoConfig,
		Parser:        ParseVideoConfig,
		Mode:          "json",
		Temperature:   0.4,
		MaxTokens:     512,
		Retries:       3,
		StrictOnRetry: true,
	},
	"video_storyboard": {
		Name:          "video_storyboard",
		SystemPrompt:  "You are a short-form video producer writing a shot-by-shot storyboard.",
		Builder:       BuildVideoStoryboard,
		Parser:        ParseVideoStoryboard,
		Mode:          "json",
		Temperature:   0.6,
		MaxTokens:     2048,
		Retries:       3,
		StrictOnRetry: true,
	},
	"video_caption": {
		Name:          "video_caption",
		SystemPrompt:  "You write short, high-engagement social captions for recruitment videos.",
		Builder:       BuildVideoCaption,
		Parser:        ParseVideoCaption,
		Mode:          "json",
		Temperature:   0.5,
		MaxTokens:     512,
		Retries:       3,
		StrictOnRetry: true,
	},
	"video_compliance": {
		Name:          "video_compliance",
		SystemPrompt:  "You are a compliance reviewer checking recruitment-ad video scripts for prohibited claims.",
		Builder:       BuildVideoCompliance,
		Parser:        ParseVideoCompliance,
		Mode:          "json",
		Temperature:   0.1,
		MaxTokens:     512,
		Retries:       3,
		StrictOnRetry: true,
	},
	"image_prompt": {
		Name:          "image_prompt",
		SystemPrompt:  "You write text-to-image generation prompts for recruitment-ad hero images.",
		Builder:       BuildImagePrompt,
		Parser:        ParseImagePrompt,
		Mode:          "json",
		Temperature:   0.7,
		MaxTokens:     512,
		Retries:       3,
		StrictOnRetry: true,
	},
	"image_caption": {
		Name:          "image_caption",
		SystemPrompt:  "You write short, high-engagement social captions for recruitment-ad hero images.",
		Builder:       BuildImageCaption,
		Parser:        ParseImageCaption,
		Mode:          "json",
		Temperature:   0.5,
		MaxTokens:     256,
		Retries:       3,
		StrictOnRetry: true,
	},
	"copilot_agent": {
		Name:          "copilot_agent",
		SystemPrompt:  "You are a job-posting copilot. Either request one tool call or emit a final message with any actions you applied.",
		Builder:       BuildCopilotAgent,
		Parser:        ParseCopilotAgent,
		Mode:          "json",
		Temperature:   0.3,
		MaxTokens:     2048,
		Retries:       3,
		StrictOnRetry: false,
	},
}

// Lookup returns the descriptor for taskName, or false if no such task is
// registered.
func Lookup(taskName string) (Descriptor, bool) {
	d, ok := Registry[taskName]
	return d, ok
}
