package convert

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences/english"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"mdc/common"
	"mdc/config"
)

var markdownTitleRe = regexp.MustCompile(`^#{1,2}\s+(.+)$`)

const (
	titlePromptLimit  = 2000
	titleSystemPrompt = "You are a helpful assistant. Generate a short, concise title (max 10 words) for the following text. Do not use quotes. Only output the title."
)

// ChatStore looks up stored chat titles. Nil disables the lookup.
type ChatStore interface {
	ChatTitle(chatID string) (string, error)
}

// titleResolver implements the title source chain: the configured source
// first, then the stored chat title, then the first markdown heading.
type titleResolver struct {
	cfg   *config.TitleConfig
	api   *config.APIConfig
	chats ChatStore
	log   *zap.Logger
}

// Resolve returns the document title and the stored chat title (used for the
// injected top heading even when another source wins).
func (t *titleResolver) Resolve(ctx context.Context, chatID, content string) (string, string) {
	chatTitle := ""
	if chatID != "" && t.chats != nil {
		var err error
		if chatTitle, err = t.chats.ChatTitle(chatID); err != nil {
			t.log.Warn("Chat title lookup failed", zap.String("chat", chatID), zap.Error(err))
			chatTitle = ""
		}
	}

	var title string
	switch t.cfg.Source {
	case common.TitleSourceMarkdownTitle:
		title = ExtractMarkdownTitle(content)
	case common.TitleSourceAiGenerated:
		var err error
		if title, err = t.generateAITitle(ctx, content); err != nil {
			t.log.Warn("AI title generation failed", zap.Error(err))
		}
	default:
		title = chatTitle
	}

	if title == "" {
		if t.cfg.Source != common.TitleSourceChatTitle && chatTitle != "" {
			title = chatTitle
		} else if t.cfg.Source != common.TitleSourceMarkdownTitle {
			title = ExtractMarkdownTitle(content)
		}
	}
	return title, chatTitle
}

// ExtractMarkdownTitle returns the first h1 or h2 heading text.
func ExtractMarkdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if m := markdownTitleRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// generateAITitle asks the configured model for a title over a sentence
// bounded prefix of the content.
func (t *titleResolver) generateAITitle(ctx context.Context, content string) (string, error) {
	if t.api.BaseURL == "" {
		return "", fmt.Errorf("api base url is not configured")
	}
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimSuffix(t.api.BaseURL, "/") + "/api"),
	}
	if !t.api.Token.Empty() {
		opts = append(opts, option.WithAPIKey(t.api.Token.Value()))
	}
	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(t.cfg.AIModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(titleSystemPrompt),
			openai.UserMessage(truncateAtSentence(content, titlePromptLimit)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("title completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("title completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// truncateAtSentence caps text at limit bytes, preferring a sentence
// boundary. Falls back to a hard cut when no sentence fits.
func truncateAtSentence(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err == nil {
		var sb strings.Builder
		for _, s := range tokenizer.Tokenize(text) {
			if sb.Len()+len(s.Text) > limit {
				break
			}
			sb.WriteString(s.Text)
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	cut := text[:limit]
	// do not split a multibyte rune
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
