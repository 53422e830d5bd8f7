package services

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"smartcommerce-api/pkg/models"

	"go.uber.org/zap"
)

// 返信の生成元
const (
	SourceAI       = "ai"
	SourceTemplate = "template"
	SourceFallback = "fallback"
)

const (
	orderIDPlaceholder = "ORDER_ID"
	datePlaceholder    = "DATE"
	replyDateLayout    = "Mon Jan 02 2006"
)

var (
	nonWordRun = regexp.MustCompile(`\W+`)
	stopWords  = map[string]struct{}{
		"the": {}, "is": {}, "at": {}, "which": {}, "on": {}, "a": {}, "an": {},
	}
)

// ExtractKeywords 小文字化して非単語文字で分割し、2文字以下とストップワードを除外
func ExtractKeywords(text string) []string {
	var keywords []string
	for _, word := range nonWordRun.Split(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// KeywordTemplate 過去チケットから学習した返信テンプレート
type KeywordTemplate struct {
	Keywords map[string]struct{}
	Response string
}

// ReplyMatcher カテゴリ別のキーワードテンプレート表
// 構築時に一度だけ作成し、以後は読み取り専用。
type ReplyMatcher struct {
	templates  map[string][]KeywordTemplate
	categories []string
}

// NewReplyMatcher 過去チケットからテンプレート表を構築
func NewReplyMatcher(tickets []models.SupportTicket) *ReplyMatcher {
	m := &ReplyMatcher{templates: make(map[string][]KeywordTemplate)}
	for _, ticket := range tickets {
		if _, ok := m.templates[ticket.Category]; !ok {
			m.categories = append(m.categories, ticket.Category)
		}
		keywords := make(map[string]struct{})
		for _, k := range ExtractKeywords(ticket.Subject + " " + ticket.Message) {
			keywords[k] = struct{}{}
		}
		m.templates[ticket.Category] = append(m.templates[ticket.Category], KeywordTemplate{
			Keywords: keywords,
			Response: ticket.SuggestedResponse,
		})
	}
	return m
}

// Categories 学習済みカテゴリ一覧（初出順）
func (m *ReplyMatcher) Categories() []string {
	return append([]string(nil), m.categories...)
}

// Match カテゴリ内のテンプレートをキーワード一致数で採点し最良のものを返す
// 同点の場合は先に登録されたテンプレートを優先する。一致数0なら ok=false。
// 問い合わせ側のキーワードは重複を除いて数える（同じ語の繰り返しで点数は増えない）。
func (m *ReplyMatcher) Match(subject, message, category string) (best KeywordTemplate, score int, ok bool) {
	incoming := make(map[string]struct{})
	for _, k := range ExtractKeywords(subject + " " + message) {
		incoming[k] = struct{}{}
	}

	for _, template := range m.templates[category] {
		s := 0
		for k := range incoming {
			if _, hit := template.Keywords[k]; hit {
				s++
			}
		}
		if s > score {
			score = s
			best = template
		}
	}
	return best, score, score > 0
}

// AIAssistant 任意の生成AI返信バックエンド
type AIAssistant interface {
	GenerateReply(ctx context.Context, subject, message, category string) (string, error)
}

// StubAIAssistant AIキーが設定されている場合に使うスタブ
// プロンプトを組み立てるだけで、常に ErrAIUnavailable を返してテンプレート照合に委ねる。
type StubAIAssistant struct {
	apiKey string
	logger *zap.Logger
}

// NewStubAIAssistant 新しいスタブAIアシスタントを作成
func NewStubAIAssistant(apiKey string, logger *zap.Logger) *StubAIAssistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubAIAssistant{apiKey: apiKey, logger: logger}
}

// GenerateReply プロンプトを組み立てて ErrAIUnavailable を返す
func (a *StubAIAssistant) GenerateReply(_ context.Context, subject, message, category string) (string, error) {
	if a.apiKey == "" {
		return "", ErrAIUnavailable
	}
	prompt := BuildSupportPrompt(subject, message, category)
	a.logger.Debug("🤖 AIプロンプトを作成（スタブ）", zap.Int("prompt_length", len(prompt)))
	return "", ErrAIUnavailable
}

// BuildSupportPrompt 生成AI向けのプロンプト
func BuildSupportPrompt(subject, message, category string) string {
	return fmt.Sprintf(`Generate a helpful customer service response for this %s inquiry:
Subject: %s
Message: %s

Response should be friendly, helpful, and offer a specific solution.`, category, subject, message)
}

// SupportService サポート返信生成サービス
type SupportService struct {
	matcher   *ReplyMatcher
	assistant AIAssistant
	now       Clock
	logger    *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSupportService 新しいサポート返信サービスを作成
// assistant は nil 可。rng が nil の場合は現在時刻をシードにする。
// rng は他のサービスと共有しないこと。
func NewSupportService(tickets []models.SupportTicket, now Clock, rng *rand.Rand, assistant AIAssistant, logger *zap.Logger) *SupportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(now().UnixNano()))
	}
	return &SupportService{
		matcher:   NewReplyMatcher(tickets),
		assistant: assistant,
		now:       now,
		rng:       rng,
		logger:    logger,
	}
}

// Categories 学習済みカテゴリ一覧
func (s *SupportService) Categories() []string {
	return s.matcher.Categories()
}

// GenerateResponse 問い合わせへの返信を生成
// AIアシスタントが失敗した場合や未設定の場合はテンプレート照合を使う。
func (s *SupportService) GenerateResponse(ctx context.Context, subject, message, category string) models.SupportReply {
	if s.assistant != nil {
		reply, err := s.assistant.GenerateReply(ctx, subject, message, category)
		if err == nil && strings.TrimSpace(reply) != "" {
			return models.SupportReply{Response: reply, Source: SourceAI}
		}
		s.logger.Debug("AI返信を利用できないためテンプレート照合にフォールバック", zap.Error(err))
	}

	template, score, ok := s.matcher.Match(subject, message, category)
	if !ok {
		return models.SupportReply{Response: fallbackReply(subject), Source: SourceFallback}
	}
	return models.SupportReply{
		Response: s.personalize(template.Response),
		Source:   SourceTemplate,
		Score:    score,
	}
}

// personalize 注文番号と日付のプレースホルダーを置換
func (s *SupportService) personalize(template string) string {
	s.mu.Lock()
	orderID := 1000 + s.rng.Intn(9000)
	s.mu.Unlock()

	reply := strings.ReplaceAll(template, orderIDPlaceholder, fmt.Sprintf("#%d", orderID))
	return strings.ReplaceAll(reply, datePlaceholder, s.now().AddDate(0, 0, 3).Format(replyDateLayout))
}

func fallbackReply(subject string) string {
	return fmt.Sprintf(`Thank you for contacting us about "%s". I understand your concern and I'm here to help. Let me look into this for you right away. I'll get back to you within 24 hours with a solution.`, subject)
}
