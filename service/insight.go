package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"moonlife/analytics"
	"moonlife/config"
	"moonlife/models"
)

// 洞察来源
const (
	SourceAI       = "ai"       // 远程大模型生成
	SourceFallback = "fallback" // 本地规则生成
)

const maxInsights = 5

// InsightResult 一次洞察生成的结果
type InsightResult struct {
	Insights    []string  `json:"insights"`
	Source      string    `json:"source"`
	YearMonth   string    `json:"year_month"`
	GeneratedAt time.Time `json:"generated_at"`
}

// InsightService 心情消费洞察生成器
// 两级流水线：先尝试远程大模型，任何失败都退回本地规则，绝不把错误抛给调用方
type InsightService struct {
	cfg    config.AIConfig
	client *http.Client

	mu     sync.Mutex
	epoch  uint64
	latest *InsightResult
}

// NewInsightService 创建洞察生成器
func NewInsightService(cfg config.AIConfig) *InsightService {
	return &InsightService{
		cfg:    cfg,
		client: &http.Client{Timeout: 300 * time.Second},
	}
}

// Generate 为指定月份（YYYY-MM）生成消费洞察
// 本月没有带心情的消费时直接返回一条固定提示，不发远程请求；
// 未配置 api_key 或远程调用失败时静默退回本地规则
func (s *InsightService) Generate(ctx context.Context, expenses []models.ExpenseRecord, yearMonth string) InsightResult {
	epoch := s.begin()

	moodStats := analytics.MoodExpenseStats(expenses, yearMonth)
	if len(moodStats) == 0 {
		res := InsightResult{
			Insights:    []string{"本月还没有心情记录，建议多记录心情来了解消费模式"},
			Source:      SourceFallback,
			YearMonth:   yearMonth,
			GeneratedAt: time.Now(),
		}
		s.publish(epoch, res)
		return res
	}

	res := InsightResult{
		Source:      SourceFallback,
		YearMonth:   yearMonth,
		GeneratedAt: time.Now(),
	}

	if s.cfg.APIKey == "" {
		// 没配密钥不算错误，直接走本地规则
		res.Insights = fallbackInsights(moodStats)
		s.publish(epoch, res)
		return res
	}

	payload := buildPayload(expenses, moodStats, yearMonth)
	insights, err := s.requestRemote(ctx, buildInsightPrompt(payload))
	if err != nil || len(insights) == 0 {
		res.Insights = fallbackInsights(moodStats)
	} else {
		res.Insights = insights
		res.Source = SourceAI
	}
	s.publish(epoch, res)
	return res
}

// Latest 返回最近一次发布的结果
// 配合 epoch 守卫实现"后到的响应胜出"：页面快速来回切换时，
// 晚发起的那次请求的结果不会被早发起但晚返回的覆盖
func (s *InsightService) Latest() (InsightResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return InsightResult{}, false
	}
	return *s.latest, true
}

func (s *InsightService) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	return s.epoch
}

func (s *InsightService) publish(epoch uint64, res InsightResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		// 已经有更新的请求在跑，过期结果直接丢弃
		return
	}
	s.latest = &res
}

// analysisPayload 发给大模型前先算好的聚合数据
type analysisPayload struct {
	YearMonth     string
	MoodStats     []analytics.MoodStat
	CategoryStats []analytics.CategoryTotal
	TotalCount    int
	TotalAmount   float64
}

func buildPayload(expenses []models.ExpenseRecord, moodStats map[string]analytics.MoodStat, yearMonth string) analysisPayload {
	var monthly []models.ExpenseRecord
	for _, e := range expenses {
		if strings.HasPrefix(e.Date, yearMonth) {
			monthly = append(monthly, e)
		}
	}

	p := analysisPayload{
		YearMonth:     yearMonth,
		MoodStats:     analytics.RankMoodsByAvgAmount(moodStats),
		CategoryStats: analytics.CategoryTotals(monthly),
		TotalCount:    len(monthly),
	}
	for _, e := range monthly {
		p.TotalAmount += e.Amount
	}
	return p
}

// buildInsightPrompt 构建分析提示词，模板固定，同样的数据生成同样的提示词
func buildInsightPrompt(p analysisPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, `请分析以下记账数据中心情与消费的关系，给出简短实用的洞察：

月份：%s
总记录数：%d 条
总消费金额：%.2f 元

各心情下的消费统计：
`, p.YearMonth, p.TotalCount, p.TotalAmount)

	for _, st := range p.MoodStats {
		fmt.Fprintf(&b, "- %s: 共 %d 笔，合计 %.2f 元，平均每笔 %.2f 元\n",
			models.MoodName(st.Mood), st.Count, st.TotalAmount, st.AvgAmount)
	}

	b.WriteString("\n各类别的消费统计：\n")
	for _, ct := range p.CategoryStats {
		avg := ct.Total / float64(ct.Count)
		fmt.Fprintf(&b, "- %s: 共 %d 笔，合计 %.2f 元，平均每笔 %.2f 元\n",
			ct.Category, ct.Count, ct.Total, avg)
	}

	b.WriteString(`
请给出3-5条洞察，每条一行，内容包括心情对消费的影响和改进建议。
请用中文回答，语气轻松友好，不要输出开场白和结尾总结。`)
	return b.String()
}

const insightSystemPrompt = "你是一位贴心的个人理财助手，擅长从记账数据中发现心情和消费的关联，用一两句话说清一条洞察。"

// 兼容 OpenAI 格式的请求和响应
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// requestRemote 调用大模型接口并把返回文本拆成洞察条目
func (s *InsightService) requestRemote(ctx context.Context, prompt string) ([]string, error) {
	reqBody := chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: insightSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求AI服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("AI服务返回错误: %d, %s", resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("响应中没有生成结果")
	}

	return parseInsights(cr.Choices[0].Message.Content), nil
}

var listMarker = regexp.MustCompile(`^\d+\.`)

// parseInsights 把自由文本拆成洞察条目
// 先按行拆，丢掉空行、不足10字的行和数字序号行；
// 一条都拆不出时按句号感叹号问号重拆，只留超过10字的句子；最多取5条
func parseInsights(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) < 10 || listMarker.MatchString(line) {
			continue
		}
		out = append(out, line)
	}

	if len(out) == 0 {
		sentences := strings.FieldsFunc(text, func(r rune) bool {
			return r == '。' || r == '！' || r == '？'
		})
		for _, sent := range sentences {
			sent = strings.TrimSpace(sent)
			if utf8.RuneCountInString(sent) > 10 {
				out = append(out, sent)
			}
		}
	}

	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

// fallbackInsights 本地规则洞察：按平均消费给心情排名，报出最高和最低的两档
// 未配置密钥和远程失败走的是同一条路径，结果形状一致
func fallbackInsights(moodStats map[string]analytics.MoodStat) []string {
	ranked := analytics.RankMoodsByAvgAmount(moodStats)
	if len(ranked) == 0 {
		return nil
	}

	highest := ranked[0]
	lowest := ranked[len(ranked)-1]
	return []string{
		fmt.Sprintf("%s时平均消费最高，达到¥%.2f", models.MoodName(highest.Mood), highest.AvgAmount),
		fmt.Sprintf("%s时消费最理性，平均¥%.2f", models.MoodName(lowest.Mood), lowest.AvgAmount),
	}
}
