package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moonlife/config"
	"moonlife/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moodExpense(amount float64, date, mood string) models.ExpenseRecord {
	return models.ExpenseRecord{Amount: amount, Category: "餐饮", Date: date, Mood: mood}
}

// newRemoteStub 启动一个假的 chat-completions 服务，记录请求次数
func newRemoteStub(t *testing.T, status int, content string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-chat", req.Model)
		assert.Equal(t, 1000, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestService(baseURL, apiKey string) *InsightService {
	return NewInsightService(config.AIConfig{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Model:       "deepseek-chat",
		MaxTokens:   1000,
		Temperature: 0.7,
	})
}

func TestGenerate_EmptyMonth(t *testing.T) {
	srv, calls := newRemoteStub(t, http.StatusOK, "不应该被调用")
	s := newTestService(srv.URL, "test-key")

	// 本月没有带心情的消费：一条固定提示，不发远程请求
	expenses := []models.ExpenseRecord{
		{Amount: 50, Category: "餐饮", Date: "2024-06-01"}, // 没有心情
		moodExpense(100, "2024-05-01", models.MoodHappy),  // 上个月
	}
	res := s.Generate(context.Background(), expenses, "2024-06")

	require.Len(t, res.Insights, 1)
	assert.Equal(t, "本月还没有心情记录，建议多记录心情来了解消费模式", res.Insights[0])
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, 0, *calls)
}

func TestGenerate_NoAPIKey(t *testing.T) {
	srv, calls := newRemoteStub(t, http.StatusOK, "不应该被调用")
	s := newTestService(srv.URL, "")

	expenses := []models.ExpenseRecord{
		moodExpense(300, "2024-06-01", models.MoodExcited),
		moodExpense(20, "2024-06-02", models.MoodCalm),
	}
	res := s.Generate(context.Background(), expenses, "2024-06")

	// 没配密钥不算错误，静默退回本地规则
	assert.Equal(t, 0, *calls)
	assert.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Insights, 2)
	assert.Equal(t, "兴奋时平均消费最高，达到¥300.00", res.Insights[0])
	assert.Equal(t, "平静时消费最理性，平均¥20.00", res.Insights[1])
}

func TestGenerate_RemoteError(t *testing.T) {
	srv, calls := newRemoteStub(t, http.StatusInternalServerError, "")
	s := newTestService(srv.URL, "test-key")

	expenses := []models.ExpenseRecord{
		moodExpense(300, "2024-06-01", models.MoodExcited),
		moodExpense(20, "2024-06-02", models.MoodCalm),
	}
	res := s.Generate(context.Background(), expenses, "2024-06")

	// 远程 500 和没配密钥走同一条本地规则，结果形状一致
	assert.Equal(t, 1, *calls)
	assert.Equal(t, SourceFallback, res.Source)
	require.Len(t, res.Insights, 2)
	assert.Equal(t, "兴奋时平均消费最高，达到¥300.00", res.Insights[0])
	assert.Equal(t, "平静时消费最理性，平均¥20.00", res.Insights[1])
}

func TestGenerate_RemoteUnreachable(t *testing.T) {
	// 端口没人听，网络错误也要被兜住
	s := newTestService("http://127.0.0.1:1", "test-key")

	expenses := []models.ExpenseRecord{
		moodExpense(100, "2024-06-01", models.MoodHappy),
	}
	res := s.Generate(context.Background(), expenses, "2024-06")

	assert.Equal(t, SourceFallback, res.Source)
	assert.Len(t, res.Insights, 2)
}

func TestGenerate_RemoteSuccess(t *testing.T) {
	content := "开心的时候你更容易在餐饮上花钱，平均每笔接近两百元\n难过时的消费反而最克制，继续保持这种理性\n建议把大额消费放到心情平静的时候决定"
	srv, calls := newRemoteStub(t, http.StatusOK, content)
	s := newTestService(srv.URL, "test-key")

	expenses := []models.ExpenseRecord{
		moodExpense(180, "2024-06-01", models.MoodHappy),
		moodExpense(30, "2024-06-02", models.MoodSad),
	}
	res := s.Generate(context.Background(), expenses, "2024-06")

	assert.Equal(t, 1, *calls)
	assert.Equal(t, SourceAI, res.Source)
	require.Len(t, res.Insights, 3)
	assert.Equal(t, "开心的时候你更容易在餐饮上花钱，平均每笔接近两百元", res.Insights[0])
}

func TestGenerate_MalformedResponseFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(srv.Close)
	s := newTestService(srv.URL, "test-key")

	expenses := []models.ExpenseRecord{
		moodExpense(100, "2024-06-01", models.MoodHappy),
	}
	res := s.Generate(context.Background(), expenses, "2024-06")

	assert.Equal(t, SourceFallback, res.Source)
	assert.Len(t, res.Insights, 2)
}

func TestParseInsights_Lines(t *testing.T) {
	text := "开心时消费明显高于其他心情，注意控制冲动消费\n\n短行\n3. 这是一条带序号的洞察，应该被丢掉\n难过的时候你反而花得最少，情绪没有影响钱包"
	out := parseInsights(text)

	// 空行、不足10字的行、数字序号行都被丢掉
	require.Len(t, out, 2)
	assert.Equal(t, "开心时消费明显高于其他心情，注意控制冲动消费", out[0])
	assert.Equal(t, "难过的时候你反而花得最少，情绪没有影响钱包", out[1])
}

func TestParseInsights_SentenceRetry(t *testing.T) {
	// 整段都是数字序号行时按行拆一条不剩，按句末标点重拆，只留超过10字的句子
	text := "1. 开心时的平均消费是全月最高的一档。好。\n2. 压力大的日子建议先存购物车过一晚再说！"
	out := parseInsights(text)

	require.Len(t, out, 2)
	assert.Equal(t, "1. 开心时的平均消费是全月最高的一档", out[0])
	assert.Equal(t, "2. 压力大的日子建议先存购物车过一晚再说", out[1])
}

func TestParseInsights_Cap(t *testing.T) {
	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, fmt.Sprintf("这是第%d条足够长的消费洞察内容示例", i))
	}
	out := parseInsights(strings.Join(lines, "\n"))
	assert.Len(t, out, 5)
}

func TestParseInsights_AllShort(t *testing.T) {
	assert.Empty(t, parseInsights("好。嗯！短？"))
}

func TestPublish_EpochGuard(t *testing.T) {
	s := newTestService("", "")

	// 老请求的结果不能覆盖新请求的
	oldEpoch := s.begin()
	newEpoch := s.begin()

	s.publish(newEpoch, InsightResult{Insights: []string{"新结果新结果新结果"}})
	s.publish(oldEpoch, InsightResult{Insights: []string{"旧结果旧结果旧结果"}})

	latest, ok := s.Latest()
	require.True(t, ok)
	require.Len(t, latest.Insights, 1)
	assert.Equal(t, "新结果新结果新结果", latest.Insights[0])
}

func TestLatest_Empty(t *testing.T) {
	s := newTestService("", "")
	_, ok := s.Latest()
	assert.False(t, ok)
}
