package service

import (
	"strings"
	"time"

	"peipao-bot/database"
	"peipao-bot/database/model"
	"peipao-bot/logger"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

const fetchTimeout = 10 * time.Second

// FetchService 从台湾彩券官方 API 拉取今彩539 历史开奖。
// 这条路径上的任何失败（网络、状态码、格式）都只记日志并
// 返回空结果，由调用方退回已有历史或兜底号码。
type FetchService struct {
	apiURL string
	client *fasthttp.Client
}

func NewFetchService(apiURL string) *FetchService {
	return &FetchService{
		apiURL: apiURL,
		client: &fasthttp.Client{},
	}
}

type lottoResult struct {
	Lotto539Res []lottoDraw `json:"Lotto539Res"`
}

type lottoDraw struct {
	Date             string `json:"Date"`
	DrawNumberAppear string `json:"DrawNumberAppear"`
}

// FetchRecentDraws 返回最多 limit 期开奖记录，失败时返回 nil。
func (s *FetchService) FetchRecentDraws(limit int) []*model.Draw {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.apiURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := s.client.DoTimeout(req, resp, fetchTimeout); err != nil {
		logger.Warningf("fetch draws from %s failed: %v", s.apiURL, err)
		return nil
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		logger.Warningf("fetch draws: upstream returned %d", resp.StatusCode())
		return nil
	}

	var payload lottoResult
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		logger.Warningf("fetch draws: bad payload: %v", err)
		return nil
	}

	records := make([]*model.Draw, 0, len(payload.Lotto539Res))
	for _, item := range payload.Lotto539Res {
		if len(records) >= limit {
			break
		}
		date, ok := parseDrawDate(item.Date)
		if !ok {
			continue
		}
		numbers, ok := parseDrawNumberAppear(item.DrawNumberAppear)
		if !ok {
			continue
		}
		records = append(records, &model.Draw{DrawDate: date, Numbers: numbers})
	}
	return records
}

// parseDrawDate 上游日期形如 "2026-01-01T00:00:00"，截掉时间部分。
func parseDrawDate(raw string) (string, bool) {
	datePart, _, _ := strings.Cut(raw, "T")
	if _, err := time.Parse("2006-01-02", datePart); err != nil {
		return "", false
	}
	return datePart, true
}

// parseDrawNumberAppear 上游号码形如 "03,14,22,31,39"。
func parseDrawNumberAppear(raw string) (string, bool) {
	numbers, ok := database.ParseDrawNumbers(raw)
	if !ok {
		return "", false
	}
	for _, n := range numbers {
		if n < 1 || n > 39 {
			return "", false
		}
	}
	return database.FormatDrawNumbers(numbers), true
}
