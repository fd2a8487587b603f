package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
)

// videoSizes 宽高比到视频分辨率的映射
var videoSizes = map[string]string{
	"1:1":  "720x720",
	"16:9": "1280x720",
	"9:16": "720x1280",
}

// OpenAIVideoGenerator OpenAI 视频生成客户端
//
// 视频接口是异步任务模型：创建任务后轮询状态，完成后拉取内容。
type OpenAIVideoGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	store   Store

	pollInterval time.Duration
}

// NewOpenAIVideoGenerator 创建 OpenAI 视频生成客户端
func NewOpenAIVideoGenerator(cfg *config.VideoProviderConfig, store Store) (*OpenAIVideoGenerator, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.Configuration("视频提供商 openai 缺少 API Key")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIVideoGenerator{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        cfg.Model,
		client:       &http.Client{Timeout: cfg.Timeout},
		store:        store,
		pollInterval: 5 * time.Second,
	}, nil
}

func (g *OpenAIVideoGenerator) Name() string {
	return "openai"
}

type videoJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate 创建视频任务并轮询到完成
//
// 视频接口一次只产出一个视频，NumOutputs 大于 1 时串行创建。
// SourceImageURL 非空时作为首帧参考图提交，即图生视频。
func (g *OpenAIVideoGenerator) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	size, ok := videoSizes[req.AspectRatio]
	if !ok {
		size = videoSizes["16:9"]
	}

	n := req.NumOutputs
	if n < 1 {
		n = 1
	}
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		url, err := g.generateOne(ctx, req, size)
		if err != nil {
			// 已有部分产物时不整体失败
			if len(urls) > 0 {
				logger.Warn(ctx, "视频批次部分失败", "done", len(urls), "error", err)
				break
			}
			return nil, err
		}
		urls = append(urls, url)
	}
	return &GenerateResult{URLs: urls}, nil
}

func (g *OpenAIVideoGenerator) generateOne(ctx context.Context, req *GenerateRequest, size string) (string, error) {
	job, err := g.createJob(ctx, req, size)
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", apperrors.Wrap(ctx.Err(), apperrors.CodeGenerationFailed, "等待视频生成超时")
		case <-ticker.C:
		}

		job, err = g.getJob(ctx, job.ID)
		if err != nil {
			return "", err
		}
		switch job.Status {
		case "completed", "succeeded":
			return g.downloadContent(ctx, job.ID)
		case "failed", "cancelled":
			msg := "视频生成任务失败"
			if job.Error != nil {
				msg = job.Error.Message
			}
			return "", apperrors.New(apperrors.CodeGenerationFailed, msg)
		}
	}
}

func (g *OpenAIVideoGenerator) createJob(ctx context.Context, genReq *GenerateRequest, size string) (*videoJob, error) {
	payload := map[string]any{
		"model":  g.model,
		"prompt": genReq.Prompt,
		"size":   size,
	}
	if genReq.Seconds > 0 {
		payload["seconds"] = genReq.Seconds
	}
	if genReq.SourceImageURL != "" {
		payload["input_reference"] = genReq.SourceImageURL
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/videos", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "构造视频任务请求失败")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	var job videoJob
	if err := g.doJSON(req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (g *OpenAIVideoGenerator) getJob(ctx context.Context, id string) (*videoJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/videos/"+id, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "构造任务查询请求失败")
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	var job videoJob
	if err := g.doJSON(req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (g *OpenAIVideoGenerator) downloadContent(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/videos/"+id+"/content", nil)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeGenerationFailed, "构造内容下载请求失败")
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeGenerationFailed, "下载视频内容失败")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.New(apperrors.CodeGenerationFailed,
			fmt.Sprintf("下载视频内容返回 %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeGenerationFailed, "读取视频内容失败")
	}
	return g.store.Save(ctx, "mp4", data)
}

func (g *OpenAIVideoGenerator) doJSON(req *http.Request, dest any) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "调用视频生成接口失败")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "读取视频接口响应失败")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(data, &apiErr)
		msg := fmt.Sprintf("视频生成接口返回 %d", resp.StatusCode)
		if apiErr.Error != nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return apperrors.New(apperrors.CodeGenerationFailed, msg)
	}
	return json.Unmarshal(data, dest)
}
