package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/VenkataAditya897/vizzy-conversational/internal/config"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// imageSizes 宽高比到 OpenAI 图片尺寸的映射，4:5 取最接近的竖版尺寸
var imageSizes = map[string]string{
	"1:1":  "1024x1024",
	"16:9": "1536x1024",
	"9:16": "1024x1536",
	"4:5":  "1024x1536",
}

// OpenAIImageGenerator OpenAI 图片生成客户端
type OpenAIImageGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	store   Store
}

// NewOpenAIImageGenerator 创建 OpenAI 图片生成客户端
func NewOpenAIImageGenerator(cfg *config.ImageProviderConfig, store Store) (*OpenAIImageGenerator, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.Configuration("图片提供商 openai 缺少 API Key")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIImageGenerator{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
		store:   store,
	}, nil
}

func (g *OpenAIImageGenerator) Name() string {
	return "openai"
}

type imageGenRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type imageGenResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate 调用图片生成接口，产物落盘后返回本地 URL
//
// 带 SourceImageURL 时走编辑接口，对参考图做提示词驱动的改写。
func (g *OpenAIImageGenerator) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	size, ok := imageSizes[req.AspectRatio]
	if !ok {
		size = imageSizes["1:1"]
	}

	var httpReq *http.Request
	var err error
	if req.SourceImageURL != "" {
		httpReq, err = g.buildEditRequest(ctx, req, size)
	} else {
		httpReq, err = g.buildGenerateRequest(ctx, req, size)
	}
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "调用图片生成接口失败")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "读取生成响应失败")
	}

	var genResp imageGenResponse
	if err := json.Unmarshal(data, &genResp); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "解析生成响应失败")
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("图片生成接口返回 %d", resp.StatusCode)
		if genResp.Error != nil {
			msg = genResp.Error.Message
		}
		return nil, apperrors.New(apperrors.CodeGenerationFailed, msg)
	}

	urls := make([]string, 0, len(genResp.Data))
	for _, item := range genResp.Data {
		if item.B64JSON == "" {
			if item.URL != "" {
				urls = append(urls, item.URL)
			}
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			logger.Warn(ctx, "解码图片数据失败", "error", err)
			continue
		}
		url, err := g.store.Save(ctx, "png", raw)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	if len(urls) == 0 {
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "图片生成未返回任何产物")
	}
	return &GenerateResult{URLs: urls}, nil
}

func (g *OpenAIImageGenerator) buildGenerateRequest(ctx context.Context, req *GenerateRequest, size string) (*http.Request, error) {
	body, err := json.Marshal(imageGenRequest{
		Model:          g.model,
		Prompt:         req.Prompt,
		N:              req.NumOutputs,
		Size:           size,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "序列化生成请求失败")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "构造生成请求失败")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	return httpReq, nil
}

// buildEditRequest 组装编辑接口的 multipart 请求，参考图先拉取原始字节
func (g *OpenAIImageGenerator) buildEditRequest(ctx context.Context, req *GenerateRequest, size string) (*http.Request, error) {
	source, err := g.fetchSource(ctx, req.SourceImageURL)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "source.png")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "构造编辑请求失败")
	}
	if _, err := part.Write(source); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "构造编辑请求失败")
	}
	_ = w.WriteField("model", g.model)
	_ = w.WriteField("prompt", req.Prompt)
	_ = w.WriteField("n", strconv.Itoa(req.NumOutputs))
	_ = w.WriteField("size", size)
	if err := w.Close(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "构造编辑请求失败")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/images/edits", &buf)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "构造编辑请求失败")
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	return httpReq, nil
}

// fetchSource 拉取参考图原始字节
func (g *OpenAIImageGenerator) fetchSource(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "构造参考图请求失败")
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "拉取参考图失败")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.CodeGenerationFailed,
			fmt.Sprintf("拉取参考图返回 %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "读取参考图失败")
	}
	return data, nil
}
