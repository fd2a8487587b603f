// Package generation 负责把最终提示词派发给媒体生成提供商
package generation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/media"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/logger"
	"github.com/VenkataAditya897/vizzy-conversational/pkg/metrics"
)

// DispatchRequest 生成派发请求
//
// Mode 为 transform 时 SourceImageURL 指向待改写的参考图。
// VideoSeconds 仅视频生成时有值。
type DispatchRequest struct {
	UserID         string
	ConversationID string
	MediaType      entity.MediaType
	Mode           string
	Prompt         string
	SourceImageURL string
	NumOutputs     int
	AspectRatio    string
	VideoSeconds   *int
	Model          string
}

// DispatchResult 生成派发结果
type DispatchResult struct {
	BatchID string
	Assets  []entity.Asset
}

// Dispatcher 生成派发器
//
// 按媒体类型路由到对应提供商，同步等待产出并落库资产记录。
type Dispatcher struct {
	imageGen media.Generator
	videoGen media.Generator
	assets   repository.AssetRepository
}

// NewDispatcher 创建生成派发器
func NewDispatcher(imageGen, videoGen media.Generator, assets repository.AssetRepository) *Dispatcher {
	return &Dispatcher{imageGen: imageGen, videoGen: videoGen, assets: assets}
}

// Dispatch 执行一次生成派发
//
// 失败时同样落库一条 failed 资产记录，保留失败原因供排查。
func (d *Dispatcher) Dispatch(ctx context.Context, req *DispatchRequest) (*DispatchResult, error) {
	gen, err := d.generatorFor(req.MediaType)
	if err != nil {
		return nil, err
	}

	seconds := 0
	if req.VideoSeconds != nil {
		seconds = *req.VideoSeconds
	}

	batchID := uuid.NewString()
	start := time.Now()
	result, genErr := gen.Generate(ctx, &media.GenerateRequest{
		Prompt:         req.Prompt,
		SourceImageURL: req.SourceImageURL,
		NumOutputs:     req.NumOutputs,
		AspectRatio:    req.AspectRatio,
		Seconds:        seconds,
	})

	elapsed := time.Since(start)
	metrics.GenerationDuration.WithLabelValues(string(req.MediaType), gen.Name()).Observe(elapsed.Seconds())

	if genErr != nil {
		metrics.GenerationTotal.WithLabelValues(string(req.MediaType), gen.Name(), "error").Inc()
		failed := &entity.Asset{
			BatchID:        batchID,
			UserID:         req.UserID,
			ConversationID: req.ConversationID,
			MediaType:      req.MediaType,
			Provider:       gen.Name(),
			Model:          req.Model,
			Prompt:         req.Prompt,
			AspectRatio:    req.AspectRatio,
			Status:         entity.AssetStatusFailed,
			FailureReason:  genErr.Error(),
		}
		if err := d.assets.Create(ctx, failed); err != nil {
			logger.Error(ctx, "记录失败资产失败", err, "batch_id", batchID)
		}
		return nil, apperrors.Wrap(genErr, apperrors.CodeGenerationFailed, "媒体生成失败")
	}

	metrics.GenerationTotal.WithLabelValues(string(req.MediaType), gen.Name(), "success").Inc()
	metrics.GenerationOutputs.WithLabelValues(string(req.MediaType)).Observe(float64(len(result.URLs)))

	assets := make([]*entity.Asset, 0, len(result.URLs))
	for _, url := range result.URLs {
		assets = append(assets, &entity.Asset{
			BatchID:        batchID,
			UserID:         req.UserID,
			ConversationID: req.ConversationID,
			MediaType:      req.MediaType,
			Provider:       gen.Name(),
			Model:          req.Model,
			Prompt:         req.Prompt,
			AspectRatio:    req.AspectRatio,
			URL:            url,
			Status:         entity.AssetStatusCompleted,
		})
	}
	if err := d.assets.CreateBatch(ctx, assets); err != nil {
		return nil, err
	}

	items := make([]entity.Asset, 0, len(assets))
	for _, a := range assets {
		items = append(items, *a)
	}
	logger.Info(ctx, "生成派发完成",
		"batch_id", batchID,
		"media_type", req.MediaType,
		"provider", gen.Name(),
		"outputs", len(items),
		"elapsed", elapsed.String(),
	)
	return &DispatchResult{BatchID: batchID, Assets: items}, nil
}

func (d *Dispatcher) generatorFor(mediaType entity.MediaType) (media.Generator, error) {
	switch mediaType {
	case entity.MediaTypeImage:
		return d.imageGen, nil
	case entity.MediaTypeVideo:
		return d.videoGen, nil
	default:
		return nil, apperrors.Validation("不支持的媒体类型: " + string(mediaType))
	}
}
