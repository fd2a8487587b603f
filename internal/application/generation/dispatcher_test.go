package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/entity"
	"github.com/VenkataAditya897/vizzy-conversational/internal/domain/repository"
	"github.com/VenkataAditya897/vizzy-conversational/internal/infrastructure/media"
	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

type fakeGenerator struct {
	name string
	urls []string
	err  error
	got  *media.GenerateRequest
}

func (g *fakeGenerator) Name() string { return g.name }

func (g *fakeGenerator) Generate(_ context.Context, req *media.GenerateRequest) (*media.GenerateResult, error) {
	g.got = req
	if g.err != nil {
		return nil, g.err
	}
	return &media.GenerateResult{URLs: g.urls}, nil
}

type fakeAssetRepo struct {
	created []*entity.Asset
}

func (r *fakeAssetRepo) Create(_ context.Context, asset *entity.Asset) error {
	r.created = append(r.created, asset)
	return nil
}

func (r *fakeAssetRepo) CreateBatch(_ context.Context, assets []*entity.Asset) error {
	r.created = append(r.created, assets...)
	return nil
}

func (r *fakeAssetRepo) GetByID(context.Context, string) (*entity.Asset, error) {
	return nil, nil
}

func (r *fakeAssetRepo) ListByBatch(context.Context, string) ([]entity.Asset, error) {
	return nil, nil
}

func (r *fakeAssetRepo) ListByUser(context.Context, string, *repository.Pagination) (*repository.PagedResult[entity.Asset], error) {
	return nil, nil
}

func (r *fakeAssetRepo) Update(context.Context, *entity.Asset) error { return nil }

func TestDispatchImageRoutesToImageGenerator(t *testing.T) {
	imageGen := &fakeGenerator{name: "openai", urls: []string{"/assets/a.png", "/assets/b.png"}}
	videoGen := &fakeGenerator{name: "openai"}
	repo := &fakeAssetRepo{}
	d := NewDispatcher(imageGen, videoGen, repo)

	result, err := d.Dispatch(context.Background(), &DispatchRequest{
		UserID:         "u1",
		ConversationID: "c1",
		MediaType:      entity.MediaTypeImage,
		Prompt:         "a watercolor cat",
		NumOutputs:     2,
		AspectRatio:    "16:9",
		Model:          "gpt-image-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.BatchID)
	require.Len(t, result.Assets, 2)
	assert.Equal(t, entity.AssetStatusCompleted, result.Assets[0].Status)
	assert.Equal(t, "/assets/a.png", result.Assets[0].URL)
	assert.Equal(t, result.BatchID, result.Assets[0].BatchID)

	require.NotNil(t, imageGen.got)
	assert.Nil(t, videoGen.got)
	assert.Equal(t, "a watercolor cat", imageGen.got.Prompt)
	assert.Equal(t, "16:9", imageGen.got.AspectRatio)
	assert.Len(t, repo.created, 2)
}

func TestDispatchVideoCarriesSeconds(t *testing.T) {
	imageGen := &fakeGenerator{name: "openai"}
	videoGen := &fakeGenerator{name: "openai", urls: []string{"/assets/a.mp4"}}
	d := NewDispatcher(imageGen, videoGen, &fakeAssetRepo{})

	seconds := 8
	_, err := d.Dispatch(context.Background(), &DispatchRequest{
		UserID:       "u1",
		MediaType:    entity.MediaTypeVideo,
		Prompt:       "a timelapse of clouds",
		NumOutputs:   1,
		AspectRatio:  "16:9",
		VideoSeconds: &seconds,
		Model:        "sora-1.0",
	})
	require.NoError(t, err)

	require.NotNil(t, videoGen.got)
	assert.Nil(t, imageGen.got)
	assert.Equal(t, 8, videoGen.got.Seconds)
}

func TestDispatchTransformCarriesSourceImage(t *testing.T) {
	imageGen := &fakeGenerator{name: "openai", urls: []string{"/assets/a.png"}}
	d := NewDispatcher(imageGen, &fakeGenerator{name: "openai"}, &fakeAssetRepo{})

	_, err := d.Dispatch(context.Background(), &DispatchRequest{
		UserID:         "u1",
		MediaType:      entity.MediaTypeImage,
		Mode:           "transform",
		Prompt:         "restyle as watercolor",
		SourceImageURL: "https://example.com/photo.png",
		NumOutputs:     1,
		AspectRatio:    "1:1",
		Model:          "gpt-image-1",
	})
	require.NoError(t, err)
	require.NotNil(t, imageGen.got)
	assert.Equal(t, "https://example.com/photo.png", imageGen.got.SourceImageURL)
}

func TestDispatchFailureRecordsFailedAsset(t *testing.T) {
	imageGen := &fakeGenerator{name: "openai", err: errors.New("provider down")}
	repo := &fakeAssetRepo{}
	d := NewDispatcher(imageGen, &fakeGenerator{name: "openai"}, repo)

	_, err := d.Dispatch(context.Background(), &DispatchRequest{
		UserID:      "u1",
		MediaType:   entity.MediaTypeImage,
		Prompt:      "a cat",
		NumOutputs:  1,
		AspectRatio: "1:1",
		Model:       "gpt-image-1",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeGenerationFailed))

	require.Len(t, repo.created, 1)
	assert.Equal(t, entity.AssetStatusFailed, repo.created[0].Status)
	assert.Equal(t, "provider down", repo.created[0].FailureReason)
}

func TestDispatchUnknownMediaType(t *testing.T) {
	d := NewDispatcher(&fakeGenerator{name: "openai"}, &fakeGenerator{name: "openai"}, &fakeAssetRepo{})

	_, err := d.Dispatch(context.Background(), &DispatchRequest{
		UserID:    "u1",
		MediaType: "audio",
		Prompt:    "a song",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}
