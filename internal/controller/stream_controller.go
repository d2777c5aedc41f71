package controller

import (
	"course_media_backend/internal/model"
	"course_media_backend/internal/service"
	"course_media_backend/internal/util"
	"course_media_backend/pkg/logger"
	"course_media_backend/pkg/monitoring"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StreamController 流式代理：权益校验 → 定位资产 → 现签 URL → 转发字节。
// 无持久化副作用；并发不限，每个请求独享上游连接。
type StreamController struct {
	Assets       *service.AssetService
	Entitlements *service.EntitlementService
	Streams      *service.StreamService
}

func NewStreamController(assets *service.AssetService, entitlements *service.EntitlementService, streams *service.StreamService) *StreamController {
	return &StreamController{Assets: assets, Entitlements: entitlements, Streams: streams}
}

// StreamVideo godoc
// @Summary 流式播放课程视频
// @Description 支持 Range 的视频字节流，需报名有效
// @Tags stream
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param videoId path int true "视频ID"
// @Param Range header string false "字节区间"
// @Success 200 "完整内容"
// @Success 206 "区间内容"
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /stream/{courseId}/{videoId} [get]
func (c *StreamController) StreamVideo(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID := util.MustParseUint(ctx.Param("courseId"))
	videoID := util.MustParseUint(ctx.Param("videoId"))
	if claims == nil || courseID == 0 || videoID == 0 {
		util.BadRequest(ctx, "invalid course or video id")
		return
	}

	video, err := c.Assets.ResolveVideo(courseID, videoID)
	if err != nil {
		c.writeResolveError(ctx, err)
		return
	}

	// 视频一律付费，报名无效即拒绝
	if !c.Entitlements.IsEntitled(ctx.Request.Context(), claims.UserID, courseID) {
		util.Forbidden(ctx, util.ErrNotEntitled.Error())
		return
	}

	c.relay(ctx, video.StorageKey, service.KindVideo, util.MimeVideoMP4)
}

// StreamContent godoc
// @Summary 流式获取课程内容条目
// @Description 内嵌视频/PDF/图片的字节流；免费条目无需报名
// @Tags stream
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param contentId path int true "内容ID"
// @Param Range header string false "字节区间"
// @Success 200 "完整内容"
// @Success 206 "区间内容"
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /content-stream/{courseId}/{contentId} [get]
func (c *StreamController) StreamContent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID := util.MustParseUint(ctx.Param("courseId"))
	contentID := util.MustParseUint(ctx.Param("contentId"))
	if claims == nil || courseID == 0 || contentID == 0 {
		util.BadRequest(ctx, "invalid course or content id")
		return
	}

	content, kind, err := c.Assets.ResolveContent(courseID, contentID)
	if err != nil {
		c.writeResolveError(ctx, err)
		return
	}

	// 免费内容对所有登录用户可见
	if !content.IsFree() && !c.Entitlements.IsEntitled(ctx.Request.Context(), claims.UserID, courseID) {
		util.Forbidden(ctx, util.ErrNotEntitled.Error())
		return
	}

	c.relay(ctx, content.StorageKey, kind, contentTypeFallback(content.ContentType))
}

func contentTypeFallback(t model.ContentType) string {
	switch t {
	case model.ContentVideo:
		return util.MimeVideoMP4
	case model.ContentPDF:
		return util.MimePDF
	default:
		return util.MimeOctetStream
	}
}

// relay 上游拉取并原样转发。Range 头逐字转发，
// 上游给 206 就回 206。正文不落内存，io.Copy 的写速率
// 自然受客户端连接背压约束。
func (c *StreamController) relay(ctx *gin.Context, storageKey string, kind service.ResourceKind, fallbackType string) {
	resp, err := c.Streams.Fetch(ctx.Request.Context(), storageKey, kind, ctx.GetHeader(util.HeaderRange))
	if err != nil {
		// 客户端已断开就没有可写的响应了
		if errors.Is(ctx.Request.Context().Err(), context.Canceled) {
			ctx.Abort()
			return
		}
		logger.Log.Error("upstream fetch failed", zap.String("kind", string(kind)), zap.Error(err))
		util.Error(ctx, http.StatusInternalServerError, util.ErrUpstreamFetch.Error())
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get(util.HeaderContentType)
	if contentType == "" {
		contentType = fallbackType
	}
	ctx.Header(util.HeaderContentType, contentType)

	for _, h := range []string{util.HeaderContentLength, util.HeaderContentRange, util.HeaderAcceptRanges} {
		if v := resp.Header.Get(h); v != "" {
			ctx.Header(h, v)
		}
	}

	// 签名 URL 短命且每请求现签，任何一跳都不准缓存
	ctx.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	ctx.Header("Pragma", "no-cache")
	ctx.Header("Expires", "0")

	ctx.Status(resp.StatusCode)

	written, err := io.Copy(ctx.Writer, resp.Body)
	if written > 0 {
		monitoring.StreamedBytes.WithLabelValues(string(kind)).Add(float64(written))
	}
	if err != nil {
		// 响应头已经发出，此处只能掐断连接：Content-Length 已声明，
		// 短写会让服务器关闭连接，客户端据此识别截断而非收到脏尾巴。
		if !errors.Is(ctx.Request.Context().Err(), context.Canceled) {
			logger.Log.Warn("stream relay interrupted", zap.String("kind", string(kind)),
				zap.Int64("written", written), zap.Error(err))
		}
		ctx.Abort()
	}
}

func (c *StreamController) writeResolveError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrVideoNotFound), errors.Is(err, util.ErrContentNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrMissingStorageKey):
		// 配置错误，与权限拒绝区分
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
