package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fittogether/server/internal/domain"
	"github.com/fittogether/server/pkg/log"
	"github.com/fittogether/server/pkg/middleware"
	"github.com/fittogether/server/pkg/response"
)

// CreateRoom opens a chat room from the caller to the requested receiver.
func (h *Handler) CreateRoom(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create room request")
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.dmService.CreateDMRoom(ctx, middleware.GetToken(c), req.ReceiverNickname)
	if err != nil {
		h.respondError(c, err, "failed to create chat room")
		return
	}

	response.Created(c, room)
}

// ListRooms returns the caller's chat rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.dmService.DMLists(c.Request.Context(), middleware.GetToken(c))
	if err != nil {
		h.respondError(c, err, "failed to list chat rooms")
		return
	}

	response.Success(c, rooms)
}

// ListMessages returns a chat room's messages in send order.
func (h *Handler) ListMessages(c *gin.Context) {
	chatRoomID, err := strconv.ParseInt(c.Param("chatRoomId"), 10, 64)
	if err != nil || chatRoomID <= 0 {
		response.BadRequest(c, "invalid chat room id")
		return
	}

	messages, err := h.dmService.MessageLists(c.Request.Context(), middleware.GetToken(c), chatRoomID)
	if err != nil {
		h.respondError(c, err, "failed to list messages")
		return
	}

	response.Success(c, messages)
}

// SendMessage posts a message. A bearer token is forwarded when present.
func (h *Handler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	var form domain.MessageForm
	if err := c.ShouldBindJSON(&form); err != nil {
		l.Warn().Err(err).Msg("invalid send message request")
		response.BadRequest(c, err.Error())
		return
	}

	token, _ := middleware.BearerToken(c)
	msg, err := h.dmService.SendMessage(ctx, token, &form)
	if err != nil {
		h.respondError(c, err, "failed to send message")
		return
	}

	response.Created(c, msg)
}
