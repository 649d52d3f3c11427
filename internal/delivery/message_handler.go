package delivery

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MessageHandler struct {
	useCase usecase.MessageUseCase
	log     *logrus.Logger
}

func NewMessageHandler(uc usecase.MessageUseCase, logger *logrus.Logger) *MessageHandler {
	return &MessageHandler{useCase: uc, log: logger}
}

type messageRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	msg, err := h.useCase.SendMessage(c.Request.Context(), &domain.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Message,
	})
	if err != nil {
		respondError(c, h.log, "send message", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Message sent successfully", msg)
}

func (h *MessageHandler) List(c *gin.Context) {
	limit, offset := page(c)
	msgs, err := h.useCase.ListMessages(c.Request.Context(), c.Query("unread") == "true", limit, offset)
	if err != nil {
		respondError(c, h.log, "list messages", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Messages retrieved successfully", msgs)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id", "message")
	if !ok {
		return
	}
	msg, err := h.useCase.MarkRead(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "mark message read", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Message marked as read", msg)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "message")
	if !ok {
		return
	}
	if err := h.useCase.DeleteMessage(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "delete message", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Message deleted successfully", nil)
}
