package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"collab-backend/model"
	"collab-backend/usecase"
)

type InquiryService interface {
	CreateInquiry(ctx context.Context, businessID string, in usecase.CreateInquiryInput) (*usecase.InquiryResult, error)
	SendMessage(ctx context.Context, inquiryID, senderID, content string) (*model.Message, *model.Message, error)
	GetMessages(ctx context.Context, inquiryID, requesterID string) ([]model.Message, error)
	ApproveMessage(ctx context.Context, messageID, userID string) (*model.Message, error)
	RejectMessage(ctx context.Context, messageID, userID string) error
	RegenerateReply(ctx context.Context, inquiryID, userID, instruction string) (*model.Message, error)
	Decide(ctx context.Context, inquiryID, influencerID string, accept bool) (*model.Inquiry, error)
	ListInquiries(ctx context.Context, userID string) ([]model.Inquiry, error)
	GetInquiry(ctx context.Context, inquiryID, userID string) (*model.Inquiry, error)
	ListNegotiationLogs(ctx context.Context, inquiryID, userID string) ([]model.NegotiationLog, error)
}

type InquiryController struct {
	usecase InquiryService
	log     *zap.Logger
}

func NewInquiryController(usecase InquiryService, log *zap.Logger) *InquiryController {
	return &InquiryController{usecase: usecase, log: log}
}

func (c *InquiryController) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateInquiryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	res, err := c.usecase.CreateInquiry(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (c *InquiryController) List(w http.ResponseWriter, r *http.Request) {
	list, err := c.usecase.ListInquiries(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(list))
}

func (c *InquiryController) Get(w http.ResponseWriter, r *http.Request) {
	q, err := c.usecase.GetInquiry(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (c *InquiryController) GetMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := c.usecase.GetMessages(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(msgs))
}

type sendMessageResponse struct {
	Message *model.Message `json:"message"`
	Reply   *model.Message `json:"reply,omitempty"`
}

func (c *InquiryController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	msg, reply, err := c.usecase.SendMessage(r.Context(), chi.URLParam(r, "id"), userID(r), req.Content)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sendMessageResponse{Message: msg, Reply: reply})
}

func (c *InquiryController) Decide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	q, err := c.usecase.Decide(r.Context(), chi.URLParam(r, "id"), userID(r), req.Accept)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (c *InquiryController) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instruction string `json:"instruction"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	msg, err := c.usecase.RegenerateReply(r.Context(), chi.URLParam(r, "id"), userID(r), req.Instruction)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (c *InquiryController) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := c.usecase.ListNegotiationLogs(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(logs))
}

func (c *InquiryController) ApproveMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := c.usecase.ApproveMessage(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (c *InquiryController) RejectMessage(w http.ResponseWriter, r *http.Request) {
	if err := c.usecase.RejectMessage(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
