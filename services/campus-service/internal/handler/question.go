package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/model"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/payload"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/repository"
	"github.com/campusconnect/campus-qa-api/services/campus-service/internal/usecase"
	"github.com/campusconnect/campus-qa-api/shared/utilities"
)

func (h *CampusHTTPHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.AskQuestionRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	question, err := h.qaUsecase.AskQuestion(r.Context(), callerID, usecase.AskQuestionParams{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to ask question")
		h.writeQAError(w, err)
		return
	}

	utilities.WriteJSON(w, http.StatusCreated, payload.NewQuestionResponse(question))
}

func (h *CampusHTTPHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.qaUsecase.GetQuestion(r.Context(), chi.URLParam(r, "questionID"))
	if err != nil {
		h.writeQAError(w, err)
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.NewQuestionResponse(question))
}

func (h *CampusHTTPHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	params := repository.ListQuestionsParams{
		Limit:  parseUintQuery(r, "limit"),
		Offset: parseUintQuery(r, "offset"),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		s := model.QuestionStatus(raw)
		params.Status = &s
	}
	if raw := r.URL.Query().Get("tag"); raw != "" {
		params.Tag = &raw
	}

	questions, err := h.qaUsecase.ListQuestions(r.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list questions")
		utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		return
	}

	out := make([]payload.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		out = append(out, payload.NewQuestionResponse(question))
	}

	utilities.WriteJSON(w, http.StatusOK, out)
}

func (h *CampusHTTPHandler) PostAnswer(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	var req payload.PostAnswerRequest
	if !h.validator.decodeAndValidate(w, r, &req) {
		return
	}

	answer, err := h.qaUsecase.PostAnswer(r.Context(), callerID, chi.URLParam(r, "questionID"), req.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to post answer")
		h.writeQAError(w, err)
		return
	}

	utilities.WriteJSON(w, http.StatusCreated, payload.NewAnswerResponse(answer))
}

func (h *CampusHTTPHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.qaUsecase.ListAnswers(r.Context(), chi.URLParam(r, "questionID"))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list answers")
		utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.NewAnswerListResponse(answers))
}

// StreamAnswers delivers answer-list snapshots for a question as server-sent
// events. The connection stays open until the client goes away.
func (h *CampusHTTPHandler) StreamAnswers(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utilities.WriteError(w, codes.Unimplemented, "streaming is not supported")
		return
	}

	questionID := chi.URLParam(r, "questionID")

	snapshots, cancel, err := h.streams.Subscribe(r.Context(), questionID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to subscribe to answers")
		utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case answers, open := <-snapshots:
			if !open {
				return
			}

			data, err := json.Marshal(payload.NewAnswerListResponse(answers))
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode answer snapshot")
				continue
			}

			fmt.Fprintf(w, "event: answers\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (h *CampusHTTPHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	liked, err := h.engagementUsecase.ToggleLike(
		r.Context(),
		callerID,
		chi.URLParam(r, "questionID"),
		chi.URLParam(r, "answerID"),
	)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to toggle like")

		switch {
		case errors.Is(err, usecase.ErrLikeConflict):
			utilities.WriteStatusError(w, status.Errorf(codes.Aborted, "concurrent like toggle, retry"))
		default:
			h.writeQAError(w, err)
		}
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.ToggleLikeResponse{Liked: liked})
}

func (h *CampusHTTPHandler) AcceptAnswer(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	err := h.qaUsecase.AcceptAnswer(
		r.Context(),
		callerID,
		chi.URLParam(r, "questionID"),
		chi.URLParam(r, "answerID"),
	)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to accept answer")
		h.writeQAError(w, err)
		return
	}

	utilities.WriteJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (h *CampusHTTPHandler) ListAlumni(w http.ResponseWriter, r *http.Request) {
	params := repository.ListAlumniParams{
		Limit:  parseUintQuery(r, "limit"),
		Offset: parseUintQuery(r, "offset"),
	}

	if raw := r.URL.Query().Get("branch"); raw != "" {
		params.Branch = &raw
	}
	if raw := r.URL.Query().Get("graduation_year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			utilities.WriteError(w, codes.InvalidArgument, "graduation_year must be a number")
			return
		}
		params.GraduationYear = &year
	}

	alumni, err := h.qaUsecase.ListAlumni(r.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list alumni")
		utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
		return
	}

	out := make([]payload.AccountResponse, 0, len(alumni))
	for _, account := range alumni {
		out = append(out, payload.NewAccountResponse(account))
	}

	utilities.WriteJSON(w, http.StatusOK, out)
}

func (h *CampusHTTPHandler) GetAlumniProfile(w http.ResponseWriter, r *http.Request) {
	view, err := h.qaUsecase.GetAlumniProfile(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		h.writeQAError(w, err)
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.AlumniProfileResponse{
		Account:             payload.NewAccountResponse(view.Account),
		AnswerCount:         view.AnswerCount,
		AcceptedAnswerCount: view.AcceptedAnswerCount,
	})
}

// writeQAError maps the shared Q&A sentinel errors onto status codes.
func (h *CampusHTTPHandler) writeQAError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrAccountNotFound):
		utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "account not found"))
	case errors.Is(err, usecase.ErrQuestionNotFound):
		utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "question not found"))
	case errors.Is(err, usecase.ErrAnswerNotFound):
		utilities.WriteStatusError(w, status.Errorf(codes.NotFound, "answer not found"))
	case errors.Is(err, usecase.ErrInvalidTags):
		utilities.WriteStatusError(w, status.Errorf(codes.InvalidArgument, "questions require between 1 and 5 tags"))
	case errors.Is(err, usecase.ErrNotQuestionAuthor):
		utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "only the question author may accept an answer"))
	case errors.Is(err, usecase.ErrPermissionDenied):
		utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "role is not allowed to perform this action"))
	case errors.Is(err, usecase.ErrNotVerified):
		utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is not verified"))
	case errors.Is(err, usecase.ErrAccountInactive):
		utilities.WriteStatusError(w, status.Errorf(codes.PermissionDenied, "account is suspended or banned"))
	default:
		utilities.WriteStatusError(w, status.Errorf(codes.Internal, "something went wrong"))
	}
}

func parseUintQuery(r *http.Request, name string) uint64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}

	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}

	return value
}
