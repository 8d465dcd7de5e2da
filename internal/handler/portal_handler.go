package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prepkit/ielts-backend/internal/middleware"
	"github.com/prepkit/ielts-backend/internal/model"
	"github.com/prepkit/ielts-backend/internal/response"
	"github.com/prepkit/ielts-backend/internal/service"
	"github.com/prepkit/ielts-backend/internal/validator"
)

// PortalHandler handles the student-facing test-taking endpoints. Everything
// here is server-authoritative: the browser renders whatever state these
// endpoints (or the stream) hand back.
type PortalHandler struct {
	attemptService *service.AttemptService
	testService    *service.TestService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(attemptService *service.AttemptService, testService *service.TestService) *PortalHandler {
	return &PortalHandler{
		attemptService: attemptService,
		testService:    testService,
	}
}

// answerRequest is the body for recording one answer.
type answerRequest struct {
	QuestionID string       `json:"question_id" binding:"required,uuid"`
	Answer     model.Answer `json:"answer" binding:"required"`
}

// submitRequest is the body for a manual submission.
type submitRequest struct {
	Confirmed bool `json:"confirmed"`
}

// GetLobby godoc
// GET /api/v1/portal/tests
// Lists the student's assigned tests with their attempt status.
func (h *PortalHandler) GetLobby(c *gin.Context) {
	claims := middleware.GetClaims(c)

	entries, err := h.attemptService.GetLobby(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": entries})
}

// StartTest godoc
// POST /api/v1/portal/tests/:test_id/start
// Starts a fresh attempt or resumes the persisted one.
func (h *PortalHandler) StartTest(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, _, err := h.attemptService.StartOrResume(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"state":   view.State,
		"section": view.Section,
		"resumed": view.Resumed,
	})
}

// GetPaper godoc
// GET /api/v1/portal/tests/:test_id/paper
// Returns the sanitized test payload (questions without correct answers).
func (h *PortalHandler) GetPaper(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Only students with a live attempt may pull the paper.
	if _, err := h.attemptService.GetState(c.Request.Context(), claims.UserID, testID); err != nil {
		h.failAttemptError(c, err)
		return
	}

	payload, err := h.testService.GetPayload(c.Request.Context(), testID)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": payload})
}

// GetSession godoc
// GET /api/v1/portal/tests/:test_id/session
// Returns the live attempt state for reload recovery.
func (h *PortalHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.attemptService.GetState(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// RecordAnswer godoc
// POST /api/v1/portal/tests/:test_id/session/answer
// Overwrites the answer for one question. Never validates answer shape
// against question type; a blank text answer simply records as blank.
func (h *PortalHandler) RecordAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req answerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.attemptService.RecordAnswer(c.Request.Context(), claims.UserID, testID, questionID, req.Answer); err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// Advance godoc
// POST /api/v1/portal/tests/:test_id/session/advance
// Moves the cursor forward, crossing into the next section at a boundary.
func (h *PortalHandler) Advance(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, completed, err := h.attemptService.Advance(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"state":     state,
		"completed": completed,
	})
}

// Retreat godoc
// POST /api/v1/portal/tests/:test_id/session/retreat
// Moves the cursor back one question within the current section.
func (h *PortalHandler) Retreat(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.attemptService.Retreat(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// Resume godoc
// POST /api/v1/portal/tests/:test_id/session/resume
// Acknowledges leaving the review screen and returns the live state. The
// countdown itself only runs while the stream is connected; this endpoint
// exists so a reload from the review screen lands back on the test.
func (h *PortalHandler) Resume(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.attemptService.GetState(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// GetReview godoc
// GET /api/v1/portal/tests/:test_id/session/review
// Returns per-section answered counts for the review screen.
func (h *PortalHandler) GetReview(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sections, err := h.attemptService.Review(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sections": sections})
}

// Submit godoc
// POST /api/v1/portal/tests/:test_id/submit
// Finalizes the attempt. Requires {"confirmed": true}; repeated submits
// return the already-stored result.
func (h *PortalHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req submitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), claims.UserID, testID, req.Confirmed, false)
	if err != nil {
		h.failAttemptError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListResults godoc
// GET /api/v1/portal/results
// Lists the student's finalized attempts, newest first.
func (h *PortalHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)

	results, err := h.attemptService.ListResults(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetResult godoc
// GET /api/v1/portal/results/:result_id
// Returns one of the student's results.
func (h *PortalHandler) GetResult(c *gin.Context) {
	claims := middleware.GetClaims(c)

	resultID, err := uuid.Parse(c.Param("result_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.attemptService.GetResult(c.Request.Context(), claims.UserID, resultID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrResultNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// failAttemptError maps attempt domain errors onto the response envelope.
func (h *PortalHandler) failAttemptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTestNotAssigned):
		response.Fail(c, http.StatusForbidden, response.ErrNotAssigned)
	case errors.Is(err, service.ErrTestAlreadyTaken):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyTaken)
	case errors.Is(err, service.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrTestNotFound)
	case errors.Is(err, service.ErrNoActiveAttempt):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
	case errors.Is(err, service.ErrSubmitNotConfirmed):
		response.Fail(c, http.StatusBadRequest, response.ErrSubmitNotConfirmed)
	case errors.Is(err, service.ErrSubmitFailed):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSubmitFailed)
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
